package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hanapbahay/server/config"
	"hanapbahay/server/internal/auth"
	"hanapbahay/server/internal/database"
	"hanapbahay/server/internal/models"
)

// Geocoder resolves a free-text location to coordinates.
type Geocoder interface {
	GeocodeAddress(location string) (float64, float64, error)
}

// ObjectStore persists uploaded images and returns their public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, bucket, key string) error
}

// MaintenanceRunner kicks an out-of-band cleanup pass.
type MaintenanceRunner interface {
	RunNow()
}

type Handler struct {
	db          *database.Database
	logger      *logrus.Logger
	geocoder    Geocoder
	store       ObjectStore
	tokens      *auth.TokenManager
	cfg         *config.Config
	maintenance MaintenanceRunner
}

func NewHandler(db *database.Database, logger *logrus.Logger, geocoder Geocoder, store ObjectStore, tokens *auth.TokenManager, cfg *config.Config) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:       db,
		logger:   logger,
		geocoder: geocoder,
		store:    store,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// SetMaintenance wires the optional maintenance trigger used by the admin
// endpoint.
func (h *Handler) SetMaintenance(m MaintenanceRunner) {
	h.maintenance = m
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /register. Landlord registrations must carry both
// verification images; nothing is persisted until they validate.
func (h *Handler) Register(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	fullName := c.PostForm("full_name")
	contactNumber := c.PostForm("contact_number")
	gender := c.PostForm("gender")
	role, ok := models.NormalizeRole(c.PostForm("role"))

	switch {
	case email == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	case password == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	case fullName == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Full name is required"})
		return
	case !ok:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	// Verification images are mandatory for landlords, and must be checked
	// before anything is written anywhere.
	var profileFile, idFile *multipart.FileHeader
	if role == models.RoleLandlord {
		profileFile, _ = c.FormFile("profile_image")
		idFile, _ = c.FormFile("id_image")
		if profileFile == nil || idFile == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Both Profile Image and ID Image are required for Landlords.",
			})
			return
		}
	}

	if _, err := h.db.GetAccountByEmail(email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		h.logger.WithError(err).Error("Failed to check existing email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	account := &models.Account{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  passwordHash,
		FullName:      fullName,
		ContactNumber: contactNumber,
		Gender:        gender,
		Role:          role,
	}

	// Uploaded object keys, kept so a failed account insert can be
	// compensated instead of leaving orphaned blobs.
	var uploadedKeys []string
	bucket := h.cfg.Storage.UserImagesBucket
	cleanup := func() {
		for _, key := range uploadedKeys {
			if err := h.store.Delete(c.Request.Context(), bucket, key); err != nil {
				h.logger.WithError(err).WithField("key", key).Error("Failed to clean up verification image")
			}
		}
	}

	if role == models.RoleLandlord {
		profileKey := "profiles/" + account.ID + "-" + filepath.Base(profileFile.Filename)
		profileURL, err := h.uploadFormFile(c.Request.Context(), bucket, profileKey, profileFile)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload verification images"})
			return
		}
		uploadedKeys = append(uploadedKeys, profileKey)
		account.ProfileImageURL = &profileURL

		idKey := "ids/" + account.ID + "-" + filepath.Base(idFile.Filename)
		idURL, err := h.uploadFormFile(c.Request.Context(), bucket, idKey, idFile)
		if err != nil {
			cleanup()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload verification images"})
			return
		}
		uploadedKeys = append(uploadedKeys, idKey)
		account.IDImageURL = &idURL
	}

	if err := h.db.CreateAccount(account); err != nil {
		cleanup()
		if errors.Is(err, database.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		h.logger.WithError(err).Error("Failed to create account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"email": email,
		"role":  role,
	}).Info("User registered successfully")

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User registered successfully!"})
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	account, err := h.db.GetAccountByEmail(req.Email)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Email not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to look up account")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to log in"})
		return
	}

	if !auth.CheckPassword(req.Password, account.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Incorrect password"})
		return
	}

	token, err := h.tokens.GenerateToken(account)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful!",
		"user":    account,
		"token":   token,
	})
}

// ApproveAccount handles PUT /approve/:id. Approving twice is a no-op.
func (h *Handler) ApproveAccount(c *gin.Context) {
	id := c.Param("id")

	err := h.db.ApproveAccount(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to approve account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Landlord approved successfully."})
}

// GetPendingLandlords handles GET /pending-landlords.
func (h *Handler) GetPendingLandlords(c *gin.Context) {
	landlords, err := h.db.GetPendingLandlords()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get pending landlords")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get pending landlords"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "landlords": landlords})
}

// GetUserProfile handles GET /UserProfile/:id.
func (h *Handler) GetUserProfile(c *gin.Context) {
	account, err := h.db.GetAccountByID(c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get account"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// RunMaintenance handles POST /admin/maintenance/run.
func (h *Handler) RunMaintenance(c *gin.Context) {
	if h.maintenance == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Maintenance is not configured"})
		return
	}

	h.maintenance.RunNow()
	c.JSON(http.StatusOK, gin.H{"status": "Maintenance pass started"})
}

func (h *Handler) uploadFormFile(ctx context.Context, bucket, key string, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithError(err).WithField("file", fileHeader.Filename).Error("Failed to open uploaded file")
		return "", err
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return h.store.Upload(ctx, bucket, key, contentType, file)
}
