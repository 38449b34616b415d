package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hanapbahay/server/internal/auth"
	"hanapbahay/server/internal/database"
	"hanapbahay/server/internal/models"
)

type ReviewRequest struct {
	HotelID string `json:"hotel_id" binding:"required"`
	Rating  *int   `json:"rating"`
	Comment string `json:"comment" binding:"required"`
}

// CreateReview handles POST /reviews. Insert-only; the author's email is
// denormalized from the accounts table at write time, falling back to the
// token's email claim when the profile lookup misses.
func (h *Handler) CreateReview(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hotel_id and comment are required"})
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}

	email := ""
	account, err := h.db.GetAccountByID(userID)
	switch {
	case err == nil:
		email = account.Email
	case errors.Is(err, database.ErrNotFound):
		// Fall back to the claim baked into the token.
		email, _ = auth.GetEmail(c)
	default:
		h.logger.WithError(err).Error("Failed to look up review author")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit review"})
		return
	}

	review := &models.Review{
		ID:        uuid.NewString(),
		HotelID:   req.HotelID,
		UserID:    userID,
		UserEmail: email,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := h.db.CreateReview(review); err != nil {
		h.logger.WithError(err).Error("Failed to create review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit review"})
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetReviews handles GET /reviews/:hotel_id, newest first.
func (h *Handler) GetReviews(c *gin.Context) {
	reviews, err := h.db.GetReviewsByHotel(c.Param("hotel_id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reviews"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}
