package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/sirupsen/logrus"

	"hanapbahay/server/internal/auth"
	"hanapbahay/server/internal/database"
	"hanapbahay/server/internal/geocoding"
	"hanapbahay/server/internal/models"
	"hanapbahay/server/internal/storage"
)

// Object key prefixes inside the listing-images bucket, by purpose.
const (
	prefixFrontDisplay = "frontdisplay"
	prefixRoom         = "room"
	prefixOthers       = "others"
)

// requireApprovedLandlord resolves the caller's account and enforces the
// listing write gate: only approved landlords may create or manage listings.
// Writes the error response itself when the guard fails.
func (h *Handler) requireApprovedLandlord(c *gin.Context) (*models.Account, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil, false
	}

	account, err := h.db.GetAccountByID(userID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve caller account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve account"})
		return nil, false
	}

	if account.Role != models.RoleLandlord || !account.IsApproved {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only approved landlords can manage listings"})
		return nil, false
	}

	return account, true
}

// CreateHotel handles POST /CreateHotels. The location must geocode before
// anything is persisted; secondary image upload failures degrade the listing
// instead of aborting it.
func (h *Handler) CreateHotel(c *gin.Context) {
	account, ok := h.requireApprovedLandlord(c)
	if !ok {
		return
	}

	userID := c.PostForm("user_id")
	name := c.PostForm("name")
	description := c.PostForm("description")
	location := c.PostForm("location")
	priceStr := c.PostForm("price")

	if userID == "" || name == "" || location == "" || priceStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if userID != account.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot create listings for another account"})
		return
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be a positive number"})
		return
	}

	lat, lon, err := h.geocoder.GeocodeAddress(location)
	if errors.Is(err, geocoding.ErrNoResults) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location could not be resolved"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("location", location).Error("Geocoding failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve location"})
		return
	}

	listing := &models.Listing{
		ID:          uuid.NewString(),
		UserID:      account.ID,
		Name:        name,
		Description: description,
		Location:    location,
		Price:       price,
		Latitude:    &lat,
		Longitude:   &lon,
	}

	if file, err := c.FormFile("frontdisplay"); err == nil {
		listing.FrontDisplay = h.uploadListingImage(c, prefixFrontDisplay, file)
	}
	if file, err := c.FormFile("room"); err == nil {
		listing.Room = h.uploadListingImage(c, prefixRoom, file)
	}
	if form, err := c.MultipartForm(); err == nil {
		for _, file := range form.File["others"] {
			if url := h.uploadListingImage(c, prefixOthers, file); url != "" {
				listing.Others = append(listing.Others, url)
			}
		}
	}

	if err := h.db.CreateListing(listing); err != nil {
		h.logger.WithError(err).Error("Failed to create listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"listing_id": listing.ID,
		"user_id":    listing.UserID,
	}).Info("Listing created")

	c.JSON(http.StatusOK, gin.H{"message": "Hotel added successfully", "hotel": listing})
}

// uploadListingImage uploads a single listing image under the given prefix
// with a collision-resistant key. Failures are logged and swallowed so one
// bad image never sinks the listing.
func (h *Handler) uploadListingImage(c *gin.Context, prefix string, file *multipart.FileHeader) string {
	key := prefix + "/" + uuid.NewString() + "-" + filepath.Base(file.Filename)
	url, err := h.uploadFormFile(c.Request.Context(), h.cfg.Storage.HotelImagesBucket, key, file)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"prefix": prefix,
			"file":   file.Filename,
		}).Error("Listing image upload failed, continuing without it")
		return ""
	}
	return url
}

// GetHotels handles GET /hotels.
func (h *Handler) GetHotels(c *gin.Context) {
	listings, err := h.db.GetAllListings()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listings"})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// GetHotelsByUser handles GET /hotels/:userId.
func (h *Handler) GetHotelsByUser(c *gin.Context) {
	listings, err := h.db.GetListingsByOwner(c.Param("userId"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listings"})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// SearchHotels handles GET /search?location=.
func (h *Handler) SearchHotels(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location query parameter is required"})
		return
	}

	listings, err := h.db.SearchListingsByLocation(location)
	if err != nil {
		h.logger.WithError(err).Error("Failed to search listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search listings"})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// GetHotel handles GET /EditHotels/:id, used to prefill the edit form.
func (h *Handler) GetHotel(c *gin.Context) {
	listing, err := h.db.GetListingByID(c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// UpdateHotel handles PUT /EditHotels/:id. Only fields present in the request
// are overwritten; replaced images are queued for deferred cleanup.
func (h *Handler) UpdateHotel(c *gin.Context) {
	account, ok := h.requireApprovedLandlord(c)
	if !ok {
		return
	}

	listing, err := h.db.GetListingByID(c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing"})
		return
	}

	if listing.UserID != account.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this listing"})
		return
	}

	if name, ok := c.GetPostForm("name"); ok && name != "" {
		listing.Name = name
	}
	if description, ok := c.GetPostForm("description"); ok {
		listing.Description = description
	}
	if priceStr, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be a positive number"})
			return
		}
		listing.Price = price
	}
	if location, ok := c.GetPostForm("location"); ok && location != "" && location != listing.Location {
		lat, lon, err := h.geocoder.GeocodeAddress(location)
		if errors.Is(err, geocoding.ErrNoResults) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Location could not be resolved"})
			return
		}
		if err != nil {
			h.logger.WithError(err).WithField("location", location).Error("Geocoding failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve location"})
			return
		}
		listing.Location = location
		listing.Latitude = &lat
		listing.Longitude = &lon
	}

	if file, err := c.FormFile("frontdisplay"); err == nil {
		if url := h.uploadListingImage(c, prefixFrontDisplay, file); url != "" {
			h.orphanObject(listing.FrontDisplay)
			listing.FrontDisplay = url
		}
	}
	if file, err := c.FormFile("room"); err == nil {
		if url := h.uploadListingImage(c, prefixRoom, file); url != "" {
			h.orphanObject(listing.Room)
			listing.Room = url
		}
	}
	if form, err := c.MultipartForm(); err == nil && len(form.File["others"]) > 0 {
		var replacement []string
		for _, file := range form.File["others"] {
			if url := h.uploadListingImage(c, prefixOthers, file); url != "" {
				replacement = append(replacement, url)
			}
		}
		if len(replacement) > 0 {
			for _, old := range listing.Others {
				h.orphanObject(old)
			}
			listing.Others = replacement
		}
	}

	if err := h.db.UpdateListing(listing); err != nil {
		h.logger.WithError(err).Error("Failed to update listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hotel updated successfully", "hotel": listing})
}

// DeleteHotel handles DELETE /hotels/:id.
func (h *Handler) DeleteHotel(c *gin.Context) {
	account, ok := h.requireApprovedLandlord(c)
	if !ok {
		return
	}

	listing, err := h.db.GetListingByID(c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing"})
		return
	}

	if listing.UserID != account.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this listing"})
		return
	}

	for _, url := range listing.ImageURLs() {
		h.orphanObject(url)
	}

	if err := h.db.DeleteListing(listing.ID); err != nil {
		h.logger.WithError(err).Error("Failed to delete listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete listing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Hotel deleted successfully."})
}

type nearbyListing struct {
	models.Listing
	DistanceKM float64 `json:"distance_km"`
}

// GetNearbyHotels handles GET /hotels/nearby?lat=&lon=&radius_km=.
func (h *Handler) GetNearbyHotels(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon query parameters are required"})
		return
	}

	radiusKM := 5.0
	if radiusStr := c.Query("radius_km"); radiusStr != "" {
		parsed, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius_km must be a positive number"})
			return
		}
		radiusKM = parsed
	}

	listings, err := h.db.GetListingsWithCoordinates()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listings"})
		return
	}

	origin := orb.Point{lon, lat}
	nearby := []nearbyListing{}
	for _, listing := range listings {
		point := orb.Point{*listing.Longitude, *listing.Latitude}
		distanceKM := geo.Distance(origin, point) / 1000
		if distanceKM <= radiusKM {
			nearby = append(nearby, nearbyListing{Listing: listing, DistanceKM: distanceKM})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKM < nearby[j].DistanceKM
	})

	c.JSON(http.StatusOK, nearby)
}

// orphanObject records a no-longer-referenced object URL for the deferred
// cleanup pass. Unparseable or empty URLs are ignored.
func (h *Handler) orphanObject(url string) {
	if url == "" {
		return
	}

	bucket, key, ok := storage.ParseURL(url)
	if !ok {
		h.logger.WithField("url", url).Warn("Could not parse object URL for cleanup")
		return
	}

	if err := h.db.AddOrphanedObject(bucket, key); err != nil {
		h.logger.WithError(err).WithField("key", key).Error("Failed to queue object for cleanup")
	}
}
