package api

import (
	"github.com/gin-gonic/gin"

	"hanapbahay/server/internal/auth"
)

func SetupRoutes(router *gin.Engine, h *Handler, tokens *auth.TokenManager) {
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.GET("/hotels", h.GetHotels)
	router.GET("/hotels/nearby", h.GetNearbyHotels)
	router.GET("/hotels/:userId", h.GetHotelsByUser)
	router.GET("/search", h.SearchHotels)
	router.GET("/EditHotels/:id", h.GetHotel)
	router.GET("/reviews/:hotel_id", h.GetReviews)

	authed := router.Group("/", auth.RequireAuth(tokens))
	{
		authed.GET("/UserProfile/:id", h.GetUserProfile)
		authed.POST("/CreateHotels", h.CreateHotel)
		authed.PUT("/EditHotels/:id", h.UpdateHotel)
		authed.DELETE("/hotels/:id", h.DeleteHotel)
		authed.POST("/reviews", h.CreateReview)

		admin := authed.Group("/", auth.RequireAdmin())
		{
			admin.PUT("/approve/:id", h.ApproveAccount)
			admin.GET("/pending-landlords", h.GetPendingLandlords)
			admin.POST("/admin/maintenance/run", h.RunMaintenance)
		}
	}
}
