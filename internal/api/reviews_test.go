package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanapbahay/server/internal/models"
)

func TestCreateReview_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedAccount(t, "guest@example.com", models.RoleUser, false)

	// Authentication required
	w := env.do(jsonRequest(t, "POST", "/reviews", map[string]interface{}{
		"hotel_id": "h1", "comment": "Nice place",
	}), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Missing comment
	w = env.do(jsonRequest(t, "POST", "/reviews", map[string]interface{}{
		"hotel_id": "h1",
	}), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Rating out of bounds
	for _, rating := range []int{0, 6} {
		w = env.do(jsonRequest(t, "POST", "/reviews", map[string]interface{}{
			"hotel_id": "h1", "comment": "Nice place", "rating": rating,
		}), token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestCreateReview_DenormalizesAuthorEmail(t *testing.T) {
	env := newTestEnv(t)
	guest, token := env.seedAccount(t, "guest@example.com", models.RoleUser, false)

	w := env.do(jsonRequest(t, "POST", "/reviews", map[string]interface{}{
		"hotel_id": "h1", "comment": "Clean and quiet", "rating": 5,
	}), token)
	require.Equal(t, http.StatusCreated, w.Code)

	var review models.Review
	decodeBody(t, w, &review)
	assert.Equal(t, guest.ID, review.UserID)
	assert.Equal(t, "guest@example.com", review.UserEmail)
	require.NotNil(t, review.Rating)
	assert.Equal(t, 5, *review.Rating)
}

func TestCreateReview_FallsBackToTokenEmail(t *testing.T) {
	env := newTestEnv(t)

	// Valid token for an account that no longer exists
	ghost := &models.Account{
		ID:    uuid.NewString(),
		Email: "ghost@example.com",
		Role:  models.RoleUser,
	}
	token, err := env.tokens.GenerateToken(ghost)
	require.NoError(t, err)

	w := env.do(jsonRequest(t, "POST", "/reviews", map[string]interface{}{
		"hotel_id": "h1", "comment": "Still counts",
	}), token)
	require.Equal(t, http.StatusCreated, w.Code)

	var review models.Review
	decodeBody(t, w, &review)
	assert.Equal(t, "ghost@example.com", review.UserEmail)
	assert.Nil(t, review.Rating)
}

func TestGetReviews_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedAccount(t, "guest@example.com", models.RoleUser, false)

	for _, comment := range []string{"first", "second", "third"} {
		w := env.do(jsonRequest(t, "POST", "/reviews", map[string]interface{}{
			"hotel_id": "h1", "comment": comment,
		}), token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// A review for a different hotel stays out of the result
	w := env.do(jsonRequest(t, "POST", "/reviews", map[string]interface{}{
		"hotel_id": "h2", "comment": "other hotel",
	}), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(httptest.NewRequest("GET", "/reviews/h1", nil), "")
	require.Equal(t, http.StatusOK, w.Code)

	var reviews []models.Review
	decodeBody(t, w, &reviews)
	require.Len(t, reviews, 3)
	assert.Equal(t, "third", reviews[0].Comment)
	assert.Equal(t, "first", reviews[2].Comment)
	for _, review := range reviews {
		assert.Equal(t, "h1", review.HotelID)
		assert.NotEmpty(t, review.UserEmail)
	}

	// No reviews yet is an empty array, not an error
	w = env.do(httptest.NewRequest("GET", "/reviews/unknown", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
