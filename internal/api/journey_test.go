package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanapbahay/server/internal/models"
)

// TestLandlordJourney walks the whole lifecycle: registration with
// verification images, admin approval, listing creation, and a guest review.
func TestLandlordJourney(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedAccount(t, "admin@example.com", models.RoleAdmin, false)

	// Registration is rejected until both verification images are attached
	fields := landlordRegistrationFields("rosa@example.com")
	w := env.do(multipartRequest(t, "POST", "/register", fields), "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(multipartRequest(t, "POST", "/register", fields,
		formFile{field: "profile_image", name: "rosa.jpg", content: "profile"},
		formFile{field: "id_image", name: "passport.jpg", content: "id"}), "")
	require.Equal(t, http.StatusOK, w.Code)

	// Log in to pick up a token
	w = env.do(jsonRequest(t, "POST", "/login", map[string]string{
		"email": "rosa@example.com", "password": "s3cret",
	}), "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string         `json:"token"`
		User  models.Account `json:"user"`
	}
	decodeBody(t, w, &login)
	rosa, rosaToken := login.User, login.Token

	// Listing writes are blocked while the approval is pending
	w = env.do(multipartRequest(t, "POST", "/CreateHotels", listingFields(rosa.ID, "Taguig City")), rosaToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	// The admin sees the pending registration and approves it
	w = env.do(httptest.NewRequest("GET", "/pending-landlords", nil), adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var pending struct {
		Landlords []models.Account `json:"landlords"`
	}
	decodeBody(t, w, &pending)
	require.Len(t, pending.Landlords, 1)
	require.Equal(t, rosa.ID, pending.Landlords[0].ID)

	w = env.do(httptest.NewRequest("PUT", "/approve/"+rosa.ID, nil), adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(httptest.NewRequest("GET", "/pending-landlords", nil), adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	pending.Landlords = nil
	decodeBody(t, w, &pending)
	assert.Empty(t, pending.Landlords)

	// Now the listing goes through
	w = env.do(multipartRequest(t, "POST", "/CreateHotels", listingFields(rosa.ID, "Taguig City"),
		formFile{field: "frontdisplay", name: "front.jpg", content: "front"}), rosaToken)
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Hotel models.Listing `json:"hotel"`
	}
	decodeBody(t, w, &created)

	// And shows up everywhere a guest would look
	w = env.do(httptest.NewRequest("GET", "/hotels/"+rosa.ID, nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	var owned []models.Listing
	decodeBody(t, w, &owned)
	require.Len(t, owned, 1)

	w = env.do(httptest.NewRequest("GET", "/search?location=Taguig", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	var found []models.Listing
	decodeBody(t, w, &found)
	require.Len(t, found, 1)
	assert.Equal(t, created.Hotel.ID, found[0].ID)

	// A guest leaves a review
	fields = landlordRegistrationFields("guest@example.com")
	fields["role"] = "User"
	w = env.do(multipartRequest(t, "POST", "/register", fields), "")
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(jsonRequest(t, "POST", "/login", map[string]string{
		"email": "guest@example.com", "password": "s3cret",
	}), "")
	require.Equal(t, http.StatusOK, w.Code)
	var guestLogin struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &guestLogin)

	w = env.do(jsonRequest(t, "POST", "/reviews", map[string]interface{}{
		"hotel_id": created.Hotel.ID, "comment": "Great host", "rating": 5,
	}), guestLogin.Token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(httptest.NewRequest("GET", "/reviews/"+created.Hotel.ID, nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	var reviews []models.Review
	decodeBody(t, w, &reviews)
	require.Len(t, reviews, 1)
	assert.Equal(t, "guest@example.com", reviews[0].UserEmail)
}
