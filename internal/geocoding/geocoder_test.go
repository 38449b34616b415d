package geocoding

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) (*Geocoder, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewGeocoder(logger, server.URL, "Hanapbahay test", t.TempDir()), server
}

func TestGeocodeAddress(t *testing.T) {
	var requests atomic.Int32
	geocoder, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "Taguig City", r.URL.Query().Get("q"))
		assert.Equal(t, "Hanapbahay test", r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"lat":"14.5176","lon":"121.0509"}]`))
	})

	lat, lon, err := geocoder.GeocodeAddress("Taguig City")
	require.NoError(t, err)
	assert.InDelta(t, 14.5176, lat, 0.0001)
	assert.InDelta(t, 121.0509, lon, 0.0001)

	// Second lookup is served from cache
	lat, lon, err = geocoder.GeocodeAddress("Taguig City")
	require.NoError(t, err)
	assert.InDelta(t, 14.5176, lat, 0.0001)
	assert.InDelta(t, 121.0509, lon, 0.0001)
	assert.Equal(t, int32(1), requests.Load())
}

func TestGeocodeAddress_NoResults(t *testing.T) {
	geocoder, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, _, err := geocoder.GeocodeAddress("not a real place 123456")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestGeocodeAddress_BadResponse(t *testing.T) {
	geocoder, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>rate limited</html>`))
	})

	_, _, err := geocoder.GeocodeAddress("Manila")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResults)
}
