package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"hanapbahay/server/config"
	"hanapbahay/server/internal/auth"
	"hanapbahay/server/internal/database"
	"hanapbahay/server/internal/geocoding"
	"hanapbahay/server/internal/models"
	"hanapbahay/server/internal/storage"
)

// fakeGeocoder resolves a fixed set of addresses.
type fakeGeocoder struct {
	known map[string][2]float64
}

func newFakeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{known: map[string][2]float64{
		"Taguig City":              {14.5176, 121.0509},
		"Makati City":              {14.5547, 121.0244},
		"Sampaloc, Manila":         {14.6091, 120.9894},
		"Quezon City":              {14.6760, 121.0437},
	}}
}

func (g *fakeGeocoder) GeocodeAddress(location string) (float64, float64, error) {
	if coords, ok := g.known[location]; ok {
		return coords[0], coords[1], nil
	}
	return 0, 0, fmt.Errorf("%w: %s", geocoding.ErrNoResults, location)
}

// fakeStore keeps uploads in memory and records deletions.
type fakeStore struct {
	mu       sync.Mutex
	uploads  map[string][]byte // "bucket/key" -> content
	deleted  []string
	failNext bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: make(map[string][]byte)}
}

func (s *fakeStore) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return "", fmt.Errorf("upload failed")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.uploads[bucket+"/"+key] = data
	return storage.PublicURL(bucket, "test-region", key), nil
}

func (s *fakeStore) Delete(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, bucket+"/"+key)
	s.deleted = append(s.deleted, bucket+"/"+key)
	return nil
}

func (s *fakeStore) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

type testEnv struct {
	router   *gin.Engine
	db       *database.Database
	store    *fakeStore
	geocoder *fakeGeocoder
	tokens   *auth.TokenManager
	cfg      *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{}
	cfg.Storage.Region = "test-region"
	cfg.Storage.UserImagesBucket = "user-images"
	cfg.Storage.HotelImagesBucket = "hotels-images"

	env := &testEnv{
		db:       db,
		store:    newFakeStore(),
		geocoder: newFakeGeocoder(),
		tokens:   auth.NewTokenManager("test-secret"),
		cfg:      cfg,
	}

	handler := NewHandler(db, logger, env.geocoder, env.store, env.tokens, cfg)

	env.router = gin.New()
	SetupRoutes(env.router, handler, env.tokens)

	return env
}

// seedAccount inserts an account directly and returns it with a valid token.
func (env *testEnv) seedAccount(t *testing.T, email, role string, approved bool) (*models.Account, string) {
	t.Helper()

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "not-checked",
		FullName:     "Seeded " + role,
		Role:         role,
		IsApproved:   approved,
	}
	require.NoError(t, env.db.CreateAccount(account))

	token, err := env.tokens.GenerateToken(account)
	require.NoError(t, err)
	return account, token
}

type formFile struct {
	field   string
	name    string
	content string
}

// multipartRequest builds a multipart form request with optional files.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (env *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
