// test_utils.go: shared fixtures and mocks for the api package tests
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phibia/phibia-go/internal/classifier"
	"github.com/phibia/phibia-go/internal/conf"
	"github.com/phibia/phibia-go/internal/datastore"
	"github.com/phibia/phibia-go/internal/observability"
	"github.com/phibia/phibia-go/internal/security"
)

// MockDataStore is a mock implementation of datastore.Interface.
type MockDataStore struct {
	mock.Mock
}

func (m *MockDataStore) Open() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) GetUserByID(id uint) (datastore.User, error) {
	args := m.Called(id)
	return args.Get(0).(datastore.User), args.Error(1)
}

func (m *MockDataStore) GetUserByEmail(email string) (datastore.User, error) {
	args := m.Called(email)
	return args.Get(0).(datastore.User), args.Error(1)
}

func (m *MockDataStore) GetUserByName(name string) (datastore.User, error) {
	args := m.Called(name)
	return args.Get(0).(datastore.User), args.Error(1)
}

func (m *MockDataStore) CreateUser(user *datastore.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockDataStore) UpdateUser(user *datastore.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockDataStore) GetSpeciesByID(id uint) (datastore.Species, error) {
	args := m.Called(id)
	return args.Get(0).(datastore.Species), args.Error(1)
}

func (m *MockDataStore) GetAllSpecies() ([]datastore.Species, error) {
	args := m.Called()
	return args.Get(0).([]datastore.Species), args.Error(1)
}

func (m *MockDataStore) FindOrCreateLocation(latitude, longitude float64) (datastore.Location, error) {
	args := m.Called(latitude, longitude)
	return args.Get(0).(datastore.Location), args.Error(1)
}

func (m *MockDataStore) UnknownLocation() (datastore.Location, error) {
	args := m.Called()
	return args.Get(0).(datastore.Location), args.Error(1)
}

func (m *MockDataStore) SaveCapture(capture *datastore.Capture) error {
	args := m.Called(capture)
	return args.Error(0)
}

func (m *MockDataStore) SaveCaptureAt(capture *datastore.Capture, latitude, longitude float64) error {
	args := m.Called(capture, latitude, longitude)
	return args.Error(0)
}

func (m *MockDataStore) GetCapture(id, userID uint) (datastore.Capture, error) {
	args := m.Called(id, userID)
	return args.Get(0).(datastore.Capture), args.Error(1)
}

func (m *MockDataStore) GetUserCaptures(userID uint) ([]datastore.Capture, error) {
	args := m.Called(userID)
	return args.Get(0).([]datastore.Capture), args.Error(1)
}

func (m *MockDataStore) CapturesWithCoordinates() ([]datastore.Capture, error) {
	args := m.Called()
	return args.Get(0).([]datastore.Capture), args.Error(1)
}

func (m *MockDataStore) DeleteCapture(id, userID uint) error {
	args := m.Called(id, userID)
	return args.Error(0)
}

func (m *MockDataStore) SpeciesCaptureCounts() ([]datastore.SpeciesCaptureCount, error) {
	args := m.Called()
	return args.Get(0).([]datastore.SpeciesCaptureCount), args.Error(1)
}

// mockClassifier is a mock implementation of classifier.Classifier.
type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Predict(ctx context.Context, audioPath string) (classifier.Prediction, error) {
	args := m.Called(ctx, audioPath)
	return args.Get(0).(classifier.Prediction), args.Error(1)
}

// newTestController builds a controller wired to mocks with an isolated
// upload directory. Routes and middleware are registered the same way the
// server does it.
func newTestController(t *testing.T) (*Controller, *MockDataStore, *mockClassifier) {
	t.Helper()

	ds := &MockDataStore{}
	clf := &mockClassifier{}

	settings := &conf.Settings{
		Debug: true,
		WebServer: conf.WebServerSettings{
			FrontendOrigin: "http://localhost:5173",
		},
		Upload:     conf.UploadSettings{Path: t.TempDir()},
		Classifier: conf.ClassifierSettings{Endpoint: "http://model.test/predict", Timeout: 30},
		Security:   conf.SecuritySettings{JWTSecret: "test-secret", TokenTTL: 1},
		Log:        conf.LogSettings{Path: t.TempDir()},
	}

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	controller, err := New(echo.New(), ds, settings,
		clf, security.NewTokenService(&settings.Security), metrics)
	require.NoError(t, err)
	t.Cleanup(controller.Shutdown)

	return controller, ds, clf
}

// authCookie issues a valid session cookie for the given user ID.
func authCookie(t *testing.T, c *Controller, userID uint) *http.Cookie {
	t.Helper()
	token, err := c.Tokens.Issue(userID)
	require.NoError(t, err)
	return c.Tokens.NewCookie(token)
}

// newPredictRequest builds a multipart POST /predict request. A nil audio
// slice omits the file part entirely.
func newPredictRequest(t *testing.T, audio []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if audio != nil {
		part, err := writer.CreateFormFile("audio", "recording.wav")
		require.NoError(t, err)
		_, err = part.Write(audio)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/predict", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

// doRequest runs the request through the full middleware and routing stack.
func doRequest(c *Controller, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON response body into a map.
func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&decoded))
	return decoded
}

// uploadDirCount returns how many files the controller's upload directory
// holds, for asserting the cleanup invariant.
func uploadDirCount(t *testing.T, c *Controller) int {
	t.Helper()
	entries, err := os.ReadDir(c.uploadPath)
	require.NoError(t, err)
	return len(entries)
}

// fixtures

func testGuest() datastore.User {
	return datastore.User{ID: 1, Name: datastore.GuestUserName, Email: "guest@phibia.local", PasswordHash: "!"}
}

func testUser() datastore.User {
	return datastore.User{ID: 2, Name: "rana", Email: "rana@example.com", PasswordHash: "$2a$10$hash"}
}

func testSpecies() datastore.Species {
	return datastore.Species{
		ID:             3,
		ScientificName: "Rhinella arenarum",
		CommonName:     "Sapo común",
		Description:    "Large terrestrial toad",
	}
}

func testUnknownLocation() datastore.Location {
	return datastore.Location{ID: 1, Description: datastore.UnknownLocationDesc}
}
