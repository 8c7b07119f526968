package classifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phibia/phibia-go/internal/errors"
)

func writeTestClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frog1.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake audio"), 0o644))
	return path
}

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(Config{Endpoint: "http://model.test/predict", Timeout: 5 * time.Second})
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestClientPredictSuccess(t *testing.T) {
	client := newMockedClient(t)
	clip := writeTestClip(t)

	httpmock.RegisterResponder(http.MethodPost, "http://model.test/predict",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"label":      "3-Rhinella arenarum",
			"confidence": 0.8712,
		}))

	prediction, err := client.Predict(context.Background(), clip)
	require.NoError(t, err)
	assert.Equal(t, "3-Rhinella arenarum", prediction.Label)
	assert.InDelta(t, 0.87, prediction.Confidence, 1e-9)
}

func TestClientPredictModelError(t *testing.T) {
	client := newMockedClient(t)
	clip := writeTestClip(t)

	httpmock.RegisterResponder(http.MethodPost, "http://model.test/predict",
		httpmock.NewJsonResponderOrPanic(http.StatusUnprocessableEntity, map[string]any{
			"error": "audio not recognized",
		}))

	_, err := client.Predict(context.Background(), clip)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryClassification))
	assert.Contains(t, err.Error(), "audio not recognized")
}

func TestClientPredictUndecodableBody(t *testing.T) {
	client := newMockedClient(t)
	clip := writeTestClip(t)

	httpmock.RegisterResponder(http.MethodPost, "http://model.test/predict",
		httpmock.NewStringResponder(http.StatusOK, "not json"))

	_, err := client.Predict(context.Background(), clip)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryClassification))
}

func TestClientPredictMissingFile(t *testing.T) {
	client := newMockedClient(t)

	_, err := client.Predict(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestClientPredictTimeout(t *testing.T) {
	// A hung model server must surface as a timeout error, not hang the
	// request. Uses a real server so the context deadline is honored.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	clip := writeTestClip(t)
	start := time.Now()
	_, err = client.Predict(context.Background(), clip)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryTimeout),
		"deadline hits must be categorized as timeout, got: %v", err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}
