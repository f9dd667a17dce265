package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressroom/app/models"
	"pressroom/app/ratelimit"
	"pressroom/app/repositories/mock"
)

func newTestRouter(store *mock.PostStore) http.Handler {
	return SetupRoutes("geheim", store, nil, nil, ratelimit.New(10, time.Minute))
}

func TestHealthz(t *testing.T) {
	server := httptest.NewServer(newTestRouter(mock.NewPostStore()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhookRouteEndToEnd(t *testing.T) {
	store := mock.NewPostStore()
	server := httptest.NewServer(newTestRouter(store))
	defer server.Close()

	body := `{"title":"Mein Test","content":"<p>Hallo</p>","metaDescription":"desc"}`
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/webhook", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer geheim")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, store.Len())
}

func TestWebhookRouteRejectsGet(t *testing.T) {
	server := httptest.NewServer(newTestRouter(mock.NewPostStore()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/webhook")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPostRoutes(t *testing.T) {
	store := mock.NewPostStore()
	require.NoError(t, store.Put(&models.Post{
		Title:           "Mein Test",
		Slug:            "mein-test",
		Content:         "<p>Hallo</p>",
		MetaDescription: "desc",
		PublishedAt:     time.Now(),
		Locale:          "de",
	}))
	server := httptest.NewServer(newTestRouter(store))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/posts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/posts/mein-test")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/posts/mein-test/related")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/posts/fehlt")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
