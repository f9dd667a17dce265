package repositories

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressroom/app/models"
)

// fakeContentAPI emulates the contents API: GET returns stored objects with
// their sha, PUT requires the current sha for updates.
type fakeContentAPI struct {
	t       *testing.T
	objects map[string]fakeObject // keyed by file name
	puts    []map[string]string
}

type fakeObject struct {
	data []byte
	sha  string
}

func (f *fakeContentAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path)
		name := parts[len(parts)-1]

		switch r.Method {
		case http.MethodGet:
			obj, ok := f.objects[name]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"name":    name,
				"sha":     obj.sha,
				"content": base64.StdEncoding.EncodeToString(obj.data),
			})
		case http.MethodPut:
			var payload map[string]string
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&payload))
			f.puts = append(f.puts, payload)

			existing, exists := f.objects[name]
			if exists && payload["sha"] != existing.sha {
				w.WriteHeader(http.StatusConflict)
				return
			}
			data, err := base64.StdEncoding.DecodeString(payload["content"])
			require.NoError(f.t, err)
			f.objects[name] = fakeObject{data: data, sha: "sha-" + name + "-v2"}
			if exists {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusCreated)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func splitPath(p string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(p); i++ {
		if i == len(p) || p[i] == '/' {
			if i > start {
				parts = append(parts, p[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

func newTestGitHubStore(t *testing.T) (*GitHubPostStore, *fakeContentAPI) {
	t.Helper()
	api := &fakeContentAPI{t: t, objects: map[string]fakeObject{}}
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	store := NewGitHubPostStore("test-token", "acme", "website", "main", "content/posts")
	store.baseURL = server.URL
	return store, api
}

func TestGitHubStoreCreateOmitsRevisionMarker(t *testing.T) {
	store, api := newTestGitHubStore(t)

	post := &models.Post{
		Title:           "Mein Test",
		Slug:            "mein-test",
		Content:         "<p>Hallo</p>",
		MetaDescription: "desc",
		PublishedAt:     time.Now(),
	}
	require.NoError(t, store.Put(post))

	require.Len(t, api.puts, 1)
	_, hasSHA := api.puts[0]["sha"]
	assert.False(t, hasSHA, "create must not carry a sha")
	assert.Equal(t, "main", api.puts[0]["branch"])
	assert.NotEmpty(t, api.puts[0]["message"])
}

func TestGitHubStoreUpdateCarriesRevisionMarker(t *testing.T) {
	store, api := newTestGitHubStore(t)

	post := &models.Post{
		Title:           "Mein Test",
		Slug:            "mein-test",
		Content:         "<p>Hallo</p>",
		MetaDescription: "desc",
		PublishedAt:     time.Now(),
	}
	require.NoError(t, store.Put(post))
	require.NoError(t, store.Put(post))

	require.Len(t, api.puts, 2)
	assert.Equal(t, "sha-mein-test.json-v2", api.puts[1]["sha"])
}

func TestGitHubStoreGetRoundtrip(t *testing.T) {
	store, _ := newTestGitHubStore(t)

	post := &models.Post{
		Title:           "Mein Test",
		Slug:            "mein-test",
		Content:         "<p>Hallo</p>",
		MetaDescription: "desc",
		PublishedAt:     time.Now(),
	}
	require.NoError(t, store.Put(post))

	got, err := store.Get("mein-test", "de")
	require.NoError(t, err)
	assert.Equal(t, "Mein Test", got.Title)
}

func TestGitHubStoreGetMissing(t *testing.T) {
	store, _ := newTestGitHubStore(t)
	_, err := store.Get("nope", "de")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitHubStoreMappingMerge(t *testing.T) {
	store, _ := newTestGitHubStore(t)

	require.NoError(t, store.PutMapping(&models.SlugMapping{
		CanonicalSlug: "erster",
		Variants:      map[string]string{"en": "first"},
	}))
	require.NoError(t, store.PutMapping(&models.SlugMapping{
		CanonicalSlug: "zweiter",
		Variants:      map[string]string{"en": "second"},
	}))

	got, err := store.GetMapping("erster")
	require.NoError(t, err)
	assert.Equal(t, "first", got.VariantSlug("en"))

	got, err = store.GetMapping("zweiter")
	require.NoError(t, err)
	assert.Equal(t, "second", got.VariantSlug("en"))
}
