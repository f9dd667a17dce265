package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressroom/app/models"
	"pressroom/app/repositories/mock"
)

// stubTranslator returns canned variants per locale; nil entries simulate
// provider failures.
type stubTranslator struct {
	variants map[string]*models.Post
	calls    []string
}

func (s *stubTranslator) Translate(post *models.Post, locale string) *models.Post {
	s.calls = append(s.calls, locale)
	return s.variants[locale]
}

type recordingRevalidator struct {
	paths [][]string
}

func (r *recordingRevalidator) Revalidate(paths []string) error {
	r.paths = append(r.paths, paths)
	return nil
}

func TestIngestHappyPath(t *testing.T) {
	store := mock.NewPostStore()
	reval := &recordingRevalidator{}
	svc := NewIngestService(store, nil, reval)

	result, err := svc.Ingest(map[string]interface{}{
		"title":           "Mein Test",
		"content":         "<p>Hallo</p>",
		"metaDescription": "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, "mein-test", result.Slug)
	assert.Equal(t, "/blog/mein-test", result.Path)
	assert.False(t, result.Attempted)
	assert.False(t, result.Translated)

	stored, err := store.Get("mein-test", "de")
	require.NoError(t, err)
	assert.Equal(t, "Mein Test", stored.Title)
	assert.Equal(t, []string{}, stored.Tags)
	assert.False(t, stored.UpdatedAt.IsZero())

	require.Len(t, reval.paths, 1)
	assert.Contains(t, reval.paths[0], "/blog")
	assert.Contains(t, reval.paths[0], "/blog/mein-test")
	assert.Contains(t, reval.paths[0], "/en/blog")
	assert.Contains(t, reval.paths[0], "/fr/blog")
}

func TestIngestValidationFailure(t *testing.T) {
	store := mock.NewPostStore()
	svc := NewIngestService(store, nil, nil)

	_, err := svc.Ingest(map[string]interface{}{"title": "nur titel"})
	require.Error(t, err)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, store.Len())
}

func TestIngestStoreFailure(t *testing.T) {
	store := mock.NewPostStore()
	store.PutErr = errors.New("disk voll")
	svc := NewIngestService(store, nil, nil)

	_, err := svc.Ingest(map[string]interface{}{
		"title":           "Mein Test",
		"content":         "<p>Hallo</p>",
		"metaDescription": "desc",
	})
	require.Error(t, err)
	var vErr *ValidationError
	assert.False(t, errors.As(err, &vErr), "store failure must not look like a validation error")
}

func TestIngestPersistsTranslations(t *testing.T) {
	store := mock.NewPostStore()
	translator := &stubTranslator{variants: map[string]*models.Post{
		"en": {
			Title: "My Test", Slug: "my-test", Content: "<p>Hello</p>",
			MetaDescription: "desc", Locale: "en", CanonicalSlug: "mein-test",
		},
		"fr": {
			Title: "Mon Test", Slug: "mon-test", Content: "<p>Bonjour</p>",
			MetaDescription: "desc", Locale: "fr", CanonicalSlug: "mein-test",
		},
	}}
	reval := &recordingRevalidator{}
	svc := NewIngestService(store, translator, reval)

	result, err := svc.Ingest(map[string]interface{}{
		"title":           "Mein Test",
		"content":         "<p>Hallo</p>",
		"metaDescription": "desc",
	})
	require.NoError(t, err)
	assert.True(t, result.Attempted)
	assert.True(t, result.Translated)
	assert.Equal(t, []string{"en", "fr"}, translator.calls)

	enPost, err := store.Get("mein-test", "en")
	require.NoError(t, err)
	assert.Equal(t, "my-test", enPost.Slug)

	mapping, err := store.GetMapping("mein-test")
	require.NoError(t, err)
	assert.Equal(t, "my-test", mapping.VariantSlug("en"))
	assert.Equal(t, "mon-test", mapping.VariantSlug("fr"))

	require.Len(t, reval.paths, 1)
	assert.Contains(t, reval.paths[0], "/en/blog/my-test")
	assert.Contains(t, reval.paths[0], "/fr/blog/mon-test")
}

func TestIngestTranslationFailureIsNonFatal(t *testing.T) {
	store := mock.NewPostStore()
	translator := &stubTranslator{variants: map[string]*models.Post{}}
	svc := NewIngestService(store, translator, nil)

	result, err := svc.Ingest(map[string]interface{}{
		"title":           "Mein Test",
		"content":         "<p>Hallo</p>",
		"metaDescription": "desc",
	})
	require.NoError(t, err)
	assert.True(t, result.Attempted)
	assert.False(t, result.Translated)

	_, err = store.Get("mein-test", "de")
	assert.NoError(t, err)
	_, err = store.Get("mein-test", "en")
	assert.Error(t, err)
}

func TestIngestOverwriteIsIdempotent(t *testing.T) {
	store := mock.NewPostStore()
	svc := NewIngestService(store, nil, nil)

	payload := map[string]interface{}{
		"title":           "Mein Test",
		"content":         "<p>Hallo</p>",
		"metaDescription": "desc",
	}
	_, err := svc.Ingest(payload)
	require.NoError(t, err)
	_, err = svc.Ingest(payload)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}
