package repositories

import "pressroom/app/models"

// PostStore defines the interface for post persistence. Posts are keyed by
// slug; Put has create-or-overwrite semantics and is idempotent under retry.
type PostStore interface {
	Put(post *models.Post) error
	Get(slug, locale string) (*models.Post, error)
	List(locale string) ([]*models.Post, error)
	Related(slug string, tags []string, limit int, locale string) ([]*models.Post, error)
	GetMapping(canonicalSlug string) (*models.SlugMapping, error)
	PutMapping(mapping *models.SlugMapping) error
	Close() error
}
