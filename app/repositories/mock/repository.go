package mock

import (
	"sort"
	"sync"

	"pressroom/app/models"
	"pressroom/app/repositories"
)

// PostStore is an in-memory PostStore for tests.
type PostStore struct {
	mutex    sync.RWMutex
	posts    map[string]*models.Post
	mappings map[string]*models.SlugMapping

	// PutErr, when set, is returned by Put to simulate a store failure.
	PutErr error
}

func NewPostStore() *PostStore {
	return &PostStore{
		posts:    make(map[string]*models.Post),
		mappings: make(map[string]*models.SlugMapping),
	}
}

func (m *PostStore) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]*models.Post)
	m.mappings = make(map[string]*models.SlugMapping)
}

// Len returns the number of stored posts.
func (m *PostStore) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.posts)
}

func (m *PostStore) Put(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}
	post.BeforeSave()
	copied := *post
	m.posts[post.Slug] = &copied
	return nil
}

func (m *PostStore) Get(slug, locale string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if locale == "" {
		locale = models.DefaultLocale
	}

	if locale == models.DefaultLocale {
		post, exists := m.posts[slug]
		if !exists || !post.IsCanonical() {
			return nil, repositories.ErrNotFound
		}
		return post, nil
	}

	if mapping, exists := m.mappings[slug]; exists {
		if variant := mapping.VariantSlug(locale); variant != "" {
			if post, exists := m.posts[variant]; exists {
				return post, nil
			}
		}
	}
	if post, exists := m.posts[slug]; exists && post.Locale == locale {
		return post, nil
	}
	if post, exists := m.posts[slug+"-"+locale]; exists && post.Locale == locale {
		return post, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *PostStore) List(locale string) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var posts []*models.Post
	for _, post := range m.posts {
		if locale == "" || locale == models.DefaultLocale {
			if post.IsCanonical() {
				posts = append(posts, post)
			}
		} else if post.Locale == locale {
			posts = append(posts, post)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
	return posts, nil
}

func (m *PostStore) Related(slug string, tags []string, limit int, locale string) ([]*models.Post, error) {
	posts, err := m.List(locale)
	if err != nil {
		return nil, err
	}

	var pool []*models.Post
	for _, p := range posts {
		if p.Slug == slug || p.CanonicalSlug == slug {
			continue
		}
		pool = append(pool, p)
	}
	if len(tags) > 0 {
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].TagOverlap(tags) > pool[j].TagOverlap(tags)
		})
	}
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

func (m *PostStore) GetMapping(canonicalSlug string) (*models.SlugMapping, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	mapping, exists := m.mappings[canonicalSlug]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return mapping, nil
}

func (m *PostStore) PutMapping(mapping *models.SlugMapping) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.mappings[mapping.CanonicalSlug] = mapping
	return nil
}

func (m *PostStore) Close() error {
	return nil
}
