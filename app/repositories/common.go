package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"pressroom/app/models"
)

var (
	ErrNotFound = errors.New("record not found")
)

// recordReader is the raw per-slug access each backend provides; the shared
// locale resolution and listing logic is built on top of it.
type recordReader interface {
	loadPost(slug string) (*models.Post, error)
	loadMapping(canonicalSlug string) (*models.SlugMapping, error)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return nil
}

// resolvePost finds the post for a caller-supplied slug in the given locale.
// For the default locale only canonical records qualify. For a variant locale
// the slug may be the canonical slug (resolved through the mapping table), the
// variant's own slug, or a legacy suffixed slug; a missing variant is
// ErrNotFound, never a fallback to the default-locale content.
func resolvePost(r recordReader, slug, locale string) (*models.Post, error) {
	if locale == "" {
		locale = models.DefaultLocale
	}

	if locale == models.DefaultLocale {
		post, err := r.loadPost(slug)
		if err != nil {
			return nil, err
		}
		if !post.IsCanonical() {
			return nil, ErrNotFound
		}
		return post, nil
	}

	if mapping, err := r.loadMapping(slug); err == nil {
		if variant := mapping.VariantSlug(locale); variant != "" {
			return r.loadPost(variant)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if post, err := r.loadPost(slug); err == nil {
		if post.Locale == locale {
			return post, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Legacy suffix convention, accepted on input only.
	if post, err := r.loadPost(slug + "-" + locale); err == nil {
		if post.Locale == locale {
			return post, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return nil, ErrNotFound
}

// belongsToLocale reports whether a post is part of the given locale's set.
func belongsToLocale(post *models.Post, locale string) bool {
	if locale == "" || locale == models.DefaultLocale {
		return post.IsCanonical()
	}
	return post.Locale == locale
}

// sortByPublishedDesc orders posts most recent first, keeping the incoming
// order for ties.
func sortByPublishedDesc(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
}

// rankRelated returns up to limit posts from candidates, excluding the named
// slug and anything linked to it, ranked by tag overlap then recency.
func rankRelated(candidates []*models.Post, slug string, tags []string, limit int) []*models.Post {
	var pool []*models.Post
	for _, p := range candidates {
		if p.Slug == slug || p.CanonicalSlug == slug {
			continue
		}
		pool = append(pool, p)
	}

	sortByPublishedDesc(pool)
	if len(tags) > 0 {
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].TagOverlap(tags) > pool[j].TagOverlap(tags)
		})
	}

	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}
