package repositories

import (
	"errors"
	"log"

	"github.com/dgraph-io/badger/v4"

	"pressroom/app/models"
)

const (
	// Key prefixes for different entity types
	postKeyPrefix    = "post:"
	slugMapKeyPrefix = "slugmap:"
)

// BadgerPostStore implements PostStore using BadgerDB, for single-node
// deployments that want durable local storage without a content directory.
type BadgerPostStore struct {
	db *badger.DB
}

// NewBadgerPostStore opens a Badger database at path and returns a store.
func NewBadgerPostStore(path string) (*BadgerPostStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerPostStore{db: db}, nil
}

// NewBadgerPostStoreWithDB wraps an already opened database, used in tests.
func NewBadgerPostStoreWithDB(db *badger.DB) *BadgerPostStore {
	return &BadgerPostStore{db: db}
}

func (s *BadgerPostStore) loadPost(slug string) (*models.Post, error) {
	var post models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(postKeyPrefix + slug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &post)
		})
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *BadgerPostStore) loadMapping(canonicalSlug string) (*models.SlugMapping, error) {
	var mapping models.SlugMapping
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(slugMapKeyPrefix + canonicalSlug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &mapping)
		})
	})
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// Put stores the post under its slug key, overwriting any previous record.
func (s *BadgerPostStore) Put(post *models.Post) error {
	post.BeforeSave()
	data, err := marshalEntity(post)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(postKeyPrefix+post.Slug), data)
	})
}

// Get retrieves the post for a slug in the given locale.
func (s *BadgerPostStore) Get(slug, locale string) (*models.Post, error) {
	return resolvePost(s, slug, locale)
}

// List returns all posts of a locale, most recent first. A record that fails
// to unmarshal is logged and skipped.
func (s *BadgerPostStore) List(locale string) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(postKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var post models.Post
			err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				log.Printf("skipping unreadable post record %s: %v", item.Key(), err)
				continue
			}
			if belongsToLocale(&post, locale) {
				posts = append(posts, &post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByPublishedDesc(posts)
	return posts, nil
}

// Related returns up to limit other posts in the locale ranked by tag overlap.
func (s *BadgerPostStore) Related(slug string, tags []string, limit int, locale string) ([]*models.Post, error) {
	posts, err := s.List(locale)
	if err != nil {
		return nil, err
	}
	return rankRelated(posts, slug, tags, limit), nil
}

// GetMapping retrieves the slug mapping for a canonical slug.
func (s *BadgerPostStore) GetMapping(canonicalSlug string) (*models.SlugMapping, error) {
	return s.loadMapping(canonicalSlug)
}

// PutMapping creates or replaces the mapping record for a canonical slug.
func (s *BadgerPostStore) PutMapping(mapping *models.SlugMapping) error {
	data, err := marshalEntity(mapping)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(slugMapKeyPrefix+mapping.CanonicalSlug), data)
	})
}

// Close closes the underlying database.
func (s *BadgerPostStore) Close() error {
	return s.db.Close()
}
