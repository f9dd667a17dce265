package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pressroom/app/models"
)

// mappingFileName holds the slug-mapping table. The leading underscore keeps
// it out of the per-post enumeration.
const mappingFileName = "_slug-mappings.json"

// FilePostStore persists one JSON file per post under a content directory.
type FilePostStore struct {
	dir   string
	mutex sync.RWMutex
}

// NewFilePostStore creates a FilePostStore, creating dir if absent.
func NewFilePostStore(dir string) (*FilePostStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %v", err)
	}
	return &FilePostStore{dir: dir}, nil
}

func (s *FilePostStore) postPath(slug string) string {
	return filepath.Join(s.dir, slug+".json")
}

func (s *FilePostStore) loadPost(slug string) (*models.Post, error) {
	data, err := os.ReadFile(s.postPath(slug))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var post models.Post
	if err := unmarshalEntity(data, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *FilePostStore) loadMapping(canonicalSlug string) (*models.SlugMapping, error) {
	mappings, err := s.readMappingFile()
	if err != nil {
		return nil, err
	}
	mapping, ok := mappings[canonicalSlug]
	if !ok {
		return nil, ErrNotFound
	}
	return mapping, nil
}

func (s *FilePostStore) readMappingFile() (map[string]*models.SlugMapping, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, mappingFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]*models.SlugMapping{}, nil
	}
	if err != nil {
		return nil, err
	}
	mappings := map[string]*models.SlugMapping{}
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slug mappings: %v", err)
	}
	return mappings, nil
}

// Put writes the post to <slug>.json, overwriting any previous record.
func (s *FilePostStore) Put(post *models.Post) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post.BeforeSave()
	data, err := marshalEntity(post)
	if err != nil {
		return err
	}
	return os.WriteFile(s.postPath(post.Slug), data, 0o644)
}

// Get retrieves the post for a slug in the given locale.
func (s *FilePostStore) Get(slug, locale string) (*models.Post, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return resolvePost(s, slug, locale)
}

// List returns all posts of a locale, most recent first. An unreadable file
// is logged and skipped so one bad record cannot hide the rest.
func (s *FilePostStore) List(locale string) ([]*models.Post, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var posts []*models.Post
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		post, err := s.loadPost(strings.TrimSuffix(name, ".json"))
		if err != nil {
			log.Printf("skipping unreadable post record %s: %v", name, err)
			continue
		}
		if belongsToLocale(post, locale) {
			posts = append(posts, post)
		}
	}

	sortByPublishedDesc(posts)
	return posts, nil
}

// Related returns up to limit other posts in the locale ranked by tag overlap.
func (s *FilePostStore) Related(slug string, tags []string, limit int, locale string) ([]*models.Post, error) {
	posts, err := s.List(locale)
	if err != nil {
		return nil, err
	}
	return rankRelated(posts, slug, tags, limit), nil
}

// GetMapping retrieves the slug mapping for a canonical slug.
func (s *FilePostStore) GetMapping(canonicalSlug string) (*models.SlugMapping, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.loadMapping(canonicalSlug)
}

// PutMapping creates or replaces the mapping record for a canonical slug.
func (s *FilePostStore) PutMapping(mapping *models.SlugMapping) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	mappings, err := s.readMappingFile()
	if err != nil {
		return err
	}
	mappings[mapping.CanonicalSlug] = mapping
	data, err := json.MarshalIndent(mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal slug mappings: %v", err)
	}
	return os.WriteFile(filepath.Join(s.dir, mappingFileName), data, 0o644)
}

// Close is a no-op for the file backend.
func (s *FilePostStore) Close() error {
	return nil
}
