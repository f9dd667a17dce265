package repositories

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"pressroom/app/models"
)

const githubAPIBaseURL = "https://api.github.com"

// GitHubPostStore persists posts as JSON objects in a version-controlled
// repository through the GitHub contents API. Updates follow a
// read-modify-write: the existing object's sha is fetched first and attached
// to the write so the API treats it as an update instead of a conflicting
// create. Two concurrent writes to the same slug race; the API may answer 409
// for the loser, which surfaces as an error (no distributed lock is taken).
type GitHubPostStore struct {
	client      *http.Client
	baseURL     string
	token       string
	owner       string
	repo        string
	branch      string
	contentPath string
}

// NewGitHubPostStore creates a GitHubPostStore targeting the given repository.
func NewGitHubPostStore(token, owner, repo, branch, contentPath string) *GitHubPostStore {
	return &GitHubPostStore{
		client:      &http.Client{Timeout: 30 * time.Second},
		baseURL:     githubAPIBaseURL,
		token:       token,
		owner:       owner,
		repo:        repo,
		branch:      branch,
		contentPath: strings.Trim(contentPath, "/"),
	}
}

// contentObject is the subset of the contents API response we use.
type contentObject struct {
	Name    string `json:"name"`
	SHA     string `json:"sha"`
	Content string `json:"content"`
}

func (s *GitHubPostStore) objectURL(name string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s/%s?ref=%s",
		s.baseURL, s.owner, s.repo, s.contentPath, name, s.branch)
}

func (s *GitHubPostStore) doRequest(method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.client.Do(req)
}

// fetchObject returns the decoded content and sha of a repository object, or
// ErrNotFound if the object does not exist yet.
func (s *GitHubPostStore) fetchObject(name string) ([]byte, string, error) {
	resp, err := s.doRequest(http.MethodGet, s.objectURL(name), nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("content API returned %d: %s", resp.StatusCode, detail)
	}

	var obj contentObject
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return nil, "", fmt.Errorf("failed to decode content object: %v", err)
	}
	// The API wraps base64 payloads in newlines.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(obj.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode content body: %v", err)
	}
	return raw, obj.SHA, nil
}

// writeObject creates or updates a repository object. sha may be empty for a
// create.
func (s *GitHubPostStore) writeObject(name, message string, data []byte, sha string) error {
	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  s.branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := s.doRequest(http.MethodPut, s.objectURL(name), bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("content API returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}

func (s *GitHubPostStore) loadPost(slug string) (*models.Post, error) {
	data, _, err := s.fetchObject(slug + ".json")
	if err != nil {
		return nil, err
	}
	var post models.Post
	if err := unmarshalEntity(data, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *GitHubPostStore) loadMapping(canonicalSlug string) (*models.SlugMapping, error) {
	mappings, err := s.readMappings()
	if err != nil {
		return nil, err
	}
	mapping, ok := mappings[canonicalSlug]
	if !ok {
		return nil, ErrNotFound
	}
	return mapping, nil
}

func (s *GitHubPostStore) readMappings() (map[string]*models.SlugMapping, error) {
	data, _, err := s.fetchObject(mappingFileName)
	if err == ErrNotFound {
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

// Put writes the post through the contents API, attaching the existing
// object's sha when the post already exists.
func (s *GitHubPostStore) Put(post *models.Post) error {
	post.BeforeSave()
	data, err := marshalEntity(post)
	if err != nil {
		return err
	}

	name := post.Slug + ".json"
	_, sha, err := s.fetchObject(name)
	if err != nil && err != ErrNotFound {
		return err
	}

	message := fmt.Sprintf("content: publish %s", post.Slug)
	if sha != "" {
		message = fmt.Sprintf("content: update %s", post.Slug)
	}
	return s.writeObject(name, message, data, sha)
}

// Get retrieves the post for a slug in the given locale.
func (s *GitHubPostStore) Get(slug, locale string) (*models.Post, error) {
	return resolvePost(s, slug, locale)
}

// List enumerates the content path and returns all posts of a locale, most
// recent first. An object that fails to fetch or parse is logged and skipped.
func (s *GitHubPostStore) List(locale string) ([]*models.Post, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		s.baseURL, s.owner, s.repo, s.contentPath, s.branch)
	resp, err := s.doRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("content API returned %d: %s", resp.StatusCode, detail)
	}

	var listing []contentObject
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode content listing: %v", err)
	}

	var posts []*models.Post
	for _, obj := range listing {
		if strings.HasPrefix(obj.Name, "_") || !strings.HasSuffix(obj.Name, ".json") {
			continue
		}
		post, err := s.loadPost(strings.TrimSuffix(obj.Name, ".json"))
		if err != nil {
			log.Printf("skipping unreadable post record %s: %v", obj.Name, err)
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
func (s *GitHubPostStore) Related(slug string, tags []string, limit int, locale string) ([]*models.Post, error) {
	posts, err := s.List(locale)
	if err != nil {
		return nil, err
	}
	return rankRelated(posts, slug, tags, limit), nil
}

// GetMapping retrieves the slug mapping for a canonical slug.
func (s *GitHubPostStore) GetMapping(canonicalSlug string) (*models.SlugMapping, error) {
	return s.loadMapping(canonicalSlug)
}

// PutMapping merges the mapping into the shared mapping object and writes it
// back with the current sha.
func (s *GitHubPostStore) PutMapping(mapping *models.SlugMapping) error {
	mappings := map[string]*models.SlugMapping{}
	data, sha, err := s.fetchObject(mappingFileName)
	if err == nil {
		if err := json.Unmarshal(data, &mappings); err != nil {
			return fmt.Errorf("failed to unmarshal slug mappings: %v", err)
		}
	} else if err != ErrNotFound {
		return err
	}

	mappings[mapping.CanonicalSlug] = mapping
	out, err := json.Marshal(mappings)
	if err != nil {
		return err
	}
	return s.writeObject(mappingFileName, fmt.Sprintf("content: map %s", mapping.CanonicalSlug), out, sha)
}

// Close is a no-op for the remote backend.
func (s *GitHubPostStore) Close() error {
	return nil
}
