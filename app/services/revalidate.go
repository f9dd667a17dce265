package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"pressroom/app/models"
)

// Revalidator signals the rendering layer that cached pages for the given
// paths are stale. Delivery is best effort.
type Revalidator interface {
	Revalidate(paths []string) error
}

// HTTPRevalidator POSTs the stale paths to the rendering layer's
// revalidation endpoint.
type HTTPRevalidator struct {
	url    string
	secret string
	client *http.Client
}

// NewHTTPRevalidator creates a revalidator for the given endpoint.
func NewHTTPRevalidator(url, secret string) *HTTPRevalidator {
	return &HTTPRevalidator{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Revalidate sends the path list; a non-200 answer is an error the caller
// may log and ignore.
func (r *HTTPRevalidator) Revalidate(paths []string) error {
	body, err := json.Marshal(map[string]interface{}{
		"paths":  paths,
		"secret": r.secret,
	})
	if err != nil {
		return err
	}

	resp, err := r.client.Post(r.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revalidation endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// NoopRevalidator is used when no revalidation endpoint is configured.
type NoopRevalidator struct{}

func (NoopRevalidator) Revalidate(paths []string) error {
	log.Printf("revalidation skipped (no endpoint configured): %v", paths)
	return nil
}

// stalePaths lists every cached path affected by a write to the canonical
// slug: the default-locale listing and post pages, and for each variant
// locale the prefixed listing page plus the variant's page under both its
// mapped slug and the legacy suffixed slug.
func stalePaths(canonicalSlug string, mapping *models.SlugMapping) []string {
	paths := []string{"/blog", "/blog/" + canonicalSlug}
	for _, locale := range models.VariantLocales {
		paths = append(paths, "/"+locale+"/blog")
		if variant := mapping.VariantSlug(locale); variant != "" {
			paths = append(paths, "/"+locale+"/blog/"+variant)
		}
		paths = append(paths, "/"+locale+"/blog/"+canonicalSlug+"-"+locale)
	}
	return paths
}
