package models

import "time"

// Supported locales. German is the canonical content language; English and
// French are produced by machine translation.
const (
	DefaultLocale = "de"
)

// VariantLocales are the non-default locales a canonical post is translated into.
var VariantLocales = []string{"en", "fr"}

// LanguageNames maps a variant locale to the language name used in
// translation prompts.
var LanguageNames = map[string]string{
	"en": "English",
	"fr": "French",
}

// Post is the canonical content entity, one JSON record per slug.
// A locale variant carries the slug of its canonical ancestor in
// CanonicalSlug; canonical (default-locale) posts leave it empty.
type Post struct {
	Title           string    `json:"title" validate:"required"`
	Slug            string    `json:"slug" validate:"required,slug"`
	Content         string    `json:"content" validate:"required"`
	MetaDescription string    `json:"metaDescription" validate:"required"`
	FeaturedImage   string    `json:"featuredImage,omitempty" validate:"omitempty,url"`
	Author          string    `json:"author,omitempty"`
	Tags            []string  `json:"tags"`
	PublishedAt     time.Time `json:"publishedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Locale          string    `json:"locale"`
	CanonicalSlug   string    `json:"canonicalSlug,omitempty"`
}

// SlugMapping associates a canonical slug with its per-locale variant slugs.
type SlugMapping struct {
	CanonicalSlug string            `json:"canonicalSlug"`
	Variants      map[string]string `json:"variants"`
}

// VariantSlug returns the variant slug for locale, or "" if none is recorded.
func (m *SlugMapping) VariantSlug(locale string) string {
	if m == nil || m.Variants == nil {
		return ""
	}
	return m.Variants[locale]
}

// WebhookResponse is the JSON envelope returned by the ingestion endpoint.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Slug    string `json:"slug,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// IngestResult reports the outcome of a successful ingestion. Attempted is
// true when a translator was configured and ran, whether or not any variant
// was produced; Translated is true only when at least one variant persisted.
type IngestResult struct {
	Slug       string
	Path       string
	Attempted  bool
	Translated bool
}
