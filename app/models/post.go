package models

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"pressroom/app/slug"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// "slug" checks the lowercase-hyphenated identifier format.
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	})
	return v
}

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.PublishedAt.IsZero() {
		return errors.New("publishedAt cannot be zero")
	}

	return nil
}

// BeforeSave sets up derived fields before the post is written. UpdatedAt is
// refreshed on every write; PublishedAt defaults to now on first publication.
func (p *Post) BeforeSave() {
	now := time.Now().UTC()
	if p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	p.UpdatedAt = now
	if p.Locale == "" {
		p.Locale = DefaultLocale
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// IsCanonical reports whether the post is a default-locale original rather
// than a translated variant.
func (p *Post) IsCanonical() bool {
	return p.CanonicalSlug == ""
}

// TagOverlap counts how many of the given tags the post shares.
func (p *Post) TagOverlap(tags []string) int {
	if len(tags) == 0 || len(p.Tags) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(p.Tags))
	for _, t := range p.Tags {
		seen[t] = true
	}
	count := 0
	for _, t := range tags {
		if seen[t] {
			count++
		}
	}
	return count
}
