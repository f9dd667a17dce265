package services

import (
	"fmt"
	"time"

	"pressroom/app/models"
	"pressroom/app/slug"
)

// ValidationError is a client-facing rejection of a normalized payload. Its
// reason is surfaced verbatim in the 400 response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// acceptedDateLayouts are tried in order when parsing publishedAt.
var acceptedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ValidatePayload checks the normalized fields and builds the canonical post.
// Required fields are checked in a fixed order, each with its own reason. A
// malformed slug gets one repair pass through Slugify before rejection.
// Optional fields of the wrong type fail validation, except publishedAt,
// where an unparsable date is dropped so the store substitutes the write time.
func ValidatePayload(fields map[string]interface{}) (*models.Post, error) {
	title := stringField(fields, "title")
	if title == "" {
		return nil, validationErrorf("Missing or invalid title")
	}
	content := stringField(fields, "content")
	if content == "" {
		return nil, validationErrorf("Missing or invalid content")
	}
	slugValue := stringField(fields, "slug")
	if slugValue == "" {
		return nil, validationErrorf("Missing or invalid slug")
	}
	metaDescription := stringField(fields, "metaDescription")
	if metaDescription == "" {
		return nil, validationErrorf("Missing or invalid metaDescription")
	}

	if !slug.Valid(slugValue) {
		repaired := slug.Slugify(slugValue)
		if !slug.Valid(repaired) {
			return nil, validationErrorf("Invalid slug format: %q", slugValue)
		}
		slugValue = repaired
	}

	post := &models.Post{
		Title:           title,
		Slug:            slugValue,
		Content:         content,
		MetaDescription: metaDescription,
		Locale:          models.DefaultLocale,
	}

	if v, present := fields["featuredImage"]; present {
		s, ok := v.(string)
		if !ok {
			return nil, validationErrorf("Invalid type for featuredImage")
		}
		post.FeaturedImage = s
	}
	if v, present := fields["author"]; present {
		s, ok := v.(string)
		if !ok {
			return nil, validationErrorf("Invalid type for author")
		}
		post.Author = s
	}
	if v, present := fields["tags"]; present {
		tags, err := coerceTags(v)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
	}
	if v, present := fields["publishedAt"]; present {
		if s, ok := v.(string); ok {
			for _, layout := range acceptedDateLayouts {
				if parsed, err := time.Parse(layout, s); err == nil {
					post.PublishedAt = parsed
					break
				}
			}
		}
		// Anything unparsable stays zero and defaults to now on write.
	}

	return post, nil
}

func coerceTags(v interface{}) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return t, nil
	case []interface{}:
		tags := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, validationErrorf("Invalid type for tags")
			}
			tags = append(tags, s)
		}
		return tags, nil
	}
	return nil, validationErrorf("Invalid type for tags")
}
