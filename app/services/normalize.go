package services

import (
	"regexp"
	"strings"

	"pressroom/app/slug"
)

const metaDescriptionLimit = 160

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	// Matches the url of a JSON-LD ImageObject embedded in the content.
	jsonLDImagePattern = regexp.MustCompile(`"@type"\s*:\s*"ImageObject"[^}]*"url"\s*:\s*"([^"]+)"`)
)

// Normalize maps the heterogeneous field spellings produced by upstream
// content tools onto the canonical post shape. Each rule only applies when
// the canonical field is absent; the input map is not modified.
func Normalize(raw map[string]interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		fields[k] = v
	}
	seo := subObject(raw, "seo")

	if stringField(fields, "content") == "" {
		if v := stringField(raw, "html"); v != "" {
			fields["content"] = v
		} else if v := stringField(raw, "markdown"); v != "" {
			fields["content"] = v
		}
	}

	if stringField(fields, "metaDescription") == "" {
		if v := stringField(seo, "metaDescription"); v != "" {
			fields["metaDescription"] = v
		} else if v := stringField(seo, "description"); v != "" {
			fields["metaDescription"] = v
		} else if v := stringField(raw, "description"); v != "" {
			fields["metaDescription"] = v
		}
	}

	if stringField(fields, "slug") == "" {
		if v := stringField(seo, "slug"); v != "" {
			fields["slug"] = v
		} else if v := stringField(seo, "handle"); v != "" {
			fields["slug"] = v
		} else if title := stringField(fields, "title"); title != "" {
			fields["slug"] = slug.Slugify(title)
		}
	}

	if stringField(fields, "featuredImage") == "" {
		if v := firstString(
			stringField(raw, "image"),
			stringField(raw, "imageUrl"),
			stringField(seo, "image"),
			stringField(seo, "ogImage"),
			stringField(seo, "thumbnail"),
		); v != "" {
			fields["featuredImage"] = v
		} else if m := jsonLDImagePattern.FindStringSubmatch(stringField(fields, "content")); m != nil {
			fields["featuredImage"] = m[1]
		}
	}

	if _, present := fields["tags"]; !present {
		if keywords, ok := raw["keywords"]; ok {
			if tags := parseTags(keywords); tags != nil {
				fields["tags"] = tags
			}
		}
	}

	if stringField(fields, "metaDescription") == "" {
		if content := stringField(fields, "content"); content != "" {
			fields["metaDescription"] = synthesizeDescription(content)
		}
	}

	return fields
}

// StripHTML removes markup tags and collapses the remaining whitespace.
func StripHTML(s string) string {
	plain := htmlTagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(plain), " ")
}

// synthesizeDescription builds a meta description from the post content:
// tags stripped, truncated to 160 characters with a trailing ellipsis.
// Truncation counts runes, not bytes, so umlauts near the limit are never
// split into invalid UTF-8.
func synthesizeDescription(content string) string {
	plain := StripHTML(content)
	runes := []rune(plain)
	if len(runes) <= metaDescriptionLimit {
		return plain
	}
	return strings.TrimSpace(string(runes[:metaDescriptionLimit])) + "..."
}

// parseTags accepts either an array of strings or a comma-separated string.
func parseTags(v interface{}) []string {
	switch t := v.(type) {
	case []interface{}:
		var tags []string
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				tags = append(tags, strings.TrimSpace(s))
			}
		}
		return tags
	case []string:
		return t
	case string:
		var tags []string
		for _, part := range strings.Split(t, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		return tags
	}
	return nil
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func subObject(m map[string]interface{}, key string) map[string]interface{} {
	if sub, ok := m[key].(map[string]interface{}); ok {
		return sub
	}
	return nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
