package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"pressroom/app/models"
	"pressroom/app/slug"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

const translatorSystemPrompt = "You are a professional translator. " +
	"Preserve all HTML markup exactly as it appears in the source. " +
	"Respond with a JSON object only, no prose."

// Translator produces a locale variant of a canonical post, or nil when
// translation is unavailable or fails. Failures never propagate to callers.
type Translator interface {
	Translate(post *models.Post, locale string) *models.Post
}

// ChatMessage represents a single message in the chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequestBody represents the request payload for the chat completions API.
type ChatRequestBody struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// ChatChoice represents one of the returned completions.
type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

// ChatResponseBody represents the structure of the API response.
type ChatResponseBody struct {
	Choices []ChatChoice `json:"choices"`
}

// translatedFields is the JSON shape the provider is asked to return.
type translatedFields struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Content         string   `json:"content"`
	MetaDescription string   `json:"metaDescription"`
	Tags            []string `json:"tags"`
}

// OpenAITranslator calls the OpenAI chat completions API.
type OpenAITranslator struct {
	apiKey string
	model  string
	apiURL string
	client *http.Client
}

// NewOpenAITranslator creates a translator using the given credentials. An
// empty apiKey yields a translator that declines every request.
func NewOpenAITranslator(apiKey, model string) *OpenAITranslator {
	return &OpenAITranslator{
		apiKey: apiKey,
		model:  model,
		apiURL: openAIChatURL,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Translate renders the post's translatable fields into the target locale.
// Any failure (missing credentials, transport error, non-200 response, empty
// completion, unparsable JSON) logs and returns nil; the caller treats nil as
// "no variant produced".
func (t *OpenAITranslator) Translate(post *models.Post, locale string) *models.Post {
	language, supported := models.LanguageNames[locale]
	if !supported {
		log.Printf("translation skipped: unsupported locale %q", locale)
		return nil
	}
	if t.apiKey == "" {
		log.Printf("translation skipped for %s: no API key configured", post.Slug)
		return nil
	}

	source, err := json.Marshal(map[string]interface{}{
		"title":           post.Title,
		"content":         post.Content,
		"metaDescription": post.MetaDescription,
		"tags":            post.Tags,
	})
	if err != nil {
		log.Printf("translation failed for %s: %v", post.Slug, err)
		return nil
	}

	prompt := fmt.Sprintf("Translate the following blog post into %s. "+
		"Return a JSON object with the keys title, slug, content, metaDescription and tags. "+
		"The slug must be a lowercase hyphenated identifier derived from the translated title.\n\n%s",
		language, source)

	reqBody := ChatRequestBody{
		Model: t.model,
		Messages: []ChatMessage{
			{Role: "system", Content: translatorSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   4096,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		log.Printf("translation failed for %s: %v", post.Slug, err)
		return nil
	}

	req, err := http.NewRequest("POST", t.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		log.Printf("translation failed for %s: %v", post.Slug, err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		log.Printf("translation failed for %s: %v", post.Slug, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		log.Printf("translation failed for %s: provider returned %d: %s", post.Slug, resp.StatusCode, detail)
		return nil
	}

	var responseBody ChatResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		log.Printf("translation failed for %s: %v", post.Slug, err)
		return nil
	}
	if len(responseBody.Choices) == 0 || responseBody.Choices[0].Message.Content == "" {
		log.Printf("translation failed for %s: empty completion", post.Slug)
		return nil
	}

	var fields translatedFields
	raw := stripCodeFence(responseBody.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		log.Printf("translation failed for %s: unparsable completion: %v", post.Slug, err)
		return nil
	}
	if fields.Title == "" || fields.Content == "" {
		log.Printf("translation failed for %s: completion missing required fields", post.Slug)
		return nil
	}

	variant := &models.Post{
		Title:           fields.Title,
		Slug:            variantSlug(fields, post.Slug, locale),
		Content:         fields.Content,
		MetaDescription: fields.MetaDescription,
		FeaturedImage:   post.FeaturedImage,
		Author:          post.Author,
		Tags:            fields.Tags,
		PublishedAt:     post.PublishedAt,
		Locale:          locale,
		CanonicalSlug:   post.Slug,
	}
	if variant.MetaDescription == "" {
		variant.MetaDescription = synthesizeDescription(variant.Content)
	}
	if variant.Tags == nil {
		variant.Tags = post.Tags
	}
	return variant
}

// variantSlug picks the variant's slug: the provider's own if usable, else
// one derived from the translated title, else the suffixed canonical slug.
func variantSlug(fields translatedFields, canonicalSlug, locale string) string {
	if len(fields.Slug) >= 5 && slug.Valid(fields.Slug) {
		return fields.Slug
	}
	if derived := slug.Slugify(fields.Title); derived != "" {
		return derived
	}
	return canonicalSlug + "-" + locale
}

// stripCodeFence removes a leading/trailing markdown fence from a completion
// so code-fenced JSON still parses.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
