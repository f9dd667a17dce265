package services

import (
	"errors"
	"fmt"
	"log"

	"pressroom/app/models"
	"pressroom/app/repositories"
)

// IngestService runs the content ingestion pipeline: normalize, validate,
// persist the canonical post, best-effort translation of each variant locale,
// and cache revalidation for the affected paths.
type IngestService struct {
	store       repositories.PostStore
	translator  Translator
	revalidator Revalidator
}

// NewIngestService creates an IngestService. translator may be nil to disable
// translation; revalidator may be nil to disable revalidation signalling.
func NewIngestService(store repositories.PostStore, translator Translator, revalidator Revalidator) *IngestService {
	if revalidator == nil {
		revalidator = NoopRevalidator{}
	}
	return &IngestService{
		store:       store,
		translator:  translator,
		revalidator: revalidator,
	}
}

// Ingest processes one inbound payload. A *ValidationError means the payload
// was rejected (client fault); any other error is a store failure. Translation
// and revalidation problems are logged and absorbed: a crash or provider
// outage between the canonical write and the variant writes leaves a valid
// partial state that re-ingestion repairs, since Put overwrites by slug.
func (s *IngestService) Ingest(raw map[string]interface{}) (*models.IngestResult, error) {
	fields := Normalize(raw)

	post, err := ValidatePayload(fields)
	if err != nil {
		return nil, err
	}
	post.BeforeSave()
	if err := post.Validate(); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("Invalid post: %v", err)}
	}

	if err := s.store.Put(post); err != nil {
		return nil, fmt.Errorf("failed to store post: %v", err)
	}

	mapping := s.loadOrCreateMapping(post.Slug)
	attempted := s.translator != nil
	translated := false
	if attempted {
		for _, locale := range models.VariantLocales {
			variant := s.translator.Translate(post, locale)
			if variant == nil {
				continue
			}
			if err := s.store.Put(variant); err != nil {
				log.Printf("failed to store %s variant of %s: %v", locale, post.Slug, err)
				continue
			}
			mapping.Variants[locale] = variant.Slug
			translated = true
		}
	}

	if len(mapping.Variants) > 0 {
		if err := s.store.PutMapping(mapping); err != nil {
			log.Printf("failed to store slug mapping for %s: %v", post.Slug, err)
		}
	}

	if err := s.revalidator.Revalidate(stalePaths(post.Slug, mapping)); err != nil {
		log.Printf("revalidation failed for %s: %v", post.Slug, err)
	}

	return &models.IngestResult{
		Slug:       post.Slug,
		Path:       "/blog/" + post.Slug,
		Attempted:  attempted,
		Translated: translated,
	}, nil
}

func (s *IngestService) loadOrCreateMapping(canonicalSlug string) *models.SlugMapping {
	mapping, err := s.store.GetMapping(canonicalSlug)
	if err == nil {
		if mapping.Variants == nil {
			mapping.Variants = map[string]string{}
		}
		return mapping
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		log.Printf("failed to load slug mapping for %s: %v", canonicalSlug, err)
	}
	return &models.SlugMapping{
		CanonicalSlug: canonicalSlug,
		Variants:      map[string]string{},
	}
}
