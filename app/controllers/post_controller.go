package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"pressroom/app/models"
	"pressroom/app/repositories"
)

const defaultRelatedLimit = 3

// PostController serves the read API the rendering layer builds pages from.
type PostController struct {
	store repositories.PostStore
}

// NewPostController creates a new PostController
func NewPostController(store repositories.PostStore) *PostController {
	return &PostController{store: store}
}

// Index lists all posts of a locale, most recent first.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	locale := requestLocale(r)
	posts, err := pc.store.List(locale)
	if err != nil {
		pc.sendError(w, "Failed to fetch posts: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	pc.sendJSON(w, map[string]interface{}{
		"posts":  posts,
		"locale": locale,
	})
}

// Show returns the post for a slug in the requested locale. A missing locale
// variant is a 404, never the default-locale content.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	post, err := pc.store.Get(vars["slug"], requestLocale(r))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			pc.sendError(w, "Post not found", http.StatusNotFound)
			return
		}
		pc.sendError(w, "Failed to fetch post: "+err.Error(), http.StatusInternalServerError)
		return
	}
	pc.sendJSON(w, post)
}

// Related returns up to limit other posts of the locale, ranked by overlap
// with the given tags, falling back to recency.
func (pc *PostController) Related(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	locale := requestLocale(r)

	limit := defaultRelatedLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	var tags []string
	if tagsStr := r.URL.Query().Get("tags"); tagsStr != "" {
		for _, tag := range strings.Split(tagsStr, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
	}

	posts, err := pc.store.Related(vars["slug"], tags, limit, locale)
	if err != nil {
		pc.sendError(w, "Failed to fetch related posts: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	pc.sendJSON(w, map[string]interface{}{
		"posts":  posts,
		"locale": locale,
	})
}

func requestLocale(r *http.Request) string {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		return models.DefaultLocale
	}
	return locale
}

// Helper methods for consistent response handling

func (pc *PostController) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (pc *PostController) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
