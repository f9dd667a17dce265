package routes

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"pressroom/app/controllers"
	"pressroom/app/middleware"
	"pressroom/app/ratelimit"
	"pressroom/app/repositories"
	"pressroom/app/services"
)

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(secret string, store repositories.PostStore, translator services.Translator, revalidator services.Revalidator, limiter *ratelimit.Limiter) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	ingest := services.NewIngestService(store, translator, revalidator)
	webhookController := controllers.NewWebhookController(secret, ingest, limiter)
	postController := controllers.NewPostController(store)

	// The webhook handler answers non-POST methods itself with 405.
	router.HandleFunc("/api/webhook", webhookController.Handle)

	// Read API for the rendering layer
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("/{slug}", postController.Show).Methods("GET")
	posts.HandleFunc("/{slug}/related", postController.Related).Methods("GET")

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	}).Methods("GET")

	return router
}
