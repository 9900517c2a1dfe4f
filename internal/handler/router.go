package handler

import (
	"net/http"

	"inkforge-server/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"inkforge"}`))
	}).Methods("GET")

	// Initialize handlers
	authHandler := NewAuthHandler()
	generationHandler := NewGenerationHandler(container.GenerationService, container.UsageService, container.Logger)
	storyHandler := NewStoryHandler(container.StoryService, container.Logger)
	billingHandler := NewBillingHandler(container.BillingService, container.Logger)

	// Webhook endpoint authenticates by signature, not bearer token
	api.HandleFunc("/billing/webhook", billingHandler.Webhook).Methods("POST")

	// Auth middleware for protected routes
	authMiddleware := NewAuthMiddleware(container.AuthService, container.Logger)

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware.Middleware)

	// Auth routes (protected)
	protected.HandleFunc("/auth/profile", authHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/auth/validate", authHandler.ValidateToken).Methods("GET")

	// Generation routes (protected)
	protected.HandleFunc("/generate", generationHandler.Generate).Methods("POST")
	protected.HandleFunc("/usage", generationHandler.GetUsage).Methods("GET")

	// Billing routes (protected)
	protected.HandleFunc("/billing/checkout", billingHandler.CreateCheckoutSession).Methods("POST")

	// Story routes (protected)
	protected.HandleFunc("/stories", storyHandler.GetStories).Methods("GET")
	protected.HandleFunc("/stories", storyHandler.CreateStory).Methods("POST")
	protected.HandleFunc("/stories/{id}", storyHandler.GetStory).Methods("GET")
	protected.HandleFunc("/stories/{id}", storyHandler.DeleteStory).Methods("DELETE")
	protected.HandleFunc("/stories/{id}/chapters", storyHandler.AddChapter).Methods("POST")
	protected.HandleFunc("/stories/{id}/chapters/{chapterId}", storyHandler.DeleteChapter).Methods("DELETE")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: container.Config.GetAllowedOrigins(),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"Stripe-Signature",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
