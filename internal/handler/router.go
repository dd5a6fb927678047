package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"proposal-client/internal/config"
)

// NewRouter creates the view agent router
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware(container))

	// Health check endpoint (no session required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "proposal-agent"})
	}).Methods(http.MethodGet)

	authHandler := NewAuthHandler(container)
	workflowHandler := NewWorkflowHandler(container)

	router.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	router.HandleFunc("/reset-password", authHandler.ResetPassword).Methods(http.MethodPost)
	router.HandleFunc("/session", authHandler.Session).Methods(http.MethodGet)
	router.HandleFunc("/notifications", workflowHandler.Notifications).Methods(http.MethodGet)
	router.HandleFunc("/navigation", workflowHandler.Navigation).Methods(http.MethodGet)

	// Protected views
	protected := router.PathPrefix("").Subrouter()
	protected.Use(GuardMiddleware(container))

	protected.HandleFunc("/dashboard", workflowHandler.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/create", workflowHandler.State).Methods(http.MethodGet)
	protected.HandleFunc("/create/file", workflowHandler.SelectFile).Methods(http.MethodPost)
	protected.HandleFunc("/create/cancel", workflowHandler.Cancel).Methods(http.MethodPost)
	protected.HandleFunc("/preview", workflowHandler.State).Methods(http.MethodGet)
	protected.HandleFunc("/preview/confirm", workflowHandler.Confirm).Methods(http.MethodPost)
	protected.HandleFunc("/preview/cancel", workflowHandler.LeavePreview).Methods(http.MethodPost)
	protected.HandleFunc("/proposals", workflowHandler.ListProposals).Methods(http.MethodGet)
	protected.HandleFunc("/proposals/download/{filename}", workflowHandler.DownloadProposal).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: container.Config.GetAllowedOrigins(),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler(router)
}
