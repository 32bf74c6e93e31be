package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"chargedash/internal/http/handlers"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Auth    *handlers.AuthHandlers
	Records *handlers.RecordsHandlers
	Health  http.HandlerFunc
}

// NewRouter wires HTTP routes. Protected routes pass the session guard.
func NewRouter(deps RouterDeps, guard func(http.Handler) http.Handler, corsOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", deps.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", deps.Auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", deps.Auth.Logout).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(guard)
	protected.HandleFunc("/auth/me", deps.Auth.Me).Methods(http.MethodGet)
	protected.HandleFunc("/records", deps.Records.View).Methods(http.MethodGet)
	protected.HandleFunc("/records/refresh", deps.Records.Refresh).Methods(http.MethodPost)
	protected.HandleFunc("/records/print", deps.Records.Print).Methods(http.MethodPost)
	protected.HandleFunc("/records/detail/close", deps.Records.CloseDetail).Methods(http.MethodPost)
	protected.HandleFunc("/records/{id:[0-9]+}", deps.Records.Detail).Methods(http.MethodGet)
	protected.HandleFunc("/records/{id:[0-9]+}/print", deps.Records.Printable).Methods(http.MethodGet)
	protected.HandleFunc("/records/{id:[0-9]+}/invoice.pdf", deps.Records.InvoicePDF).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}
