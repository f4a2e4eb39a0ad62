package dating

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matchengine/internal/auth"
)

// RegisterRoutes mounts the matching API. limiter throttles the compute
// endpoints per user and may be nil.
func RegisterRoutes(router *mux.Router, handler *Handler, hub *Hub, authMiddleware *auth.Middleware, limiter auth.Limiter) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)
	compute := auth.RateLimit(limiter, "compute")

	// Discovery
	api.HandleFunc("/discover", handler.DiscoverMatches).Methods("GET")
	api.HandleFunc("/location-matches", handler.LocationMatches).Methods("GET")
	api.HandleFunc("/swipes/incoming", handler.IncomingSwipes).Methods("GET")

	// Compatibility records
	api.Handle("/compatibility/batch", compute(http.HandlerFunc(handler.BatchCompatibility))).Methods("POST")
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")
	api.HandleFunc("/compatibility/{userId}/status", handler.UpdateRelationshipStatus).Methods("PUT")
	api.HandleFunc("/recommendations", handler.GetRecommendations).Methods("GET")

	// Profile change signal
	api.Handle("/profile/changed", compute(http.HandlerFunc(handler.ProfileChanged))).Methods("POST")

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware.RequireAdmin)
	admin.HandleFunc("/recompute", handler.StartRecompute).Methods("POST")
	admin.HandleFunc("/recompute/last", handler.LastRecompute).Methods("GET")
	admin.HandleFunc("/stats", handler.GetStats).Methods("GET")

	if hub != nil {
		api.HandleFunc("/ws", hub.ServeWS)
	}
}
