package api

import (
	"net/http"
	"net/http/pprof"

	"movieshows/handlers"

	"github.com/gorilla/mux"
)

// localhostOnlyMiddleware restricts access to localhost requests only
func localhostOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		// Strip port if present
		for i := len(host) - 1; i >= 0; i-- {
			if host[i] == ':' {
				host = host[:i]
				break
			}
		}
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			http.Error(w, "Debug endpoints only accessible from localhost", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	catalogHandler *handlers.CatalogHandler,
	stateHandler *handlers.StateHandler,
	queueHandler *handlers.QueueHandler,
	playbackHandler *handlers.PlaybackHandler,
	libraryHandler *handlers.LibraryHandler,
	settingsHandler *handlers.SettingsHandler,
	shareHandler *handlers.ShareHandler,
	mediaHandler *handlers.MediaHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Catalog
	api.HandleFunc("/catalog", catalogHandler.GetCatalog).Methods(http.MethodGet)
	api.HandleFunc("/catalog", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/catalog/reload", catalogHandler.ReloadCatalog).Methods(http.MethodPost)
	api.HandleFunc("/catalog/reload", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/catalog/{id}", catalogHandler.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/catalog/{id}", handleOptions).Methods(http.MethodOptions)

	// Session state
	api.HandleFunc("/state", stateHandler.GetState).Methods(http.MethodGet)
	api.HandleFunc("/state", handleOptions).Methods(http.MethodOptions)

	// Queue
	api.HandleFunc("/queue", queueHandler.AddToQueue).Methods(http.MethodPost)
	api.HandleFunc("/queue", queueHandler.ClearQueue).Methods(http.MethodDelete)
	api.HandleFunc("/queue", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/queue/reorder", queueHandler.ReorderQueue).Methods(http.MethodPost)
	api.HandleFunc("/queue/reorder", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/queue/shuffle", queueHandler.ShuffleQueue).Methods(http.MethodPost)
	api.HandleFunc("/queue/shuffle", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/queue/export", queueHandler.ExportQueue).Methods(http.MethodGet)
	api.HandleFunc("/queue/export", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/queue/import", queueHandler.ImportQueue).Methods(http.MethodPost)
	api.HandleFunc("/queue/import", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/queue/{index}", queueHandler.RemoveFromQueue).Methods(http.MethodDelete)
	api.HandleFunc("/queue/{index}", handleOptions).Methods(http.MethodOptions)

	// Playback state machine
	api.HandleFunc("/playback/play", playbackHandler.Play).Methods(http.MethodPost)
	api.HandleFunc("/playback/play", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/playback/events", playbackHandler.Events).Methods(http.MethodPost)
	api.HandleFunc("/playback/events", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/playback/retry", playbackHandler.Retry).Methods(http.MethodPost)
	api.HandleFunc("/playback/retry", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/playback/skip", playbackHandler.Skip).Methods(http.MethodPost)
	api.HandleFunc("/playback/skip", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/playback/next", playbackHandler.Next).Methods(http.MethodPost)
	api.HandleFunc("/playback/next", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/playback/status", playbackHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/playback/status", handleOptions).Methods(http.MethodOptions)

	// Collections
	api.HandleFunc("/favorites/{id}", libraryHandler.ToggleFavorite).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{id}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/liked/{id}", libraryHandler.ToggleLiked).Methods(http.MethodPost)
	api.HandleFunc("/liked/{id}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/history", libraryHandler.History).Methods(http.MethodGet)
	api.HandleFunc("/history", handleOptions).Methods(http.MethodOptions)

	// Settings
	api.HandleFunc("/settings", settingsHandler.UpdateSettings).Methods(http.MethodPost)
	api.HandleFunc("/settings", handleOptions).Methods(http.MethodOptions)

	// Share links
	api.HandleFunc("/share", shareHandler.GetShare).Methods(http.MethodGet)
	api.HandleFunc("/share", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/resume", shareHandler.Resume).Methods(http.MethodGet)
	api.HandleFunc("/resume", handleOptions).Methods(http.MethodOptions)

	// Media files live outside /api so plain <video src> elements work.
	r.HandleFunc("/media/{id}", mediaHandler.ServeMedia).Methods(http.MethodGet, http.MethodHead)

	// Debug endpoints, localhost only
	debug := r.PathPrefix("/debug/pprof").Subrouter()
	debug.Use(localhostOnlyMiddleware)
	debug.HandleFunc("", pprof.Index)
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)
	debug.PathPrefix("/").Handler(http.StripPrefix("/debug/pprof/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pprof.Handler(r.URL.Path).ServeHTTP(w, r)
	})))
}
