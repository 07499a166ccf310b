package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"movieshows/api"
	"movieshows/config"
	"movieshows/handlers"
	"movieshows/models"
	"movieshows/services/catalog"
	"movieshows/services/persistence"
	"movieshows/services/playback"
	"movieshows/services/session"
	"movieshows/services/source"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {

	demoMode := flag.Bool("demo", false, "serve the built-in public domain catalog instead of configured sources")
	portOverride := flag.Int("port", 0, "override server port from config")
	sourceOverride := flag.String("source", "", "override the content source with a single file path or URL")
	flag.Parse()

	fmt.Println("🚀 MovieShows Backend Starting...")
	if *demoMode {
		fmt.Println("🧪 Demo mode enabled: serving the built-in public domain catalog.")
	}

	// Determine config path (env or default)
	configPath := os.Getenv("MOVIESHOWS_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			// Redirect standard log to both console and file
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	// Apply port override if specified
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	osFs := afero.NewOsFs()

	// Persisted per-user state (queue, favorites, history, settings, progress)
	store, err := persistence.NewStore(osFs, settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to open storage directory: %v", err)
	}

	// Session store, restored from disk, persisting every mutation
	sessions := session.NewStore()
	sessions.Dispatch(session.RestoreSnapshot{State: store.LoadState()})
	sessions.Subscribe(store.Observer())

	// Content source loader
	loader := source.NewLoader(osFs, settings.Sources.Candidates)
	if *sourceOverride != "" {
		loader.SetOverrideURL(*sourceOverride)
	}
	if *demoMode {
		loader.SetInline(demoCatalog())
	}

	cat := catalog.NewService()
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 60*time.Second)
	items, err := loader.Load(loadCtx)
	loadCancel()
	if err != nil {
		log.Printf("initial catalog load: %v", err)
	}
	cat.SetContent(items)
	if len(items) == 0 {
		log.Printf("no content sources yielded items; catalog starts empty")
	} else {
		log.Printf("catalog loaded with %d items", len(items))
	}

	// Playback machine with optional prequeue probing
	var prequeue *playback.Prequeue
	if settings.Prequeue.Enabled {
		prequeue = playback.NewPrequeue()
	}
	controller := playback.NewController(sessions, store, prequeue)

	// Handlers
	reload := func(r *http.Request) ([]models.ContentItem, error) {
		return loader.Load(r.Context())
	}
	catalogHandler := handlers.NewCatalogHandler(cat, sessions, reload)
	stateHandler := handlers.NewStateHandler(sessions)
	queueHandler := handlers.NewQueueHandler(cat, sessions)
	playbackHandler := handlers.NewPlaybackHandler(cat, controller)
	libraryHandler := handlers.NewLibraryHandler(sessions)
	settingsHandler := handlers.NewSettingsHandler(sessions)
	shareHandler := handlers.NewShareHandler(cat, sessions, controller)
	shareHandler.LoadSource = func(r *http.Request, url string) error {
		loader.SetOverrideURL(url)
		items, err := loader.Load(r.Context())
		if err != nil {
			return err
		}
		cat.SetContent(items)
		return nil
	}
	mediaHandler := handlers.NewMediaHandler(cat, osFs, settings.Media.Directory)

	r := mux.NewRouter()
	api.Register(r,
		catalogHandler,
		stateHandler,
		queueHandler,
		playbackHandler,
		libraryHandler,
		settingsHandler,
		shareHandler,
		mediaHandler,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for streaming
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// demoCatalog is a small public domain library used by -demo so the app is
// browsable without configuring a source. The payload is shaped exactly the
// way json.Unmarshal would produce it ([]any of map[string]any), since that
// is the only shape the normalizer walks.
func demoCatalog() any {
	return map[string]any{
		"movies": []any{
			map[string]any{
				"id":          "big-buck-bunny",
				"title":       "Big Buck Bunny",
				"year":        2008,
				"videoUrl":    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
				"thumbnail":   "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/images/BigBuckBunny.jpg",
				"description": "A giant rabbit takes gentle revenge on three bullying rodents.",
			},
			map[string]any{
				"id":          "elephants-dream",
				"title":       "Elephants Dream",
				"year":        2006,
				"videoUrl":    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
				"thumbnail":   "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/images/ElephantsDream.jpg",
				"description": "Two strange characters explore a surreal mechanical world.",
			},
			map[string]any{
				"id":          "sintel",
				"title":       "Sintel",
				"year":        2010,
				"videoUrl":    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/Sintel.mp4",
				"thumbnail":   "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/images/Sintel.jpg",
				"description": "A lonely girl crosses a harsh land searching for a dragon she once rescued.",
			},
			map[string]any{
				"id":          "tears-of-steel",
				"title":       "Tears of Steel",
				"year":        2012,
				"videoUrl":    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/TearsOfSteel.mp4",
				"thumbnail":   "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/images/TearsOfSteel.jpg",
				"description": "Soldiers in a ruined Amsterdam fight to undo a robot uprising.",
			},
		},
		"tv": []any{
			map[string]any{
				"id":          "caminandes-llamigos",
				"title":       "Caminandes: Llamigos",
				"year":        2016,
				"videoUrl":    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/Llamigos.mp4",
				"description": "Koro the llama braves the snow for one delicious berry.",
			},
			map[string]any{
				"id":          "for-bigger-blazes",
				"title":       "For Bigger Blazes",
				"year":        2014,
				"videoUrl":    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
				"description": "Short demo reel of large scale fire effects.",
			},
		},
	}
}
