package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MixFM/config"
	"MixFM/core/auth"
	"MixFM/db"
	"MixFM/events"
	"MixFM/logger"
	"MixFM/model"
	"MixFM/repository"
	"MixFM/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	auth.SetSecret(cfg.JWTSecret)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	// The comment subsystem runs on GORM over the same MySQL instance.
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.Comment{}, &model.UserComment{}, &model.PlaylistComment{}); err != nil {
		logger.Fatal("Failed to migrate comment models", logger.ErrorField(err))
	}

	// Redis is optional; without it playlist pages are built from MySQL
	// on every request.
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, playlist caching disabled", logger.ErrorField(err))
		db.RedisClient = nil
	} else {
		defer db.CloseRedis()
		logger.Info("Successfully connected to Redis")
	}

	blobs, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage", logger.ErrorField(err))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("Kafka event publishing enabled", logger.String("topic", cfg.KafkaTopic))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	songRepo := repository.NewMySQLSongRepository(db.DB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)
	commentRepo := repository.NewGormCommentRepository(db.GormDB)

	userPlaylists := repository.NewUserPlaylistRepository(db.DB)
	userSongs := repository.NewUserSongRepository(db.DB)
	playlistSongs := repository.NewPlaylistSongRepository(db.DB)
	userComments := repository.NewGormUserCommentRepository(db.GormDB)
	playlistComments := repository.NewGormPlaylistCommentRepository(db.GormDB)

	apiHandler := NewAPIHandler(
		userRepo, songRepo, playlistRepo, commentRepo,
		userPlaylists, userSongs, playlistSongs, userComments, playlistComments,
		blobs, publisher,
	)

	server.Handler = NewRouter(apiHandler)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

// NewRouter builds the route table. Split out from Start so tests can
// run the full routing stack against fake stores.
func NewRouter(apiHandler *APIHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(corsMiddleware)

	// User authentication
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", apiHandler.AuthMiddleware(apiHandler.LogoutHandler)).Methods(http.MethodPost)

	// Songs
	router.HandleFunc("/api/songs", apiHandler.GetSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}", apiHandler.OptionalAuthMiddleware(apiHandler.GetSongHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteSongHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/songs/{id}/audio", apiHandler.ServeAudioHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/upload", apiHandler.AuthMiddleware(apiHandler.UploadSongHandler)).Methods(http.MethodPost)

	// Playlists
	router.HandleFunc("/api/playlists", apiHandler.GetPlaylistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/mine", apiHandler.AuthMiddleware(apiHandler.GetMyPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", apiHandler.OptionalAuthMiddleware(apiHandler.GetPlaylistHandler)).Methods(http.MethodGet)

	// Comments
	router.HandleFunc("/api/playlists/{id}/comments", apiHandler.AuthMiddleware(apiHandler.PostCommentHandler)).Methods(http.MethodPost)

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
