package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/bookprep/backend/internal/auth"
	"github.com/bookprep/backend/internal/catalog"
	"github.com/bookprep/backend/internal/database"
	"github.com/bookprep/backend/internal/extraction"
	"github.com/bookprep/backend/internal/lessons"
	"github.com/bookprep/backend/internal/middleware"
	"github.com/bookprep/backend/internal/mirror"
	"github.com/bookprep/backend/internal/mongodb"
	"github.com/bookprep/backend/internal/provider"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize document store
	mdb, err := mongodb.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to mongodb: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mdb.Client().Disconnect(ctx)
	}()

	// Initialize services and handlers
	client := provider.NewAnthropicClient("")

	extractionStore := extraction.NewStore(db)
	extractionService := extraction.NewService(extractionStore, client)
	extractionHandler := extraction.NewHandler(extractionService)

	lessonStore := lessons.NewStore(db)
	lessonService := lessons.NewService(lessonStore, extractionStore)
	lessonHandler := lessons.NewHandler(lessonService)

	catalogHandler := catalog.NewHandler(catalog.NewStore(db))
	authHandler := auth.NewHandler(db)

	syncService := mirror.NewService(db, mdb)
	syncHandler := mirror.NewHandler(syncService)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := syncService.EnsureIndexes(ctx); err != nil {
			log.Printf("WARN: [sync] could not ensure indexes: %v", err)
		}
		cancel()
	}

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/books", catalogHandler.CreateBook).Methods("POST")
	protected.HandleFunc("/books", catalogHandler.ListBooks).Methods("GET")
	protected.HandleFunc("/books/{id}", catalogHandler.GetBook).Methods("GET")
	protected.HandleFunc("/chapters", catalogHandler.CreateChapter).Methods("POST")
	protected.HandleFunc("/chapters", catalogHandler.ListChapters).Methods("GET")
	protected.HandleFunc("/scan-items", catalogHandler.CreateScanItem).Methods("POST")
	protected.HandleFunc("/scan-items", catalogHandler.ListScanItems).Methods("GET")

	protected.HandleFunc("/extractions/questions", extractionHandler.ExtractQuestions).Methods("POST")
	protected.HandleFunc("/extractions/questions", extractionHandler.ListQuestionSets).Methods("GET")
	protected.HandleFunc("/extractions/questions/{id}", extractionHandler.GetQuestionSet).Methods("GET")
	protected.HandleFunc("/extractions/solutions", extractionHandler.ExtractSolutions).Methods("POST")
	protected.HandleFunc("/extractions/solutions", extractionHandler.ListSolutionSets).Methods("GET")
	protected.HandleFunc("/extractions/solutions/{id}", extractionHandler.GetSolutionSet).Methods("GET")

	protected.HandleFunc("/lessons", lessonHandler.PrepareLesson).Methods("POST")
	protected.HandleFunc("/lessons", lessonHandler.ListLessons).Methods("GET")
	protected.HandleFunc("/lessons/{id}", lessonHandler.GetLesson).Methods("GET")

	protected.HandleFunc("/sync/run", syncHandler.RunSync).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
