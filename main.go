package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/vimlbackend/config"
	"github.com/camden-git/vimlbackend/correlation"
	"github.com/camden-git/vimlbackend/database"
	"github.com/camden-git/vimlbackend/handlers"
	"github.com/camden-git/vimlbackend/repository"
	"github.com/camden-git/vimlbackend/services"
	"github.com/camden-git/vimlbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	personRepo := repository.NewPersonRepository(db)
	identifierRepo := repository.NewIdentifierRepository(db)
	occurrenceRepo := repository.NewOccurrenceRepository(db)
	jobRepo := repository.NewJobRepository(db)

	matcher := correlation.CosineMatcher{Threshold: cfg.FaceMatchThreshold}
	correlator := correlation.NewCorrelator(personRepo, identifierRepo, occurrenceRepo, matcher)
	reviewService := services.NewReviewService(personRepo, identifierRepo, occurrenceRepo)

	log.Printf("Initializing correlation worker pool (Workers: %d, Queue Size: %d)...", cfg.NumJobWorkers, cfg.JobQueueSize)
	// detections arrive inline with job submissions; plug a detect.Provider
	// here when the recognition engines run inside this process
	jobProcessor := workers.NewJobProcessor(jobRepo, correlator, nil, cfg.JobQueueSize, cfg.NumJobWorkers)
	defer jobProcessor.Stop()

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Face match threshold: %.2f", cfg.FaceMatchThreshold)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	jobHandler := &handlers.JobHandler{Jobs: jobRepo, Processor: jobProcessor}
	reviewHandler := &handlers.ReviewHandler{DB: sqlDB, Service: reviewService}
	queryHandler := &handlers.QueryHandler{DB: sqlDB}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/process", jobHandler.SubmitJob)
		r.Post("/process/batch", jobHandler.SubmitJob)

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobHandler.ListJobs)
			r.Get("/{job_id}", jobHandler.GetJob)
		})

		r.Patch("/metadata/{occurrence_id}", reviewHandler.UpdateMetadata)
		r.Get("/review/queue", reviewHandler.GetReviewQueue)

		r.Get("/search", queryHandler.Search)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/stats", queryHandler.Stats)
			r.Get("/network", queryHandler.Network)
		})

		r.Get("/videos/{video_filename}/viml.vtt", queryHandler.IdentityTrack)
	})

	serverAddr := ":" + cfg.Port
	fmt.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
