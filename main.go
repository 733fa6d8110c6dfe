package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"examprep/catalog"
	"examprep/config"
	"examprep/db"
	"examprep/exam"
	"examprep/handlers"
	"examprep/middleware"
)

// newSource picks the exam catalog source. The returned pool is nil unless
// the source is Postgres.
func newSource(ctx context.Context, cfg *config.Config) (catalog.Source, *pgxpool.Pool, error) {
	switch cfg.Exams.Source {
	case config.SourceFile:
		return catalog.FileSource{Path: cfg.Exams.Path}, nil, nil
	case config.SourceHTTP:
		return catalog.HTTPSource{URL: cfg.Exams.URL, Client: &http.Client{Timeout: cfg.LoadTimeout}}, nil, nil
	case config.SourcePostgres:
		pool, err := db.InitDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db.NewStore(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown exam source %q", cfg.Exams.Source)
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, pool, err := newSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to set up exam source: %v", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	// A failed load is not fatal: the shell shows the error with a retry form.
	cat := catalog.NewCatalog(src)
	loadCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
	_ = cat.Load(loadCtx)
	cancel()

	reg := exam.NewRegistry(cat)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.HTMLRender = handlers.NewRenderer()
	router.Static("/static", cfg.StaticDir)

	handlers.RegisterRoutes(router, handlers.Deps{
		Catalog:  cat,
		Registry: reg,
		Session: handlers.SessionSettings{
			SigningKey: cfg.Session.SigningKey,
			Issuer:     cfg.Session.Issuer,
			TTL:        cfg.Session.TTL,
		},
		LoadTimeout: cfg.LoadTimeout,
		Title:       "Exam Practice",
	})

	// Drop sessions abandoned by their browser
	go func() {
		ticker := time.NewTicker(cfg.Session.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := reg.Sweep(cfg.Session.IdleTimeout); n > 0 {
					log.Printf("Dropped %d idle sessions, %d active", n, reg.Len())
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Exam practice server starting on %s (exams from %s)", cfg.ServerPort, cfg.Exams.Source)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server startup error: %v", err)
	}
	log.Println("Server exited gracefully.")
}
