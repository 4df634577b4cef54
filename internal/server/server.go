package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/zakolko/zakolko/internal/api"
	"github.com/zakolko/zakolko/internal/config"
	"github.com/zakolko/zakolko/internal/journal"
	"github.com/zakolko/zakolko/internal/model"
	"github.com/zakolko/zakolko/internal/page"
)

//go:embed static/*
var staticFS embed.FS

// PredictPath is where the form page posts its fields
const PredictPath = "/api/predict"

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	predictor  *model.Predictor
	journal    *journal.Store
	page       *page.Renderer
}

// New creates a new Server with all components initialized
func New(cfg config.Config) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
	}

	// Model is optional at startup; /api/update-model or a model pack can load it later
	s.predictor = model.NewPredictor(cfg.ModelPath)

	// Initialize journal
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Printf("Warning: could not create data directory: %v", err)
	}
	store, err := journal.Open(filepath.Join(cfg.DataDir, journal.FileName))
	if err != nil {
		log.Printf("Warning: journal not available: %v", err)
	} else {
		s.journal = store
	}

	renderer, err := page.NewRenderer(cfg.Page, PredictPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create page renderer: %w", err)
	}
	s.page = renderer

	// Set up routes
	s.setupRoutes()

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Model pack management routes
	s.router.HandleFunc("/api/modelpack/status", s.handleModelPackStatus).Methods("GET")
	s.router.HandleFunc("/api/modelpack/install", s.handleModelPackInstall).Methods("POST")

	// API routes
	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiHandler := api.NewHandler(s.predictor, s.journal, s.cfg)
	apiHandler.RegisterRoutes(apiRouter)

	// Static assets (embedded)
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Printf("Warning: Could not load embedded static files: %v", err)
	} else {
		s.router.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	}

	// Form page
	s.router.Handle("/", s.page).Methods("GET")
	s.router.Handle("/index.html", s.page).Methods("GET")
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server listening on http://localhost:%d", s.cfg.Port)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// Close stores
	if s.journal != nil {
		if cerr := s.journal.Close(); cerr != nil {
			log.Printf("Error closing journal: %v", cerr)
		}
	}

	return err
}
