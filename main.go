package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	webview "github.com/webview/webview_go"
	"github.com/zakolko/zakolko/internal/bridge"
	"github.com/zakolko/zakolko/internal/config"
	"github.com/zakolko/zakolko/internal/journal"
	"github.com/zakolko/zakolko/internal/model"
	"github.com/zakolko/zakolko/internal/server"
	"github.com/zakolko/zakolko/internal/submit"
)

var version = "dev"

func main() {
	// Parse command-line flags
	port := flag.Int("port", 8080, "HTTP server port")
	dataDir := flag.String("data-dir", "./data", "Directory for the prediction journal")
	modelPath := flag.String("model", "", "Path to the price model (XGBoost binary with manifest.json beside it)")
	headless := flag.Bool("headless", false, "Run in headless mode (no GUI window)")
	submitMode := flag.Bool("submit", false, "Submit name=value fields once and print the estimate")
	action := flag.String("action", "", "Predict URL used with -submit")
	locale := flag.String("locale", "en-US", "Locale used to format the estimate")
	contentType := flag.String("content-type", "text/plain", "Content-Type sent with submitted fields")
	importListings := flag.String("import-listings", "", "Import scraped listings (JSON Lines) into the journal and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Zakolko v%s\n", version)
		os.Exit(0)
	}

	if *importListings != "" {
		if err := runImport(*importListings, *dataDir); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		os.Exit(0)
	}

	submitCfg := config.DefaultSubmitConfig()
	submitCfg.Locale = *locale
	submitCfg.ContentType = *contentType

	// Saved settings fill in what the flags leave open
	settings, err := config.LoadSettings()
	if err != nil {
		log.Printf("Warning: could not load settings: %v", err)
	}

	if *submitMode {
		target := *action
		if target == "" {
			target = settings.PredictURL
		}
		if target == "" {
			target = fmt.Sprintf("http://localhost:%d%s", *port, server.PredictPath)
		}
		os.Exit(runSubmit(target, flag.Args(), submitCfg, os.Stdout))
	}

	resolvedModelPath := *modelPath
	if resolvedModelPath == "" && settings.ModelPath != "" {
		if _, err := os.Stat(settings.ModelPath); err == nil {
			resolvedModelPath = settings.ModelPath
			log.Printf("Using installed model: %s", settings.ModelPath)
		} else {
			log.Printf("Warning: saved model path no longer exists: %s", settings.ModelPath)
		}
	}
	if resolvedModelPath == "" {
		resolvedModelPath = filepath.Join("model", model.ModelFileName)
	}

	// Find an available port (try up to 10 ports starting from the requested one)
	availablePort, err := findAvailablePort(*port, 10)
	if err != nil {
		log.Fatalf("Failed to find available port: %v", err)
	}
	if availablePort != *port {
		log.Printf("Port %d in use, using port %d instead", *port, availablePort)
	}

	// Build configuration
	cfg := config.Config{
		Port:      availablePort,
		DataDir:   *dataDir,
		ModelPath: resolvedModelPath,
		Version:   version,
		Page:      config.DefaultPageConfig(),
		Submit:    submitCfg,
	}

	log.Printf("Zakolko v%s starting on port %d", version, cfg.Port)
	log.Printf("Model: %s", cfg.ModelPath)

	// Create and start the server
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for server to be ready
	serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(serverURL, 10*time.Second)

	if *headless {
		// Headless mode: wait for signal or error
		select {
		case err := <-errCh:
			if err != nil {
				log.Fatalf("Server error: %v", err)
			}
		case sig := <-stop:
			log.Printf("Received %v signal, shutting down...", sig)
			if err := srv.Stop(); err != nil {
				log.Printf("Error during shutdown: %v", err)
			}
		}
		return
	}

	// GUI mode: open embedded WebView window
	log.Printf("Opening application window...")
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("Zakolko")
	w.SetSize(1024, 800, webview.HintNone)

	// Submissions from the window run through the Go handler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := bridge.New(ctx, w, cfg.Page, cfg.Submit)
	if err := w.Bind("submitPrediction", b.Submit); err != nil {
		log.Printf("Warning: could not bind submission handler, the page will submit itself: %v", err)
	}
	w.Navigate(serverURL)

	// When the webview window closes, shut down the server
	go func() {
		select {
		case err := <-errCh:
			if err != nil {
				log.Printf("Server error: %v", err)
			}
		case sig := <-stop:
			log.Printf("Received %v signal, shutting down...", sig)
			w.Terminate()
		}
	}()

	// Run blocks until the window is closed
	w.Run()

	log.Printf("Window closed, shutting down server...")
	cancel()
	b.Wait()
	if err := srv.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// runImport loads a listings file into the journal under dataDir
func runImport(path, dataDir string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("could not create data directory: %w", err)
	}
	store, err := journal.Open(filepath.Join(dataDir, journal.FileName))
	if err != nil {
		return err
	}
	defer store.Close()

	inserted, skipped, err := store.ImportListings(f)
	if err != nil {
		return err
	}
	log.Printf("Imported %d listings from %s (%d already stored)", inserted, path, skipped)
	return nil
}

// runSubmit posts name=value pairs to action and prints the estimate to out
func runSubmit(action string, args []string, cfg config.SubmitConfig, out io.Writer) int {
	fields, err := parseFields(args)
	if err != nil {
		log.Printf("Error: %v", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	view := submit.NewConsoleView(out)
	h := submit.NewHandler(cfg, view, view)
	if _, err := h.Handle(ctx, submit.Form{Action: action, Fields: fields}); err != nil {
		return 1
	}
	return 0
}

// parseFields turns name=value arguments into form fields
func parseFields(args []string) (url.Values, error) {
	fields := url.Values{}
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("field %q is not in name=value form", arg)
		}
		fields.Add(name, value)
	}
	return fields, nil
}

// waitForServer polls until the server is accepting connections
func waitForServer(url string, timeout time.Duration) {
	addr := url[len("http://"):]
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	log.Printf("Warning: server may not be ready at %s", url)
}

// findAvailablePort finds an available port, starting from the given port.
// If the port is in use, it tries subsequent ports up to maxAttempts times.
func findAvailablePort(startPort int, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		addr := fmt.Sprintf(":%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found after %d attempts starting from %d", maxAttempts, startPort)
}
