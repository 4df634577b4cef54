package server

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/zakolko/zakolko/internal/config"
	"github.com/zakolko/zakolko/internal/httputil"
	"github.com/zakolko/zakolko/internal/model"
)

// handleModelPackStatus reports the installed model pack, if any
func (s *Server) handleModelPackStatus(w http.ResponseWriter, r *http.Request) {
	settings, err := config.LoadSettings()
	if err != nil {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"installed": false,
			"error":     err.Error(),
		})
		return
	}

	if settings.ModelPath == "" {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"installed": false,
		})
		return
	}

	if _, err := os.Stat(settings.ModelPath); err != nil {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"installed": false,
			"error":     "model path no longer exists",
		})
		return
	}

	status := map[string]interface{}{
		"installed": true,
		"path":      settings.ModelPath,
		"model":     s.predictor.GetConfig(),
	}
	if manifest, err := model.ReadManifest(filepath.Dir(settings.ModelPath)); err == nil {
		status["format"] = manifest.Format
		status["version"] = manifest.Version
		status["description"] = manifest.Description
	} else {
		status["error"] = err.Error()
	}
	httputil.RespondJSON(w, http.StatusOK, status)
}

// handleModelPackInstall extracts a model pack zip, loads its model and
// saves it as the model to use on the next start
func (s *Server) handleModelPackInstall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		httputil.RespondError(w, http.StatusBadRequest, "path is required")
		return
	}

	if _, err := os.Stat(req.Path); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("file not found: %s", req.Path))
		return
	}
	if !strings.HasSuffix(strings.ToLower(req.Path), ".zip") {
		httputil.RespondError(w, http.StatusBadRequest, "file must be a .zip archive")
		return
	}

	settings, err := config.LoadSettings()
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("could not load settings: %v", err))
		return
	}

	storeDir, err := config.DataStoreDir()
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("could not determine data directory: %v", err))
		return
	}
	extractDir := filepath.Join(storeDir, "modelpacks")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("could not create directory: %v", err))
		return
	}

	packDir, err := extractModelPack(req.Path, extractDir)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("invalid model pack: %v", err))
		return
	}

	manifest, err := model.ReadManifest(packDir)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("invalid model pack: %v", err))
		return
	}

	// Load before persisting so a broken pack never becomes the saved choice
	modelPath := filepath.Join(packDir, model.ModelFileName)
	modelID, err := s.predictor.LoadFrom(modelPath)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("invalid model pack: %v", err))
		return
	}

	settings.ModelPath = modelPath
	if err := config.SaveSettings(settings); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("could not save settings: %v", err))
		return
	}

	log.Printf("Model pack %s installed: %s", manifest.Version, packDir)
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"installed": true,
		"path":      modelPath,
		"version":   manifest.Version,
		"model_id":  modelID,
		"message":   "Model pack installed successfully.",
	})
}

// extractModelPack unzips a model pack into targetDir and returns the pack
// directory. Every entry must sit under a single root directory; nothing on
// disk changes unless all entries do.
func extractModelPack(zipPath, targetDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("could not open zip: %w", err)
	}
	defer r.Close()

	target := filepath.Clean(targetDir)
	var rootDir string
	for _, f := range r.File {
		root, _, found := strings.Cut(f.Name, "/")
		if !found || root == "" || root == "." || root == ".." {
			return "", fmt.Errorf("illegal file path in zip: %s", f.Name)
		}
		if rootDir == "" {
			rootDir = root
		} else if root != rootDir {
			return "", fmt.Errorf("zip archive has more than one root directory")
		}

		destPath := filepath.Join(target, f.Name)
		packDir := filepath.Join(target, rootDir)
		if destPath != packDir && !strings.HasPrefix(destPath, packDir+string(os.PathSeparator)) {
			return "", fmt.Errorf("illegal file path in zip: %s", f.Name)
		}
	}
	if rootDir == "" {
		return "", fmt.Errorf("zip archive is empty")
	}

	packDir := filepath.Join(target, rootDir)

	// Replace an earlier extraction of the same pack
	if err := os.RemoveAll(packDir); err != nil {
		return "", fmt.Errorf("could not remove previous pack: %w", err)
	}

	for _, f := range r.File {
		destPath := filepath.Join(target, f.Name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return "", fmt.Errorf("could not create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return "", fmt.Errorf("could not create directory: %w", err)
		}
		if err := extractFile(f, destPath); err != nil {
			return "", err
		}
	}

	return packDir, nil
}

func extractFile(f *zip.File, destPath string) error {
	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer outFile.Close()

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("could not open zip entry: %w", err)
	}
	defer rc.Close()

	if _, err := io.Copy(outFile, rc); err != nil {
		return fmt.Errorf("could not extract file: %w", err)
	}
	return nil
}
