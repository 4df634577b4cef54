package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/zakolko/zakolko/internal/config"
	"github.com/zakolko/zakolko/internal/httputil"
	"github.com/zakolko/zakolko/internal/journal"
	"github.com/zakolko/zakolko/internal/model"
	"github.com/zakolko/zakolko/internal/models"
)

const maxPredictBody = 1 << 20

// Handler provides HTTP API endpoints
type Handler struct {
	predictor *model.Predictor
	journal   *journal.Store
	cfg       config.Config
}

// NewHandler creates a new API handler. The journal may be nil.
func NewHandler(predictor *model.Predictor, store *journal.Store, cfg config.Config) *Handler {
	return &Handler{
		predictor: predictor,
		journal:   store,
		cfg:       cfg,
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Health and info
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")
	r.HandleFunc("/status", h.handleStatus).Methods("GET")

	// Predictions are posted from pages served elsewhere too
	r.Handle("/predict", httputil.CORS(http.HandlerFunc(h.handlePredict))).Methods("POST", "OPTIONS")
	r.HandleFunc("/predictions", h.handleListPredictions).Methods("GET")
	r.HandleFunc("/listings", h.handleListListings).Methods("GET")

	// Model management
	r.HandleFunc("/update-model", h.handleUpdateModel).Methods("GET", "POST")
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus is the liveness answer the page backend has always given
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, models.StatusResponse{MyApp: "I am OK!"})
}

// handleInfo returns server information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version":        h.cfg.Version,
		"model":          h.predictor.GetConfig(),
		"journal_loaded": h.journal != nil,
	}
	if h.journal != nil {
		if n, err := h.journal.Count(); err == nil {
			info["predictions"] = n
		} else {
			log.Printf("Warning: could not count predictions: %v", err)
		}
		if n, err := h.journal.CountListings(); err == nil {
			info["listings"] = n
		} else {
			log.Printf("Warning: could not count listings: %v", err)
		}
	}
	httputil.RespondJSON(w, http.StatusOK, info)
}

// handlePredict scores the posted form fields. The body is JSON whatever
// Content-Type says; the page sends text/plain.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPredictBody))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	features, err := decodeFeatures(data)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Printf("Predict request: %v", features)

	prediction, modelID, err := h.predictor.Predict(features)
	if err != nil {
		var inputErr *model.InputError
		switch {
		case errors.Is(err, model.ErrNotLoaded):
			httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
		case errors.As(err, &inputErr):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("Error predicting with model %s: %v", modelID, err)
			httputil.RespondError(w, http.StatusInternalServerError, "prediction failed")
		}
		return
	}

	if h.journal != nil {
		if _, err := h.journal.Record(modelID, features, prediction); err != nil {
			log.Printf("Warning: could not journal prediction: %v", err)
		}
	}

	httputil.RespondJSON(w, http.StatusOK, models.PredictionResponse{Prediction: float64(prediction)})
}

// handleListPredictions returns the latest journaled predictions
func (h *Handler) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		httputil.RespondJSON(w, http.StatusOK, []models.PredictionRecord{})
		return
	}

	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	records, err := h.journal.Recent(limit)
	if err != nil {
		log.Printf("Error reading journal: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "could not read predictions")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, records)
}

// handleListListings returns the latest stored listings
func (h *Handler) handleListListings(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		httputil.RespondJSON(w, http.StatusOK, []models.Listing{})
		return
	}

	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	listings, err := h.journal.Listings(limit)
	if err != nil {
		log.Printf("Error reading listings: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "could not read listings")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, listings)
}

// queryLimit parses the optional limit parameter, answering 400 when it is invalid
func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		httputil.RespondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// handleUpdateModel reloads the model file
func (h *Handler) handleUpdateModel(w http.ResponseWriter, r *http.Request) {
	id, err := h.predictor.Reload()
	if err != nil {
		log.Printf("Error reloading model: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.UpdateModelResponse{Status: "update complete!", ModelID: id})
}

// decodeFeatures reads a flat JSON object. Non-string values are converted
// to their text form so API clients may send numbers.
func decodeFeatures(data []byte) (models.FormPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object: %v", err)
	}

	features := make(models.FormPayload, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			features[k] = ""
		case string:
			features[k] = val
		case json.Number:
			features[k] = val.String()
		case bool:
			features[k] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("field %q must be a scalar", k)
		}
	}
	return features, nil
}
