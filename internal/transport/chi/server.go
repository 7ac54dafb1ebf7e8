// Package chi exposes the HTTP API: search, postcode search, suggestions,
// transaction upload, index administration, and health.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/moorfield/propsearch/internal/domain"
	"github.com/moorfield/propsearch/internal/domain/sale"
	"github.com/moorfield/propsearch/internal/domain/search/request"
	logpkg "github.com/moorfield/propsearch/internal/logger"
	healthuc "github.com/moorfield/propsearch/internal/usecase/health"
	ingestuc "github.com/moorfield/propsearch/internal/usecase/ingest"
	searchuc "github.com/moorfield/propsearch/internal/usecase/search"
)

// Server hosts the HTTP handlers.
type Server struct {
	search *searchuc.Service
	ingest *ingestuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{search: search, ingest: ingest, health: health, logger: logger}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.handleSearch)
	r.Get("/search/postcode", s.handlePostcodeSearch)
	r.Get("/suggest", s.handleSuggest)
	r.Post("/transactions", s.handleUpload)
	r.Post("/admin/index/recreate", s.handleRecreateIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// handleSearch handles GET /search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	req := &request.Request{
		Text:    r.URL.Query().Get("text"),
		Filters: filtersFromQuery(r),
		Sort:    sortFromQuery(r),
		Page:    page,
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, responseToDTO(resp))
}

// handlePostcodeSearch handles GET /search/postcode.
func (s *Server) handlePostcodeSearch(w http.ResponseWriter, r *http.Request) {
	postcode := r.URL.Query().Get("postcode")
	if postcode == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "postcode is required")
		return
	}

	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	radius := 5
	if raw := r.URL.Query().Get("radius_km"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "radius_km must be a positive integer")
			return
		}
		radius = v
	}

	req := &request.PostcodeRequest{
		Postcode: postcode,
		RadiusKm: radius,
		Filters:  filtersFromQuery(r),
		Sort:     sortFromQuery(r),
		Page:     page,
	}

	resp, err := s.search.SearchByPostcode(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, responseToDTO(resp))
}

// handleSuggest handles GET /suggest.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.search.Suggest(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponseDTO{Suggestions: suggestions})
}

// handleUpload handles POST /transactions.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var dtos []transactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	txs := make([]sale.Transaction, 0, len(dtos))
	for i := range dtos {
		tx, err := dtos[i].toDomain()
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		txs = append(txs, tx)
	}

	ctx := logpkg.With(r.Context(), zap.Int("batch_size", len(txs)))
	if err := s.ingest.Upload(ctx, txs); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logpkg.FromContext(ctx).Info("transactions accepted")
	writeJSON(w, http.StatusAccepted, uploadResponseDTO{Accepted: len(txs)})
}

// handleRecreateIndex handles POST /admin/index/recreate.
func (s *Server) handleRecreateIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.ingest.RecreateIndex(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func filtersFromQuery(r *http.Request) request.Filters {
	q := r.URL.Query()
	return request.Filters{
		Town:     q.Get("town"),
		County:   q.Get("county"),
		Locality: q.Get("locality"),
		District: q.Get("district"),
	}
}

func sortFromQuery(r *http.Request) *request.Sort {
	column := r.URL.Query().Get("sort")
	if column == "" {
		return nil
	}
	direction := request.Ascending
	if r.URL.Query().Get("order") == "desc" {
		direction = request.Descending
	}
	return &request.Sort{Column: request.Column(column), Direction: direction}
}

func parsePage(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "page must be a non-negative integer")
		return 0, false
	}
	return page, true
}

// handleDomainError maps errors to HTTP responses. Integrity faults in the
// index surface as 500s; everything else from the backend is a bad gateway.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, domain.ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", domain.ErrBatchTooLarge.Error())
	case errors.Is(err, domain.ErrMalformedRecord), errors.Is(err, domain.ErrUnknownEnum):
		writeError(w, http.StatusInternalServerError, "data_integrity", "index contains an unreadable record")
	default:
		writeError(w, http.StatusBadGateway, "backend_error", "search backend unavailable")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponseDTO{Code: code, Message: message})
}
