// Package httpapi exposes the search engine over HTTP: company search,
// per-company shipment drill-down, health, and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lanesight/lanesight/internal/domain"
	"github.com/lanesight/lanesight/internal/logger"
	"github.com/lanesight/lanesight/internal/normalize"
	"github.com/lanesight/lanesight/internal/usecase/shipments"
)

// CompanySearcher runs canonical company searches.
type CompanySearcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error)
}

// ShipmentLister serves the per-company drill-down.
type ShipmentLister interface {
	List(ctx context.Context, req shipments.Request) ([]domain.ShipmentRecord, error)
}

// Pinger checks warehouse connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	search    CompanySearcher
	shipments ShipmentLister
	pinger    Pinger
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search CompanySearcher, lister ShipmentLister, pinger Pinger, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{search: search, shipments: lister, pinger: pinger, logger: log}
}

// Routes mounts the API on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/companies/search", s.handleSearchCompanies)
	r.Get("/v1/companies/{company_id}/shipments", s.handleCompanyShipments)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// handleSearchCompanies accepts any of the supported request shapes and
// responds with one page of company summaries plus the overall total.
func (s *Server) handleSearchCompanies(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	q, err := normalize.Normalize(payload)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromDomain(res))
}

// handleCompanyShipments serves the paginated drill-down for one company.
func (s *Server) handleCompanyShipments(w http.ResponseWriter, r *http.Request) {
	req, err := shipmentRequestFromQuery(chi.URLParam(r, "company_id"), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	recs, err := s.shipments.List(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, shipmentsResponseFromDomain(recs))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDomainError maps engine errors onto HTTP outcomes: local-input
// problems are 4xx, warehouse failures are 5xx with the cause logged and
// never echoed to the caller.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid request", fieldErrorsToWire(verr.Fields))
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error(), nil)
	case errors.Is(err, domain.ErrQueryFailed):
		logger.FromContext(r.Context()).Error("warehouse query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query_failed", "search backend unavailable", nil)
	default:
		s.logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

// decodePayload tolerates an empty body: it normalizes like {}.
func decodePayload(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, fields []fieldErrorDTO) {
	writeJSON(w, status, errorResponse{Code: code, Message: message, FieldErrors: fields})
}
