package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"multidrop-route-service/internal/api/dto"
	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/logging"
	"multidrop-route-service/internal/platform/obs"
	"multidrop-route-service/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxRequestBytes = 1 << 20

// QuoteService is the behaviour the routing endpoints need from the
// quote facade.
type QuoteService interface {
	Quote(ctx context.Context, req services.QuoteRequest) (*domain.Quote, error)
	GetQuote(ctx context.Context, id string) (*domain.Quote, error)
}

type RoutingHandler struct {
	Quotes   QuoteService
	MaxDrops int
	Vehicles []domain.VehicleType
}

// Optimize orders, prices and summarizes a multi-drop request.
func (h *RoutingHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req dto.MultiDropRouteRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	svcReq, err := req.ToQuoteRequest()
	if err != nil {
		writeDomainError(w, r, "parse route request", err)
		return
	}

	q, err := h.Quotes.Quote(r.Context(), svcReq)
	if err != nil {
		writeDomainError(w, r, "quote route", err)
		return
	}

	elapsed := time.Since(start).Milliseconds()
	opt := q.Route.Optimization

	logging.FromContext(r.Context()).Info("route quoted",
		zap.String("req_id", obs.RequestID(r.Context())),
		zap.String("quote_id", q.ID),
		zap.Int("stops", q.Route.TotalStops),
		zap.Float64("distance_km", q.Route.TotalDistanceKm),
		zap.Int("efficiency", opt.EfficiencyScore),
		zap.Int64("total_pence", q.Totals.Total),
		zap.Int64("dur_ms", elapsed),
	)

	w.Header().Set("X-Processing-Time", strconv.FormatInt(elapsed, 10))
	w.Header().Set("X-Route-Efficiency", strconv.Itoa(opt.EfficiencyScore))

	res := dto.NewQuoteResponse(q, dto.MetadataResponse{
		CorrelationID:    obs.RequestID(r.Context()),
		ProcessingTimeMs: elapsed,
		Timestamp:        time.Now().UTC(),
		OptimizedFor:     string(svcReq.Options.OptimizeFor),
	})
	writeJSON(w, r, http.StatusOK, res)
}

// Capabilities documents what the routing endpoint accepts.
func (h *RoutingHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	vehicles := make([]string, 0, len(h.Vehicles))
	for _, v := range h.Vehicles {
		vehicles = append(vehicles, string(v))
	}

	writeJSON(w, r, http.StatusOK, dto.CapabilitiesResponse{
		Endpoint:    "/api/routing/multi-drop",
		Description: "Multi-drop route optimization with per-leg pricing and analytics",
		MaxStops:    h.MaxDrops,
		Algorithms: []string{
			string(domain.AlgorithmNearestNeighborTimeWindows),
			string(domain.AlgorithmDirect),
		},
		OptimizationFactors: []string{
			string(services.OptimizeDistance),
			string(services.OptimizeTime),
			string(services.OptimizeCost),
		},
		SupportedVehicles: vehicles,
		Analytics:         []string{"efficiency-scoring", "cost-breakdown", "logistics-insights", "vehicle-comparison"},
	})
}

// GetQuote returns a stored quote by id.
func (h *RoutingHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "quote id is required")
		return
	}

	q, err := h.Quotes.GetQuote(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "get quote", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewQuoteResponse(q, dto.MetadataResponse{
		CorrelationID: obs.RequestID(r.Context()),
		Timestamp:     time.Now().UTC(),
	}))
}
