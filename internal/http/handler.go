package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/davidbz/llmcost/internal/domain"
	"github.com/davidbz/llmcost/internal/http/middleware"
	"github.com/davidbz/llmcost/internal/observability"
)

// PricingSourceHeader tells clients whether the estimate used live or bundled pricing.
const PricingSourceHeader = middleware.PricingSourceHeader

// Handler handles HTTP requests.
type Handler struct {
	estimator *domain.EstimatorService
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(estimator *domain.EstimatorService) *Handler {
	return &Handler{
		estimator: estimator,
	}
}

// PricingResponse is the body of GET /v1/pricing.
type PricingResponse struct {
	Source    domain.PricingSource `json:"source"`
	FetchedAt *time.Time           `json:"fetchedAt,omitempty"`
	Models    domain.PricingTable  `json:"models"`
}

// NewPricingResponse converts a pricing result into its wire shape.
func NewPricingResponse(result domain.PricingResult) PricingResponse {
	response := PricingResponse{
		Source: result.Source,
		Models: result.Table,
	}
	if !result.FetchedAt.IsZero() {
		fetchedAt := result.FetchedAt
		response.FetchedAt = &fetchedAt
	}
	return response
}

// HandleEstimate processes estimate requests.
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Early validation.
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.Model == "" {
		http.Error(w, "model is required", http.StatusBadRequest)
		return
	}

	ctx = observability.WithModel(ctx, req.Model)

	logger := observability.FromContext(ctx)
	logger.Info("estimate request received",
		observability.Int("input_length", len(req.Input)),
		observability.Int("output_length", len(req.Output)),
		observability.Bool("offline", req.Options.Offline),
		observability.Int("timeout_ms", req.Options.TimeoutMs), // 0 means the configured pricing timeout
	)

	estimate, err := h.estimator.Estimate(ctx, &req)
	if err != nil {
		var loadErr *domain.TokenizerLoadError
		if errors.As(err, &loadErr) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		logger.Error("estimate failed", observability.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set(PricingSourceHeader, string(estimate.PricingSource))
	writeJSON(w, r, estimate)
}

// HandlePricing returns the resolved pricing table.
func (h *Handler) HandlePricing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts, err := parseFetchOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.estimator.Pricing(r.Context(), opts)

	w.Header().Set(PricingSourceHeader, string(result.Source))
	writeJSON(w, r, NewPricingResponse(result))
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

func parseFetchOptions(r *http.Request) (domain.FetchOptions, error) {
	var opts domain.FetchOptions
	query := r.URL.Query()

	if raw := query.Get("offline"); raw != "" {
		offline, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid offline parameter: %w", err)
		}
		opts.Offline = offline
	}

	if raw := query.Get("timeoutMs"); raw != "" {
		timeoutMs, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid timeoutMs parameter: %w", err)
		}
		opts.TimeoutMs = timeoutMs
	}

	return opts, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.FromContext(r.Context()).Error("failed to encode response", observability.Error(err))
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}
