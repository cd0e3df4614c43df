package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/Market-intel-core-v1/server/internal/ambassador"
	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type AnalysisService interface {
	AnalyzeProduct(ctx context.Context, req model.AnalysisRequest) (*model.DemandResult, error)
	Snapshot(ctx context.Context, productID string) (*model.DemandRecord, error)
	History(ctx context.Context, productID string) ([]model.Analysis, error)
}

type ContentScorer interface {
	ScoreContent(ctx context.Context, text string) (*model.RiskAssessment, error)
}

type AmbassadorFinder interface {
	FindAmbassadors(ctx context.Context, query string, targets []string) ([]model.AmbassadorMatch, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type Handler struct {
	analysis    AnalysisService
	moderation  ContentScorer
	ambassadors AmbassadorFinder
	ping        Pinger
	maxBody     int64
}

func NewHandler(analysis AnalysisService, moderation ContentScorer, ambassadors AmbassadorFinder, ping Pinger, cfg HTTPConfig) *Handler {
	return &Handler{
		analysis:    analysis,
		moderation:  moderation,
		ambassadors: ambassadors,
		ping:        ping,
		maxBody:     cfg.MaxBodyBytes,
	}
}

type analyzeRequest struct {
	Name     string          `json:"name" validate:"max=200"`
	Category string          `json:"category" validate:"max=100"`
	Price    decimal.Decimal `json:"price"`
	// Image is the product photo, base64 encoded.
	Image string `json:"image" validate:"omitempty,base64"`
}

func (h *Handler) AnalyzeProduct(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondError(w, r, err)
		return
	}

	var image []byte
	if req.Image != "" {
		var err error
		if image, err = base64.StdEncoding.DecodeString(req.Image); err != nil {
			respondError(w, r, errx.InvalidInput("image is not valid base64"))
			return
		}
	}

	result, err := h.analysis.AnalyzeProduct(r.Context(), model.AnalysisRequest{
		ProductID: chi.URLParam(r, "productID"),
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Image:     image,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, result)
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := h.analysis.Snapshot(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, rec)
}

func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	list, err := h.analysis.History(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, list)
}

type scoreRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

func (h *Handler) ScoreContent(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondError(w, r, err)
		return
	}

	assessment, err := h.moderation.ScoreContent(r.Context(), req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, assessment)
}

func (h *Handler) FindAmbassadors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	targets := ambassador.DefaultTargets
	if q.Has("targets") {
		targets = parseCommaSeparated(q.Get("targets"))
	}

	matches, err := h.ambassadors.FindAmbassadors(r.Context(), q.Get("query"), targets)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, matches)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			logx.Error().Err(err).Msg("health check failed")
			respondJSON(w, http.StatusServiceUnavailable, &APIResponse{
				Status: statusError,
				Error:  &APIError{Code: string(errx.KindUnavailable), Message: "redis unavailable"},
			})
			return
		}
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseCommaSeparated(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
