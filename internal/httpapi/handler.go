// Package httpapi serves photo analysis over HTTP for clients other than
// the Telegram bot.
package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blackjack-helper/internal/analysis"
	"blackjack-helper/internal/vision"
)

const (
	ServiceName    = "BlackJack Helper API"
	ServiceVersion = "1.0.0"
	APIKeyHeader   = "X-OpenAI-Key"
)

// Analyzer turns a photo into evaluated hands.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

type Handler struct {
	analyzer Analyzer
	logger   *slog.Logger
	maxBody  int64
	timeout  time.Duration
}

func New(analyzer Analyzer, logger *slog.Logger, maxImageBytes int, timeout time.Duration) *Handler {
	// base64 раздувает картинку на треть, плюс JSON обёртка
	return &Handler{
		analyzer: analyzer,
		logger:   logger,
		maxBody:  int64(maxImageBytes)*4/3 + 1024,
		timeout:  timeout,
	}
}

// Register mounts the analysis endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleRoot)
	r.Get("/health", h.HandleHealth)
	r.Post("/api/analyze-frame", h.HandleAnalyzeFrame)
}

// NewRouter builds the full HTTP surface including /metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	h.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    ServiceName,
		"version": ServiceVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"analyze_frame": "/api/analyze-frame",
		},
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleAnalyzeFrame handles POST /api/analyze-frame. Analysis failures
// are reported in the body with success=false.
func (h *Handler) HandleAnalyzeFrame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	start := time.Now()

	var req AnalyzeFrameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, AnalyzeFrameResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, AnalyzeFrameResponse{Error: "invalid JSON body"})
		return
	}

	image, err := base64.StdEncoding.DecodeString(stripDataURL(req.ImageBase64))
	if err != nil {
		writeJSON(w, http.StatusOK, AnalyzeFrameResponse{Error: "Invalid image data: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.analyzer.Analyze(ctx, analysis.Request{
		Image:  image,
		APIKey: r.Header.Get(APIKeyHeader),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "analyze frame failed",
			"request_id", requestID,
			"error", err,
		)
		writeJSON(w, http.StatusOK, AnalyzeFrameResponse{Error: errorMessage(err)})
		return
	}

	h.logger.InfoContext(ctx, "frame analyzed",
		"request_id", requestID,
		"analysis_id", res.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, AnalyzeFrameResponse{Success: true, GameState: FromResult(res)})
}

// stripDataURL accepts "data:image/jpeg;base64,...." as well as bare base64.
func stripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, analysis.ErrInvalidImage):
		return "Invalid image data: " + detail(err, analysis.ErrInvalidImage)
	case errors.Is(err, analysis.ErrImageTooLarge):
		return "Invalid image data: " + err.Error()
	case errors.Is(err, vision.ErrNoAPIKey):
		return "OpenAI API key not configured"
	}
	return "Error analyzing frame: " + err.Error()
}

// detail drops everything up to and including the sentinel's own text.
func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
