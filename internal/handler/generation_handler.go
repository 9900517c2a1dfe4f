package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"inkforge-server/internal/domain"
)

// GenerationHandler streams generated story text to the client.
type GenerationHandler struct {
	generationService domain.GenerationService
	usageService      domain.UsageService
	logger            domain.Logger
}

func NewGenerationHandler(generationService domain.GenerationService, usageService domain.UsageService, logger domain.Logger) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		usageService:      usageService,
		logger:            logger,
	}
}

// Generate proxies the engine's token stream as chunked text/plain. The
// response status is committed when the first token arrives, so quota and
// lookup failures still get a proper error status.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	flusher, _ := w.(http.Flusher)
	delivered := 0
	sink := func(fragment string) error {
		if delivered == 0 {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
		}
		if _, err := io.WriteString(w, fragment); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		delivered++
		return nil
	}

	if err := h.generationService.Generate(r.Context(), user, &req, token, sink); err != nil {
		if delivered > 0 {
			// Headers are gone; the truncated body is all we can tell the client.
			h.logger.Warn("Generation stream ended early", "user_id", user.ID, "fragments", delivered, "error", err)
			return
		}
		writeServiceError(w, err)
		return
	}

	if delivered == 0 {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}

// GetUsage returns the caller's reconciled quota snapshot.
func (h *GenerationHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	usage, err := h.usageService.Snapshot(user.ID)
	if err != nil {
		h.logger.Error("Failed to load usage record", err, "user_id", user.ID)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subscription_tier": usage.SubscriptionTier,
		"daily_generations": usage.DailyGenerations,
		"daily_limit":       h.usageService.DailyLimit(),
		"unlimited":         !usage.SubscriptionTier.QuotaLimited(),
	})
}
