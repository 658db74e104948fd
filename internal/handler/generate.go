package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aide-ai/content-assistant/internal/middleware"
	"github.com/aide-ai/content-assistant/internal/model"
	"github.com/aide-ai/content-assistant/internal/service"
	"github.com/aide-ai/content-assistant/pkg/logger"
)

// GenerateHandler handles the text-generation endpoint.
type GenerateHandler struct {
	service *service.GenerationService
	logger  *logger.Logger
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(svc *service.GenerationService, log *logger.Logger) *GenerateHandler {
	return &GenerateHandler{
		service: svc,
		logger:  log,
	}
}

// Generate handles POST /api/v1/generate
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	content, err := h.service.Generate(ctx, userID, &req)
	if errors.Is(err, service.ErrEmptyPrompt) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		// Upstream detail stays in the logs; the caller gets a generic error.
		writeError(w, http.StatusInternalServerError, "failed to generate content")
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateResponse{Content: content})
}
