package api

import (
	"log/slog"
	"net/http"

	"github.com/oriontask/orion-api/internal/api/shared"
	"github.com/oriontask/orion-api/internal/domain"
	"github.com/oriontask/orion-api/internal/platform/logger"
	"github.com/oriontask/orion-api/internal/service"
)

// DharmaHandler handles dharma-related API requests.
type DharmaHandler struct {
	dharmaService *service.DharmaService
	logger        *slog.Logger
}

// NewDharmaHandler creates a new DharmaHandler with the given dependencies.
func NewDharmaHandler(dharmaService *service.DharmaService, logger *slog.Logger) *DharmaHandler {
	if dharmaService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("dharma service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DharmaHandler{
		dharmaService: dharmaService,
		logger:        logger.With(slog.String("component", "dharma_handler")),
	}
}

// CreateDharma handles POST /dharmas.
func (h *DharmaHandler) CreateDharma(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateDharmaRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	dharma, err := h.dharmaService.Create(r.Context(), userID, service.CreateDharmaInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create dharma")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewDharmaResponse(dharma))
}

// ListDharmas handles GET /dharmas. Hidden dharmas are included only when the
// include_hidden query parameter is "true".
func (h *DharmaHandler) ListDharmas(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	includeHidden := r.URL.Query().Get("include_hidden") == "true"

	dharmas, err := h.dharmaService.List(r.Context(), userID, includeHidden)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list dharmas")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewDharmaListResponse(dharmas))
}

// UpdateDharma handles PUT /dharmas/{id}.
func (h *DharmaHandler) UpdateDharma(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, dharmaID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateDharmaRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	dharma, err := h.dharmaService.Update(r.Context(), userID, dharmaID, service.UpdateDharmaInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update dharma")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewDharmaResponse(dharma))
}

// DeleteDharma handles DELETE /dharmas/{id}.
func (h *DharmaHandler) DeleteDharma(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, dharmaID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.dharmaService.Delete(r.Context(), userID, dharmaID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete dharma")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleHidden handles POST /dharmas/{id}/hidden.
func (h *DharmaHandler) ToggleHidden(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, dharmaID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	dharma, err := h.dharmaService.ToggleHidden(r.Context(), userID, dharmaID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle dharma visibility")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewDharmaResponse(dharma))
}
