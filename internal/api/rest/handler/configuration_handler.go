package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/caseforge/caseforge/internal/designer"
	"github.com/caseforge/caseforge/internal/domain"
	"github.com/caseforge/caseforge/internal/imaging"
	"github.com/caseforge/caseforge/internal/repository"
)

// ConfigurationReader loads stored configurations.
type ConfigurationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Configuration, error)
}

// DesignSaver runs the save flow for a finished design.
type DesignSaver interface {
	SaveDesign(ctx context.Context, req designer.SaveDesignRequest) (*designer.SaveDesignResult, error)
}

// ConfigurationHandler handles HTTP requests for case configurations.
type ConfigurationHandler struct {
	configs  ConfigurationReader
	designer DesignSaver
	logger   *slog.Logger
}

func NewConfigurationHandler(configs ConfigurationReader, saver DesignSaver, logger *slog.Logger) *ConfigurationHandler {
	return &ConfigurationHandler{
		configs:  configs,
		designer: saver,
		logger:   logger,
	}
}

// ConfigurationResponse augments the stored configuration with its price.
type ConfigurationResponse struct {
	*domain.Configuration
	PriceCents int `json:"priceCents"`
}

// GetByID handles GET /api/configurations/{id}.
func (h *ConfigurationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "ID must be a valid UUID")
		return
	}

	cfg, err := h.configs.GetByID(r.Context(), id)
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			WriteErrorResponse(w, http.StatusNotFound, "not_found", "The requested configuration could not be found")
			return
		}

		h.logger.Error("Failed to retrieve configuration", "config_id", id, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "internal_error", "An internal error occurred while retrieving the configuration")
		return
	}

	WriteJSONResponse(w, http.StatusOK, ConfigurationResponse{
		Configuration: cfg,
		PriceCents:    cfg.PriceCents(),
	})
}

// SaveDesignRequest is the payload submitted from the designer screen.
type SaveDesignRequest struct {
	Attributes domain.Attributes `json:"attributes"`
	Placement  imaging.Placement `json:"placement"`
}

// SaveDesign handles POST /api/configurations/{id}/design.
func (h *ConfigurationHandler) SaveDesign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "ID must be a valid UUID")
		return
	}

	var req SaveDesignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Placement.Validate(); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.designer.SaveDesign(r.Context(), designer.SaveDesignRequest{
		ConfigID:   id,
		Attributes: req.Attributes,
		Placement:  req.Placement,
	})
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			WriteErrorResponse(w, http.StatusNotFound, "not_found", "The requested configuration could not be found")
			return
		}

		h.logger.Error("Failed to save design", "config_id", id, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "internal_error", "The design could not be saved")
		return
	}

	WriteJSONResponse(w, http.StatusOK, result)
}
