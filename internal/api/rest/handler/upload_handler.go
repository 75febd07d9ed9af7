package handler

import (
	"bytes"
	"context"
	"image"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/caseforge/caseforge/internal/domain"

	_ "image/jpeg"
	_ "image/png"
)

// MaxUploadBytes caps the accepted upload size at 16 MB.
const MaxUploadBytes = 16 << 20

// UploadStore persists raw image files and returns a public URL.
type UploadStore interface {
	Store(ctx context.Context, filename string, data []byte, configID uuid.UUID) (string, error)
}

// ConfigurationCreator starts a new configuration for an uploaded image.
type ConfigurationCreator interface {
	Create(ctx context.Context, cfg *domain.Configuration) error
}

// UploadHandler handles customer image uploads, the first step of the
// configuration flow.
type UploadHandler struct {
	uploads UploadStore
	configs ConfigurationCreator
	logger  *slog.Logger
}

func NewUploadHandler(uploads UploadStore, configs ConfigurationCreator, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		configs: configs,
		logger:  logger,
	}
}

// UploadResponse reports the new configuration and where the image landed.
type UploadResponse struct {
	ConfigID uuid.UUID `json:"configId"`
	URL      string    `json:"url"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
}

// Upload handles POST /api/uploads - accepts a multipart image and opens a
// configuration recording its intrinsic dimensions.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "A file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "upload_too_large", "The uploaded file exceeds the size limit")
		return
	}

	// Only PNG and JPEG decode here; anything else is rejected up front.
	imgCfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		WriteErrorResponse(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "Only PNG and JPEG images are supported")
		return
	}

	configID := uuid.New()

	url, err := h.uploads.Store(r.Context(), header.Filename, data, configID)
	if err != nil {
		h.logger.Error("Failed to store upload", "config_id", configID, "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "upload_failed", "The file could not be stored")
		return
	}

	cfg := &domain.Configuration{
		ID:       configID,
		ImageURL: url,
		Width:    imgCfg.Width,
		Height:   imgCfg.Height,
	}
	if err := h.configs.Create(r.Context(), cfg); err != nil {
		h.logger.Error("Failed to create configuration", "config_id", configID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "internal_error", "The configuration could not be created")
		return
	}

	h.logger.Info("Upload accepted",
		"config_id", configID,
		"format", format,
		"width", imgCfg.Width,
		"height", imgCfg.Height,
	)

	WriteJSONResponse(w, http.StatusCreated, UploadResponse{
		ConfigID: configID,
		URL:      url,
		Width:    imgCfg.Width,
		Height:   imgCfg.Height,
	})
}
