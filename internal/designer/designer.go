// Package designer orchestrates the design save flow. Persisting the chosen
// case attributes and rendering the printable artifact are separate steps
// with different failure semantics. A failed save aborts the flow, while a
// failed render keeps the saved configuration usable for a later re-render.
package designer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/caseforge/caseforge/internal/domain"
	"github.com/caseforge/caseforge/internal/imaging"
)

// PreviewPath is where the customer lands after a successful save.
const PreviewPath = "/configure/preview"

type ConfigurationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Configuration, error)
	SaveAttributes(ctx context.Context, id uuid.UUID, attrs domain.Attributes) error
	SetArtifactURL(ctx context.Context, id uuid.UUID, url string) error
}

type ImageLoader interface {
	Preload(ctx context.Context, rawURL string) (*imaging.SourceImage, error)
}

type Uploader interface {
	Store(ctx context.Context, filename string, data []byte, configID uuid.UUID) (string, error)
}

// SaveDesignRequest captures everything the designer screen submits when the
// customer continues to the preview step.
type SaveDesignRequest struct {
	ConfigID   uuid.UUID
	Attributes domain.Attributes
	Placement  imaging.Placement
	Template   imaging.TemplateSize
}

// SaveDesignResult reports where to send the customer next and whether the
// rendered artifact made it into storage.
type SaveDesignResult struct {
	ConfigID      uuid.UUID `json:"configId"`
	RedirectURL   string    `json:"redirectUrl"`
	ArtifactSaved bool      `json:"artifactSaved"`
	ArtifactURL   string    `json:"artifactUrl,omitempty"`
}

type Service struct {
	configs ConfigurationStore
	loader  ImageLoader
	uploads Uploader
	logger  *slog.Logger
}

func NewService(configs ConfigurationStore, loader ImageLoader, uploads Uploader, logger *slog.Logger) *Service {
	return &Service{
		configs: configs,
		loader:  loader,
		uploads: uploads,
		logger:  logger,
	}
}

// SaveDesign persists the chosen attributes and then renders the printable
// artifact. The attribute save must succeed before anything else happens.
// Render failures are reported through ArtifactSaved rather than an error so
// the customer is never blocked from the preview by a rendering hiccup.
func (s *Service) SaveDesign(ctx context.Context, req SaveDesignRequest) (*SaveDesignResult, error) {
	if req.ConfigID == uuid.Nil {
		return nil, fmt.Errorf("save design: missing configuration id")
	}
	if err := req.Placement.Validate(); err != nil {
		return nil, fmt.Errorf("save design: %w", err)
	}

	if err := s.configs.SaveAttributes(ctx, req.ConfigID, req.Attributes); err != nil {
		return nil, fmt.Errorf("save attributes for configuration %s: %w", req.ConfigID, err)
	}

	result := &SaveDesignResult{
		ConfigID:    req.ConfigID,
		RedirectURL: fmt.Sprintf("%s?id=%s", PreviewPath, req.ConfigID),
	}

	artifactURL, err := s.renderArtifact(ctx, req)
	if err != nil {
		s.logger.Warn("artifact render failed",
			"config_id", req.ConfigID,
			"error", err,
		)
		return result, nil
	}

	result.ArtifactSaved = true
	result.ArtifactURL = artifactURL
	return result, nil
}

func (s *Service) renderArtifact(ctx context.Context, req SaveDesignRequest) (string, error) {
	cfg, err := s.configs.GetByID(ctx, req.ConfigID)
	if err != nil {
		return "", fmt.Errorf("load configuration: %w", err)
	}

	src, err := s.loader.Preload(ctx, cfg.ImageURL)
	if err != nil {
		return "", fmt.Errorf("preload source image: %w", err)
	}

	template := req.Template
	if template.Width == 0 || template.Height == 0 {
		template = imaging.CaseTemplate
	}

	rendered, err := imaging.Composite(src, req.Placement, template)
	if err != nil {
		return "", fmt.Errorf("composite artifact: %w", err)
	}

	filename := fmt.Sprintf("%s-case.png", req.ConfigID)
	artifactURL, err := s.uploads.Store(ctx, filename, rendered, req.ConfigID)
	if err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}

	if err := s.configs.SetArtifactURL(ctx, req.ConfigID, artifactURL); err != nil {
		return "", fmt.Errorf("record artifact url: %w", err)
	}
	return artifactURL, nil
}
