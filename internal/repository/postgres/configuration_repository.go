// Package postgres implements the storefront repositories on a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseforge/caseforge/internal/catalog"
	"github.com/caseforge/caseforge/internal/domain"
	"github.com/caseforge/caseforge/internal/repository"
)

const (
	ConfigurationResource = "configuration"
)

// ConfigurationRepository provides database operations for case configurations.
type ConfigurationRepository struct {
	pool *pgxpool.Pool
}

// NewConfigurationRepository creates a new ConfigurationRepository instance.
func NewConfigurationRepository(pool *pgxpool.Pool) *ConfigurationRepository {
	return &ConfigurationRepository{
		pool: pool,
	}
}

// Create allocates a configuration row when a base photo upload is accepted.
// Attributes start at the catalog defaults; the artifact URL starts null.
func (r *ConfigurationRepository) Create(ctx context.Context, cfg *domain.Configuration) error {
	query := `INSERT INTO configurations (id, image_url, width, height, color, model, material, finish)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		cfg.ID,
		cfg.ImageURL,
		cfg.Width,
		cfg.Height,
		cfg.Attributes.Color.String(),
		cfg.Attributes.Model.String(),
		cfg.Attributes.Material.String(),
		cfg.Attributes.Finish.String(),
	)
	if err != nil {
		return fmt.Errorf("create configuration: %w", err)
	}

	return nil
}

// GetByID retrieves a configuration by its ID.
func (r *ConfigurationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Configuration, error) {
	query := `SELECT id, image_url, width, height, color, model, material, finish, artifact_url, created_at, updated_at
              FROM configurations WHERE id = $1`

	var (
		cfg                            domain.Configuration
		color, model, material, finish string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&cfg.ID,
		&cfg.ImageURL,
		&cfg.Width,
		&cfg.Height,
		&color,
		&model,
		&material,
		&finish,
		&cfg.ArtifactURL,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: ConfigurationResource,
				Key:      "id",
				Value:    id.String(),
			}
		}
		return nil, fmt.Errorf("retrieve configuration %s: %w", id, err)
	}

	attrs, err := parseAttributes(color, model, material, finish)
	if err != nil {
		return nil, fmt.Errorf("configuration %s: %w", id, err)
	}
	cfg.Attributes = attrs

	return &cfg, nil
}

// SaveAttributes persists the selected case options for a configuration.
func (r *ConfigurationRepository) SaveAttributes(ctx context.Context, id uuid.UUID, attrs domain.Attributes) error {
	query := `UPDATE configurations
              SET color = $2, model = $3, material = $4, finish = $5, updated_at = now()
              WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		id,
		attrs.Color.String(),
		attrs.Model.String(),
		attrs.Material.String(),
		attrs.Finish.String(),
	)
	if err != nil {
		return fmt.Errorf("save attributes for configuration %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &repository.NotFoundError{
			Resource: ConfigurationResource,
			Key:      "id",
			Value:    id.String(),
		}
	}

	return nil
}

// SetArtifactURL records the uploaded composite-image URL for a configuration.
func (r *ConfigurationRepository) SetArtifactURL(ctx context.Context, id uuid.UUID, url string) error {
	query := `UPDATE configurations SET artifact_url = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("set artifact url for configuration %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &repository.NotFoundError{
			Resource: ConfigurationResource,
			Key:      "id",
			Value:    id.String(),
		}
	}

	return nil
}

func parseAttributes(color, model, material, finish string) (domain.Attributes, error) {
	var attrs domain.Attributes
	var err error

	if attrs.Color, err = catalog.ParseColor(color); err != nil {
		return attrs, err
	}
	if attrs.Model, err = catalog.ParseModel(model); err != nil {
		return attrs, err
	}
	if attrs.Material, err = catalog.ParseMaterial(material); err != nil {
		return attrs, err
	}
	if attrs.Finish, err = catalog.ParseFinish(finish); err != nil {
		return attrs, err
	}

	return attrs, nil
}
