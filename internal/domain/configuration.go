package domain

import (
	"time"

	"github.com/caseforge/caseforge/internal/catalog"
	"github.com/google/uuid"
)

// Attributes is the set of selectable case options persisted for a configuration.
type Attributes struct {
	Color    catalog.Color    `json:"color"`
	Model    catalog.Model    `json:"model"`
	Material catalog.Material `json:"material"`
	Finish   catalog.Finish   `json:"finish"`
}

// Configuration represents one in-progress or completed case design. The
// artifact URL stays nil until the composited image has been uploaded.
type Configuration struct {
	ID          uuid.UUID  `json:"id"`
	ImageURL    string     `json:"imageUrl"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Attributes  Attributes `json:"attributes"`
	ArtifactURL *string    `json:"artifactUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PriceCents returns the total price of the configured case.
func (c *Configuration) PriceCents() int {
	return catalog.PriceCents(c.Attributes.Material, c.Attributes.Finish)
}
