package imaging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacement_ScaleTo(t *testing.T) {
	testCases := map[string]struct {
		placement Placement
		width     float64
	}{

		"should scale up a portrait photo": {
			placement: Placement{X: 150, Y: 205, Width: 100, Height: 200},
			width:     340,
		},

		"should scale down a landscape photo": {
			placement: Placement{X: -20, Y: 10, Width: 640, Height: 480},
			width:     120,
		},

		"should keep irrational ratios stable": {
			placement: Placement{Width: 896, Height: 1831},
			width:     251.5,
		},

		"should be a no-op at the current width": {
			placement: Placement{X: 1, Y: 2, Width: 333, Height: 111},
			width:     333,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			scaled := tc.placement.ScaleTo(tc.width)

			assert.Equal(t, tc.width, scaled.Width)
			assert.Equal(t, tc.placement.X, scaled.X)
			assert.Equal(t, tc.placement.Y, scaled.Y)

			deviation := math.Abs(scaled.AspectRatio() - tc.placement.AspectRatio())
			assert.Less(t, deviation, 1e-6, "aspect ratio drifted by %g", deviation)
		})
	}
}

func TestPlacement_Validate(t *testing.T) {
	testCases := map[string]struct {
		placement     Placement
		expectedError string
	}{

		"should accept a drawable placement": {
			placement: Placement{X: 150, Y: 205, Width: 100, Height: 200},
		},

		"should accept negative offsets": {
			placement: Placement{X: -50, Y: -10, Width: 100, Height: 200},
		},

		"should reject zero width": {
			placement:     Placement{Width: 0, Height: 200},
			expectedError: "placement size 0x200 is not drawable",
		},

		"should reject negative height": {
			placement:     Placement{Width: 100, Height: -1},
			expectedError: "placement size 100x-1 is not drawable",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := tc.placement.Validate()
			if tc.expectedError != "" {
				require.EqualError(t, err, tc.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}
