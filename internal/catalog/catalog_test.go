package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrips(t *testing.T) {
	for _, c := range Colors() {
		parsed, err := ParseColor(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	for _, m := range Models() {
		parsed, err := ParseModel(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	for _, m := range Materials() {
		parsed, err := ParseMaterial(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	for _, f := range Finishes() {
		parsed, err := ParseFinish(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
}

func TestParseUnknownValues(t *testing.T) {
	testCases := map[string]struct {
		parse         func(string) error
		expectedError string
	}{
		"should reject unknown color": {
			parse:         func(v string) error { _, err := ParseColor(v); return err },
			expectedError: `unknown color "neon"`,
		},
		"should reject unknown model": {
			parse:         func(v string) error { _, err := ParseModel(v); return err },
			expectedError: `unknown model "neon"`,
		},
		"should reject unknown material": {
			parse:         func(v string) error { _, err := ParseMaterial(v); return err },
			expectedError: `unknown material "neon"`,
		},
		"should reject unknown finish": {
			parse:         func(v string) error { _, err := ParseFinish(v); return err },
			expectedError: `unknown finish "neon"`,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := tc.parse("neon")
			require.Error(t, err)

			var unknownErr *UnknownOptionError
			assert.ErrorAs(t, err, &unknownErr)
			assert.EqualError(t, err, tc.expectedError)
		})
	}
}

func TestColorClassTablesAreComplete(t *testing.T) {
	for _, c := range Colors() {
		assert.NotEmpty(t, c.Label(), "color %d has no label", c)
		assert.NotEmpty(t, c.Tailwind(), "color %d has no tailwind token", c)
		assert.NotEmpty(t, c.BackgroundClass(), "color %s has no background class", c)
		assert.NotEmpty(t, c.BorderClass(), "color %s has no border class", c)
	}
}

func TestPriceCents(t *testing.T) {
	testCases := map[string]struct {
		material Material
		finish   Finish
		expected int
	}{
		"should charge base price for silicone smooth": {
			material: MaterialSilicone,
			finish:   FinishSmooth,
			expected: BasePriceCents,
		},
		"should add polycarbonate increment": {
			material: MaterialPolycarbonate,
			finish:   FinishSmooth,
			expected: BasePriceCents + 500,
		},
		"should add both increments": {
			material: MaterialPolycarbonate,
			finish:   FinishTextured,
			expected: BasePriceCents + 500 + 300,
		},
		"should add matte increment": {
			material: MaterialSilicone,
			finish:   FinishMatte,
			expected: BasePriceCents + 150,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PriceCents(tc.material, tc.finish))
		})
	}
}
