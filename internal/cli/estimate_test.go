package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEstimate_Text(t *testing.T) {
	out, err := run(t, "estimate", "--radius", "1", "--velocity", "20")
	require.NoError(t, err)

	assert.Contains(t, out, "600686.93 Mt TNT")
	assert.Contains(t, out, "807.15 km")
	assert.Contains(t, out, "Catastrophic")
}

func TestEstimate_JSON(t *testing.T) {
	out, err := run(t, "estimate", "--radius", "0.05", "--velocity", "20", "-o", "json")
	require.NoError(t, err)

	var got estimateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 75.09, got.EnergyMegatonsTNT)
	assert.Equal(t, 41.58, got.AffectedRadiusKm)
	assert.Equal(t, domain.SeverityHigh, got.Severity)
	assert.Equal(t, domain.DefaultDensityKgPerM3, got.DensityKgPerM3)
}

func TestEstimate_YAMLWithDensity(t *testing.T) {
	out, err := run(t, "estimate", "--radius", "1", "--velocity", "20", "--density", "1500", "--output", "yaml")
	require.NoError(t, err)

	var got estimateOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, 300343.47, got.EnergyMegatonsTNT)
	assert.Equal(t, 1500.0, got.DensityKgPerM3)
}

func TestEstimate_InvalidParameter(t *testing.T) {
	_, err := run(t, "estimate", "--radius=-1", "--velocity=20")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
	assert.Contains(t, err.Error(), "radius_km")
}

func TestEstimate_OverflowJSON(t *testing.T) {
	out, err := run(t, "estimate", "--radius=1e100", "--velocity=20", "-o", "json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
	assert.Contains(t, err.Error(), "result exceeds representable range")
	assert.Empty(t, out)
}

func TestEstimate_RequiredFlags(t *testing.T) {
	_, err := run(t, "estimate", "--radius", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "velocity")
}

func TestEstimate_UnknownFormat(t *testing.T) {
	_, err := run(t, "estimate", "--radius", "1", "--velocity", "20", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
