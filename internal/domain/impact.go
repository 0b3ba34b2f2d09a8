package domain

import (
	"math"
)

const (
	// DefaultDensityKgPerM3 is the bulk density assumed for a rocky impactor.
	DefaultDensityKgPerM3 = 3000.0

	// JoulesPerMegatonTNT is the conventional TNT-equivalent conversion factor.
	JoulesPerMegatonTNT = 4.184e15

	// affectedRadiusCoefficient and affectedRadiusExponent form the empirical
	// energy-to-radius scaling law. Do not tune without revising the model.
	affectedRadiusCoefficient = 0.01
	affectedRadiusExponent    = 0.33
)

// Severity is the discrete tier derived from an impact's TNT-equivalent yield.
type Severity string

const (
	SeverityLow          Severity = "Low"
	SeverityModerate     Severity = "Moderate"
	SeverityHigh         Severity = "High"
	SeverityCatastrophic Severity = "Catastrophic"
)

// severityTiers is ordered by ascending lower bound. The first tier whose
// upper bound exceeds the energy wins.
var severityTiers = []struct {
	below    float64
	severity Severity
}{
	{below: 1, severity: SeverityLow},
	{below: 10, severity: SeverityModerate},
	{below: 100, severity: SeverityHigh},
}

// ImpactRequest describes a spherical impactor.
type ImpactRequest struct {
	RadiusKm       float64 `json:"radius_km"`
	VelocityKmPerS float64 `json:"velocity_km_per_s"`
	DensityKgPerM3 float64 `json:"density_kg_per_m3"`
}

// NewImpactRequest builds a request using the rocky-body default density.
func NewImpactRequest(radiusKm, velocityKmPerS float64) ImpactRequest {
	return ImpactRequest{
		RadiusKm:       radiusKm,
		VelocityKmPerS: velocityKmPerS,
		DensityKgPerM3: DefaultDensityKgPerM3,
	}
}

// Validate reports the first field that is not a positive finite number.
func (r ImpactRequest) Validate() error {
	if err := checkPositive("radius_km", r.RadiusKm); err != nil {
		return err
	}
	if err := checkPositive("velocity_km_per_s", r.VelocityKmPerS); err != nil {
		return err
	}
	return checkPositive("density_kg_per_m3", r.DensityKgPerM3)
}

// ImpactEstimate is the result of an impact calculation. Values are kept at
// full precision; use Rounded for presentation.
type ImpactEstimate struct {
	EnergyMegatonsTNT float64  `json:"energy_megatons_tnt"`
	AffectedRadiusKm  float64  `json:"affected_radius_km"`
	Severity          Severity `json:"severity"`

	VolumeM3     float64 `json:"-"`
	MassKg       float64 `json:"-"`
	EnergyJoules float64 `json:"-"`
}

// Rounded returns a copy with energy and affected radius rounded to two
// decimal places. Severity is always derived from the unrounded energy.
func (e ImpactEstimate) Rounded() ImpactEstimate {
	e.EnergyMegatonsTNT = Round2(e.EnergyMegatonsTNT)
	e.AffectedRadiusKm = Round2(e.AffectedRadiusKm)
	return e
}

// Estimate computes the kinetic energy, TNT-equivalent yield, affected-ground
// radius and severity of an impact. It fails only with an
// *InvalidParameterError, including when finite inputs overflow float64.
func Estimate(req ImpactRequest) (ImpactEstimate, error) {
	if err := req.Validate(); err != nil {
		return ImpactEstimate{}, err
	}

	radiusM := req.RadiusKm * 1000
	volume := (4.0 / 3.0) * math.Pi * math.Pow(radiusM, 3)
	mass := req.DensityKgPerM3 * volume
	velocityMS := req.VelocityKmPerS * 1000
	joules := 0.5 * mass * math.Pow(velocityMS, 2)
	megatons := joules / JoulesPerMegatonTNT

	// Attribute overflow to the first stage that left the representable range.
	switch {
	case math.IsInf(volume, 0):
		return ImpactEstimate{}, outOfRange("radius_km")
	case math.IsInf(mass, 0):
		return ImpactEstimate{}, outOfRange("density_kg_per_m3")
	case math.IsInf(joules, 0), math.IsInf(megatons, 0):
		return ImpactEstimate{}, outOfRange("velocity_km_per_s")
	}

	return ImpactEstimate{
		EnergyMegatonsTNT: megatons,
		AffectedRadiusKm:  AffectedRadiusKm(megatons),
		Severity:          ClassifySeverity(megatons),
		VolumeM3:          volume,
		MassKg:            mass,
		EnergyJoules:      joules,
	}, nil
}

// AffectedRadiusKm applies the empirical scaling law to a yield in megatons.
func AffectedRadiusKm(energyMegatons float64) float64 {
	return affectedRadiusCoefficient * math.Pow(energyMegatons, affectedRadiusExponent) * 1000
}

// ClassifySeverity maps a TNT-equivalent yield in megatons to a severity tier.
func ClassifySeverity(energyMegatons float64) Severity {
	for _, tier := range severityTiers {
		if energyMegatons < tier.below {
			return tier.severity
		}
	}
	return SeverityCatastrophic
}

// exactAbove is the magnitude beyond which float64 has no fractional digits.
const exactAbove = 1 << 52

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	if math.Abs(v) >= exactAbove {
		return v
	}
	return math.Round(v*100) / 100
}

// Round3 rounds half away from zero to three decimal places.
func Round3(v float64) float64 {
	if math.Abs(v) >= exactAbove {
		return v
	}
	return math.Round(v*1000) / 1000
}

func outOfRange(field string) error {
	return &InvalidParameterError{Field: field, Reason: "result exceeds representable range"}
}

func checkPositive(field string, v float64) error {
	switch {
	case math.IsNaN(v):
		return &InvalidParameterError{Field: field, Reason: "must be a number"}
	case math.IsInf(v, 0):
		return &InvalidParameterError{Field: field, Reason: "must be finite"}
	case v <= 0:
		return &InvalidParameterError{Field: field, Reason: "must be greater than zero"}
	}
	return nil
}
