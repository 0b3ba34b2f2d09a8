package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
)

const maxBodyBytes = 1 << 20

// Canonical parameter names used in error payloads.
const (
	fieldRadius   = "radius_km"
	fieldVelocity = "velocity_km_per_s"
	fieldDensity  = "density_kg_per_m3"
)

// wireFieldNames maps accepted JSON keys to their canonical parameter names.
var wireFieldNames = map[string]string{
	"radius":   fieldRadius,
	"velocity": fieldVelocity,
	"density":  fieldDensity,
}

// simulateRequest accepts both the canonical field names and the short
// radius/velocity/density aliases. Canonical names win when both are set.
type simulateRequest struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng  *float64 `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`

	RadiusKm       *float64 `json:"radius_km"`
	VelocityKmPerS *float64 `json:"velocity_km_per_s"`
	DensityKgPerM3 *float64 `json:"density_kg_per_m3"`

	Radius   *float64 `json:"radius"`
	Velocity *float64 `json:"velocity"`
	Density  *float64 `json:"density"`
}

type simulateResponse struct {
	Name              string          `json:"name"`
	Lat               *float64        `json:"lat,omitempty"`
	Lng               *float64        `json:"lng,omitempty"`
	EnergyMegatonsTNT float64         `json:"energy_megatons_tnt"`
	AffectedRadiusKm  float64         `json:"affected_radius_km"`
	Severity          domain.Severity `json:"severity"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// toImpactRequest resolves aliases and the density default. Missing radius or
// velocity yields an InvalidParameterError.
func (r simulateRequest) toImpactRequest(defaultDensity float64) (domain.ImpactRequest, error) {
	radius := firstSet(r.RadiusKm, r.Radius)
	if radius == nil {
		return domain.ImpactRequest{}, domain.MissingParameter(fieldRadius)
	}
	velocity := firstSet(r.VelocityKmPerS, r.Velocity)
	if velocity == nil {
		return domain.ImpactRequest{}, domain.MissingParameter(fieldVelocity)
	}
	density := defaultDensity
	if d := firstSet(r.DensityKgPerM3, r.Density); d != nil {
		density = *d
	}
	return domain.ImpactRequest{
		RadiusKm:       *radius,
		VelocityKmPerS: *velocity,
		DensityKgPerM3: density,
	}, nil
}

func firstSet(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if err := validate.Struct(req); err != nil {
		s.writeError(w, validationError(err))
		return
	}

	impactReq, err := req.toImpactRequest(s.deps.DefaultDensity)
	if err != nil {
		s.writeError(w, err)
		return
	}

	est, err := domain.Estimate(impactReq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.deps.Metrics.Simulations.WithLabelValues(string(est.Severity)).Inc()

	rounded := est.Rounded()
	writeJSON(w, http.StatusOK, simulateResponse{
		Name:              req.Name,
		Lat:               req.Lat,
		Lng:               req.Lng,
		EnergyMegatonsTNT: rounded.EnergyMegatonsTNT,
		AffectedRadiusKm:  rounded.AffectedRadiusKm,
		Severity:          rounded.Severity,
	})
}

func (s *Server) handleAsteroids(w http.ResponseWriter, r *http.Request) {
	start, end := domain.FeedWindow()
	asteroids, err := s.deps.Asteroids.Asteroids(r.Context(), start, end)
	if err != nil {
		s.logger.Warn("nasa feed failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: fmt.Sprintf("failed to fetch NASA data: %v", err)})
		return
	}

	if withEstimate, _ := strconv.ParseBool(r.URL.Query().Get("estimate")); withEstimate {
		asteroids = domain.WithImpact(asteroids, s.deps.DefaultDensity)
	}
	writeJSON(w, http.StatusOK, asteroids)
}

func (s *Server) handleTerrain(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoordinate(r, "lat", 90)
	if err != nil {
		s.writeError(w, err)
		return
	}
	lng, err := parseCoordinate(r, "lng", 180)
	if err != nil {
		s.writeError(w, err)
		return
	}

	elevation, err := s.deps.Elevation.Elevation(r.Context(), lat, lng)
	if err != nil {
		s.logger.Warn("elevation lookup failed", "error", err, "lat", lat, "lng", lng)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: fmt.Sprintf("failed to fetch terrain data: %v", err)})
		return
	}
	writeJSON(w, http.StatusOK, elevation)
}

func parseCoordinate(r *http.Request, name string, limit float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, domain.MissingParameter(name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.InvalidParameterError{Field: name, Reason: "must be a number"}
	}
	if v < -limit || v > limit {
		return 0, &domain.InvalidParameterError{Field: name, Reason: fmt.Sprintf("must be between %g and %g", -limit, limit)}
	}
	return v, nil
}

// decodeJSON reads a size-limited JSON body. Type mismatches on a field are
// reported as InvalidParameterError.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		if canonical, ok := wireFieldNames[field]; ok {
			field = canonical
		}
		return &domain.InvalidParameterError{Field: field, Reason: "must be a number"}
	}
	if errors.Is(err, io.EOF) {
		return errBadRequest{msg: "request body is required"}
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBadRequest{msg: "request body too large"}
	}
	return errBadRequest{msg: "malformed JSON: " + err.Error()}
}

type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var invalid *domain.InvalidParameterError
	if errors.As(err, &invalid) {
		s.deps.Metrics.InvalidParameters.WithLabelValues(invalid.Field).Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: invalid.Error(), Field: invalid.Field})
		return
	}
	var bad errBadRequest
	if errors.As(err, &bad) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: bad.msg})
		return
	}
	s.logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
