package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type createSiteRequest struct {
	Name   string   `json:"name" validate:"required,max=200"`
	Lat    *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng    *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Radius *float64 `json:"radius" validate:"omitempty,gt=0"`
}

func (r createSiteRequest) toSite() domain.ImpactSite {
	radius := domain.DefaultSiteRadiusKm
	if r.Radius != nil {
		radius = *r.Radius
	}
	return domain.ImpactSite{
		Name:     r.Name,
		Lat:      *r.Lat,
		Lng:      *r.Lng,
		RadiusKm: radius,
	}
}

// validationError converts the first validator failure to an InvalidParameterError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "gte":
		reason = fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		reason = fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		reason = fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		reason = "is invalid"
	}
	return &domain.InvalidParameterError{Field: fe.Field(), Reason: reason}
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.deps.Sites.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	var req createSiteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		s.writeError(w, validationError(err))
		return
	}

	site, err := s.deps.Sites.Create(r.Context(), req.toSite())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.deps.Metrics.SitesCreated.Inc()
	s.publish(r, domain.NewSiteCreatedEvent(site))

	writeJSON(w, http.StatusCreated, site)
}

func (s *Server) handleClearSites(w http.ResponseWriter, r *http.Request) {
	removed, err := s.deps.Sites.Clear(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.publish(r, domain.NewSitesClearedEvent(removed))

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "All meteors cleared",
		"removed": removed,
	})
}

// publish forwards a site event. Failures are logged and counted but never
// fail the request; the site change has already been stored.
func (s *Server) publish(r *http.Request, event domain.SiteEvent) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.PublishSiteEvent(r.Context(), event); err != nil {
		s.deps.Metrics.SiteEventsProduced.WithLabelValues("error").Inc()
		s.logger.Warn("site event publish failed", "error", err, "type", event.Type, "event_id", event.ID)
		return
	}
	s.deps.Metrics.SiteEventsProduced.WithLabelValues("success").Inc()
}
