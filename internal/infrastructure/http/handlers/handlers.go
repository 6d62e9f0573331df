// Package handlers provides the HTTP handlers for the REST API.
package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/planea/aiserver/internal/application/chat"
	"github.com/planea/aiserver/internal/application/mealprep"
	"github.com/planea/aiserver/internal/application/planner"
	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/pkg/errors"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	plans    *planner.Service
	kits     *mealprep.Service
	chats    *chat.Service
	validate *validator.Validate
	logger   *zap.Logger
	version  string
}

// New creates the handler set.
func New(plans *planner.Service, kits *mealprep.Service, chats *chat.Service, logger *zap.Logger, version string) *Handlers {
	v := validator.New()
	// Report field names as their JSON tags so validation errors match the
	// wire format the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handlers{
		plans:    plans,
		kits:     kits,
		chats:    chats,
		validate: v,
		logger:   logger,
		version:  version,
	}
}

// decode unmarshals and validates a request body. A nil return means the
// error response has already been written.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, errors.NewBadRequestError("invalid JSON body").WithCause(err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if ok := errorsAs(err, &verrs); ok && len(verrs) > 0 {
			first := verrs[0]
			h.writeError(w, r, errors.NewValidationError(first.Namespace(), first.Error()))
			return false
		}
		h.writeError(w, r, errors.NewBadRequestError(err.Error()))
		return false
	}
	return true
}

func errorsAs(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(appErr),
		)
	}
	requestID := chimiddleware.GetReqID(r.Context())
	h.writeJSON(w, appErr.StatusCode(), errors.ToErrorResponse(appErr, requestID))
}

// generationFailed is the single message surfaced when the core could not
// produce a result, localized to the request language.
func generationFailed(language string) string {
	if language == "en" {
		return "Generation failed. Please try again."
	}
	return "La génération a échoué. Veuillez réessayer."
}

// normalizeLanguage maps the wire language to one of the two supported
// locales, defaulting to French.
func normalizeLanguage(s string) string {
	if strings.ToLower(strings.TrimSpace(s)) == "en" {
		return "en"
	}
	return "fr"
}

// parseUnits validates the unit-system tag, defaulting to metric.
func (h *Handlers) parseUnits(w http.ResponseWriter, r *http.Request, s string) (plan.UnitSystem, bool) {
	units, err := plan.ParseUnitSystem(s)
	if err != nil {
		h.writeError(w, r, errors.NewValidationError("units", err.Error()))
		return "", false
	}
	return units, true
}

// parseWeekStart accepts a civil date or an RFC 3339 timestamp. Empty is
// allowed: the planner only uses the date for seasonal hints.
func parseWeekStart(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Root handles GET / with a short service identity payload.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"service": "planea-aiserver",
		"version": h.version,
	})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().Unix(),
	})
}
