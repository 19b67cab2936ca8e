package handler

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"iem-reco-service/internal/catalog"
	"iem-reco-service/internal/middleware"
	"iem-reco-service/internal/recommend/service"
	"iem-reco-service/internal/validation"
)

type errorBody struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeValidation отдаёт 400 со списком полей.
func writeValidation(w http.ResponseWriter, err error) {
	var ve *validation.Error
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Fields: ve.Fields})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// writeLoadError maps catalog failures to HTTP codes:
// SchemaError -> 422, пустой/нечитаемый каталог или не загруженный A -> 503.
func writeLoadError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var se *service.SchemaError
	switch {
	case errors.As(err, &se):
		log.Warn().Err(err).Strs("missing", se.Missing).Msg("catalog schema")
		writeError(w, http.StatusUnprocessableEntity, se.Error())
	case errors.Is(err, service.ErrEmptyCatalog):
		log.Warn().Err(err).Msg("song catalog unavailable")
		writeError(w, http.StatusServiceUnavailable, service.ErrEmptyCatalog.Error())
	case errors.Is(err, catalog.ErrNotLoaded), errors.Is(err, service.ErrFatalLoad):
		log.Error().Err(err).Msg("iem catalog unavailable")
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// reqLogger привязывает rid из middleware.
func reqLogger(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return logger.With().Str("rid", rid).Logger()
	}
	return logger
}
