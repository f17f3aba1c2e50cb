package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eisenboard/eisenboard-api/internal/api/shared"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// getPathUUID extracts a UUID from the URL path parameters.
//
// Returns:
//   - (uuid.UUID, nil): The parsed UUID if valid
//   - (uuid.Nil, error): A validation error if the parameter is missing or malformed
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handlePathUUID extracts the UUID named paramName from the path and
// writes a 400 response when it is missing or malformed. entity names the
// resource in the error message, for example "task".
//
// Returns:
//   - (id, true): The path UUID
//   - (uuid.Nil, false): The extraction failed and an error was written
func handlePathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	entity string,
	log *slog.Logger,
) (uuid.UUID, bool) {
	id, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+entity+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into req and validates it,
// writing a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", err.Error()))
		HandleValidationError(w, r, err)
		return false
	}

	return true
}

// queryBool reports whether the query parameter name is set to a true value.
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
