package api

import (
	"errors"
	"net/http"
	"strings"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logx.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, &APIResponse{Status: statusSuccess, Data: data})
}

// respondError maps err onto its HTTP status. Messages of internal errors are
// never shown to the caller.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := errx.StatusOf(err)
	kind := errx.KindOf(err)

	message := errx.SystemErrorMessage
	var appErr *errx.AppError
	if kind != errx.KindInternal && errors.As(err, &appErr) {
		message = appErr.Message
	}

	ev := logx.Warn()
	if status >= http.StatusInternalServerError {
		ev = logx.Error()
	}
	ev.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("API Error")

	respondJSON(w, status, &APIResponse{
		Status: statusError,
		Error:  &APIError{Code: string(kind), Message: message},
	})
}

// validateRequest runs struct tag validation and converts failures into an
// invalid input error naming the offending fields.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errx.InvalidInput("invalid request: %v", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return errx.InvalidInput("invalid request fields: %s", strings.Join(fields, ", "))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errx.InvalidInput("malformed JSON body: %v", err)
	}
	return nil
}
