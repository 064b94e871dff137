package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/businessinrwanda/marketplace/internal/common"
)

const maxBodyBytes = 1 << 20

// envelope is the body of every API response.
type envelope struct {
	Success   bool                `json:"success"`
	Data      any                 `json:"data,omitempty"`
	Message   string              `json:"message,omitempty"`
	Errors    []common.FieldError `json:"errors,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string, fields []common.FieldError) {
	WriteJSON(w, status, envelope{
		Message:   message,
		Errors:    fields,
		RequestID: RequestIDFrom(r.Context()),
	})
}

// statusFor maps domain errors onto HTTP statuses. The bool reports whether
// the error text is safe to show to clients.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, true
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, true
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, true
	case errors.Is(err, common.ErrCompanyRequired):
		return http.StatusPreconditionFailed, true
	case errors.Is(err, common.ErrIdentityUnavailable):
		return http.StatusServiceUnavailable, true
	}
	return http.StatusInternalServerError, false
}

// writeError is the single place errors become responses. Unexpected errors
// are logged and only described in development.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, public := statusFor(err)

	var ve *common.ValidationError
	if errors.As(err, &ve) {
		writeMessage(w, r, status, common.ErrorValidation.Error(), ve.Fields)
		return
	}

	msg := err.Error()
	if !public {
		s.log.Error(r.Context(), "request failed",
			"request_id", RequestIDFrom(r.Context()), "method", r.Method, "path", r.URL.Path, "error", err)
		if !s.config.IsDevelopment() {
			msg = common.ErrorInternal.Error()
		}
	}
	writeMessage(w, r, status, msg, nil)
}

// decodeJSON reads a JSON body into v. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return common.NewValidationError(typeErr.Field, "has the wrong type")
		}
		return common.NewValidationError("body", "malformed JSON")
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, common.NewValidationError("body", "is too large")
		}
		return nil, common.NewValidationError("body", "could not be read")
	}
	if len(body) == 0 {
		return nil, common.NewValidationError("body", "is required")
	}
	return body, nil
}
