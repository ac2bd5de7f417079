package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"

	apperrors "github.com/louisbranch/gridfall/internal/platform/errors"
	"github.com/louisbranch/gridfall/internal/platform/errors/i18n"
)

const timeLayout = time.RFC3339Nano

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: code, Message: message}}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("INVALID_JSON", "request body is not valid JSON"))
		return false
	}
	return true
}

// writeError maps domain errors to HTTP statuses and localized messages.
// Unrecognized errors become opaque 500s.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		log.Printf("http: %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorBody(string(apperrors.CodeUnknown), "internal error"))
		return
	}

	locale := r.Header.Get("Accept-Language")
	message := i18n.GetCatalog(locale).Format(string(appErr.Code), appErr.Metadata)
	writeJSON(w, httpStatus(appErr.Code.GRPCCode()), errorBody(string(appErr.Code), message))
}

func httpStatus(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
