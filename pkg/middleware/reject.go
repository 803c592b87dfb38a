package middleware

import (
	"net/http"

	apperrors "motoagenda/pkg/errors"
	httputil "motoagenda/pkg/http"
	"motoagenda/pkg/logger"
)

func reject(w http.ResponseWriter, log *logger.Logger, r *http.Request, appErr *apperrors.AppError, args ...any) {
	attrs := append([]any{
		"request_id", RequestIDFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"code", appErr.Code,
	}, args...)
	log.Warn("Request rejected", attrs...)

	if err := httputil.WriteError(w, appErr); err != nil {
		log.Error("Failed to write rejection", "error", err)
	}
}

func isWriteMethod(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}
