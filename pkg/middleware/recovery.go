package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "motoagenda/pkg/errors"
	httputil "motoagenda/pkg/http"
	"motoagenda/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					log.Error("Panic recovered",
						"request_id", RequestIDFromContext(r.Context()),
						"error", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					appErr := apperrors.Internal("Erro interno do servidor.", fmt.Errorf("panic: %v", rec))
					_ = httputil.WriteError(w, appErr)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
