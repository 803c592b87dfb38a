package middleware

import (
	"net/http"

	apperrors "motoagenda/pkg/errors"
	"motoagenda/pkg/logger"
)

const MsgPayloadTooLarge = "Corpo da requisição excede o tamanho máximo permitido."

// MaxRequestSize rejects bodies whose declared length exceeds limit and caps
// the reader for the rest, so a chunked body fails inside the JSON decoder.
func MaxRequestSize(limit int64, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				reject(w, log, r, apperrors.PayloadTooLarge(MsgPayloadTooLarge), "content_length", r.ContentLength, "limit", limit)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
