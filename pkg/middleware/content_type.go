package middleware

import (
	"mime"
	"net/http"

	apperrors "motoagenda/pkg/errors"
	"motoagenda/pkg/logger"
)

const MsgUnsupportedContentType = "Content-Type deve ser application/json."

func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isWriteMethod(r.Method) {
				contentType := extractContentType(r.Header.Get("Content-Type"))
				if contentType != "application/json" {
					reject(w, log, r, apperrors.UnsupportedMedia(MsgUnsupportedContentType), "content_type", contentType)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mediaType
}
