package middleware

import (
	"log/slog"
	"mime"
	"net/http"

	"catalog-api/internal/util"
)

// RedactSensitive is the last transform before a response leaves the
// server: password material is removed from every JSON body, cached or not.
func RedactSensitive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newBufferedResponse()
		next.ServeHTTP(rec, r)

		if isJSON(rec.header.Get("Content-Type")) && rec.body.Len() > 0 {
			redacted, ok := util.RedactJSON(rec.body.Bytes())
			if !ok {
				slog.Warn("response declared json but could not be parsed", "path", r.URL.Path)
			}
			rec.body.Reset()
			rec.body.Write(redacted)
			rec.header.Del("Content-Length")
		}

		rec.writeTo(w)
	})
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
