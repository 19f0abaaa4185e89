package middleware

import (
	"mime"
	"net/http"
)

// ContentType only lets JSON bodies through. A body without a Content-Type,
// or with a non-JSON one, is dropped and the handler sees an empty request.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasBody(r) && !isJSON(r.Header.Get("Content-Type")) {
			r.Body = http.NoBody
			r.ContentLength = 0
		}

		next.ServeHTTP(w, r)
	})
}

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

// isJSON accepts application/json with or without parameters
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
