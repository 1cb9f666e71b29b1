package middleware

import (
	"net/http"
)

// SignatureValidator verifies a carrier webhook signature against the
// request as the carrier signed it.
type SignatureValidator interface {
	Validate(url string, params map[string]string, expectedSignature string) bool
}

// TwilioSignature rejects webhook posts whose X-Twilio-Signature header
// does not verify against the request reconstructed under baseURL. When
// skip is true (development) the check is bypassed.
func TwilioSignature(validator SignatureValidator, baseURL string, skip bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip {
				next.ServeHTTP(w, r)
				return
			}

			signature := r.Header.Get("X-Twilio-Signature")
			if signature == "" {
				http.Error(w, "Missing Twilio signature", http.StatusUnauthorized)
				return
			}

			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form payload", http.StatusBadRequest)
				return
			}
			params := make(map[string]string, len(r.PostForm))
			for k, vs := range r.PostForm {
				if len(vs) > 0 {
					params[k] = vs[0]
				}
			}

			if !validator.Validate(baseURL+r.URL.RequestURI(), params, signature) {
				http.Error(w, "Invalid Twilio signature", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
