package middleware

import (
	"context"
	"net/http"
	"strings"
)

// TokenVerifier resolves a bearer token to a subject identity. It is the
// boundary to the external auth capability; this core never inspects
// tokens itself.
type TokenVerifier interface {
	// Verify returns the subject ID for a token, or false when the token
	// is unknown or invalid.
	Verify(ctx context.Context, token string) (string, bool)
}

// StaticVerifier is a development TokenVerifier backed by a fixed
// token-to-subject map.
type StaticVerifier struct {
	subjects map[string]string
}

// NewStaticVerifier builds a verifier from "token=subject" pairs separated
// by commas. Malformed pairs are skipped.
func NewStaticVerifier(spec string) *StaticVerifier {
	subjects := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		token, subject, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || token == "" || subject == "" {
			continue
		}
		subjects[token] = subject
	}
	return &StaticVerifier{subjects: subjects}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (string, bool) {
	subject, ok := v.subjects[token]
	return subject, ok
}

// Authenticate resolves the request's subject identity and stores it in
// the context. Requests without a valid identity are rejected with 401
// rather than silently dropped.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			subject, ok := verifier.Verify(r.Context(), token)
			if !ok {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectIDKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubjectID retrieves the authenticated subject from context.
// The second return is false when the request carried no identity.
func GetSubjectID(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectIDKey).(string)
	return subject, ok && subject != ""
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthenticated","message":"A valid identity is required"}`))
}
