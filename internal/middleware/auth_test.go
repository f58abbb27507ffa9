package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-directory/internal/auth"

	"go.uber.org/zap"
)

type fakeVerifier struct {
	claims *auth.AccessClaims
	err    error
}

func (f fakeVerifier) VerifyAccessToken(string) (*auth.AccessClaims, error) {
	return f.claims, f.err
}

type fakeVersions struct {
	valid bool
	err   error
}

func (f fakeVersions) CheckTokenVersion(context.Context, string, int) (bool, error) {
	return f.valid, f.err
}

func TestJWTAuth(t *testing.T) {
	okClaims := &auth.AccessClaims{UserID: "u-1", TokenVersion: 2, AuthMethod: "local"}

	cases := []struct {
		name       string
		header     string
		verifier   fakeVerifier
		versions   fakeVersions
		wantStatus int
	}{
		{"missing header", "", fakeVerifier{claims: okClaims}, fakeVersions{valid: true}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", fakeVerifier{claims: okClaims}, fakeVersions{valid: true}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", fakeVerifier{err: errors.New("bad sig")}, fakeVersions{valid: true}, http.StatusUnauthorized},
		{"revoked version", "Bearer ok", fakeVerifier{claims: okClaims}, fakeVersions{valid: false}, http.StatusUnauthorized},
		{"version lookup fails", "Bearer ok", fakeVerifier{claims: okClaims}, fakeVersions{err: errors.New("db down")}, http.StatusInternalServerError},
		{"valid", "Bearer ok", fakeVerifier{claims: okClaims}, fakeVersions{valid: true}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotUser string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = UserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			mw := NewAuthMiddleware(tc.verifier, tc.versions, zap.NewNop())
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			mw.JWTAuth(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK && gotUser != "u-1" {
				t.Errorf("user id in context = %q", gotUser)
			}
			if tc.wantStatus != http.StatusOK && rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("error response is not JSON")
			}
		})
	}
}

func TestUserID(t *testing.T) {
	if _, ok := UserID(context.Background()); ok {
		t.Error("empty context reported a user")
	}
	if id, ok := UserID(WithUserID(context.Background(), "u-9")); !ok || id != "u-9" {
		t.Errorf("UserID = %q, %v", id, ok)
	}
}
