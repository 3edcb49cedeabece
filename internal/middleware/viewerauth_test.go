package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/internal/reports"
)

const testSecret = "test-signing-secret"

func signTestToken(t *testing.T, secret string, claims ViewerClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("expected no error signing token, got %s", err.Error())
	}
	return signed
}

func resolveViewer(t *testing.T, authHeader string) *reports.Viewer {
	t.Helper()
	var got *reports.Viewer
	handler := VerifyViewer(testSecret, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = ViewerFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/reports/list", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestVerifyViewerResolvesClaims(t *testing.T) {
	token := signTestToken(t, testSecret, ViewerClaims{
		Role:             "Manager",
		OrganizationId:   42,
		OrganizationName: "Red Cross",
		UserId:           7,
		Language:         "en",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	viewer := resolveViewer(t, "Bearer "+token)
	if viewer == nil {
		t.Fatal("expected viewer to be resolved")
	}
	if viewer.Role != models.RoleManager || viewer.OrganizationId != 42 || viewer.UserId != 7 {
		t.Errorf("unexpected viewer %+v", viewer)
	}
}

func TestVerifyViewerMissingTokenPassesThrough(t *testing.T) {
	if viewer := resolveViewer(t, ""); viewer != nil {
		t.Errorf("expected nil viewer without token, got %+v", viewer)
	}
}

func TestVerifyViewerBadSignature(t *testing.T) {
	token := signTestToken(t, "other-secret", ViewerClaims{Role: "Manager"})
	if viewer := resolveViewer(t, "Bearer "+token); viewer != nil {
		t.Errorf("expected nil viewer for bad signature, got %+v", viewer)
	}
}

func TestVerifyViewerExpiredToken(t *testing.T) {
	token := signTestToken(t, testSecret, ViewerClaims{
		Role: "Manager",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	if viewer := resolveViewer(t, "Bearer "+token); viewer != nil {
		t.Errorf("expected nil viewer for expired token, got %+v", viewer)
	}
}
