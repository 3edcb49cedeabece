package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/internal/reports"
)

type contextKey int

var viewerKey contextKey

// ViewerClaims is the token payload identifying the requesting user.
type ViewerClaims struct {
	Name             string `json:"name"`
	Role             string `json:"role"`
	OrganizationId   int    `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
	UserId           int    `json:"userId"`
	Language         string `json:"language"`
	jwt.RegisteredClaims
}

// VerifyViewer resolves the viewer identity from a bearer token and stores it
// on the request context. A missing or invalid token does not reject the
// request; the query engine treats an unresolved viewer as no access and
// returns an empty page.
func VerifyViewer(signingSecret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if viewer := viewerFromRequest(r, signingSecret); viewer != nil {
			r = r.WithContext(context.WithValue(r.Context(), viewerKey, viewer))
		}
		next.ServeHTTP(rw, r)
	})
}

// ViewerFromContext returns the resolved viewer, nil when none was resolved.
func ViewerFromContext(ctx context.Context) *reports.Viewer {
	viewer, _ := ctx.Value(viewerKey).(*reports.Viewer)
	return viewer
}

func viewerFromRequest(r *http.Request, signingSecret string) *reports.Viewer {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil
	}
	tokenString := strings.TrimPrefix(auth, "Bearer ")

	claims := &ViewerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(signingSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		slog.Warn("failed to resolve viewer from bearer token", "error", err)
		return nil
	}

	return &reports.Viewer{
		UserId:           claims.UserId,
		Name:             claims.Name,
		Role:             models.UserRole(claims.Role),
		OrganizationId:   claims.OrganizationId,
		OrganizationName: claims.OrganizationName,
		Language:         claims.Language,
	}
}
