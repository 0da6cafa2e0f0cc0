package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/auth"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/service"
)

const loginRequired = "You must log in to use flagkeep. Your request had no authorization header or an invalid session token."

// TokenParser verifies session tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// GrantsLoader resolves the permissions of a user.
type GrantsLoader interface {
	Grants(ctx context.Context, userID int) (*service.Grants, error)
}

// Authenticator is middleware that validates session tokens and loads the
// permissions of the caller into the request identity.
type Authenticator struct {
	tokens TokenParser
	grants GrantsLoader
	logger *zap.Logger
}

// NewAuthenticator creates a new session authenticator middleware
func NewAuthenticator(tokens TokenParser, grants GrantsLoader, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, grants: grants, logger: logger.Named("auth")}
}

// Middleware returns an HTTP middleware that rejects requests without a
// valid session token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, apierr.New(apierr.AuthenticationRequired, loginRequired))
			return
		}

		claims, err := a.tokens.Parse(token)
		if err != nil {
			msg := loginRequired
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Your session has expired. Log in again."
			}
			a.logger.Debug("rejected session token", zap.Error(err), zap.String("requestId", RequestIDFromContext(r.Context())))
			writeError(w, apierr.New(apierr.AuthenticationRequired, "%s", msg))
			return
		}

		grants, err := a.grants.Grants(r.Context(), claims.UserID)
		if err != nil {
			a.logger.Error("failed to load permissions", zap.Int("userId", claims.UserID), zap.Error(err))
			writeError(w, err)
			return
		}

		id := identity.New(claims.UserID, claims.Subject).
			WithRootPermissions(grants.Root).
			WithRemoteIP(remoteIP(r)).
			WithRequestID(RequestIDFromContext(r.Context()))
		if claims.IssuedAt != nil && claims.ExpiresAt != nil {
			id.WithTokenTimes(claims.IssuedAt.Time, claims.ExpiresAt.Time)
		}
		for project, perms := range grants.Project {
			id.WithProjectPermissions(project, perms)
		}

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// remoteIP returns the client address. handlers.ProxyHeaders has already
// replaced RemoteAddr when the request came through a proxy.
func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apierr.Status(err))
	_ = json.NewEncoder(w).Encode(apierr.Body(err))
}
