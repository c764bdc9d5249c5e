package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"chronoledger/internal/policy"
	id "chronoledger/pkg/domain"
	dErrors "chronoledger/pkg/domain-errors"
	"chronoledger/pkg/platform/httputil"
	"chronoledger/pkg/requestcontext"
)

const PrincipalHeader = "X-Principal"

// TokenValidator verifies a bearer token and returns the principal it names.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims is the subset of verified token claims the ledger uses. JTI is
// logged so a request can be traced back to the token that authorized it.
type TokenClaims struct {
	Principal string
	JTI       string
}

// ResolvePrincipal places the caller identity on the request context.
//
// With a validator configured, a Bearer token is required whenever an
// Authorization header is present and its subject becomes the principal; an
// invalid token is rejected with 401. Without a bearer token the X-Principal
// header is used as given. Requests with neither proceed with the empty
// principal, which no policy grants anything.
func ResolvePrincipal(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			if validator != nil && authHeader != "" {
				token, ok := strings.CutPrefix(authHeader, "Bearer ")
				if !ok {
					logger.WarnContext(ctx, "unauthorized access - malformed authorization header",
						"request_id", requestcontext.RequestID(ctx),
					)
					writeUnauthenticated(w, "Missing or invalid Authorization header")
					return
				}
				claims, err := validator.ValidateToken(token)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					writeUnauthenticated(w, "Invalid or expired token")
					return
				}
				logger.DebugContext(ctx, "bearer token accepted",
					"principal", claims.Principal,
					"jti", claims.JTI,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, id.Principal(claims.Principal))))
				return
			}

			principal := id.Principal(r.Header.Get(PrincipalHeader))
			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}

// RequireAction admits only callers the policy grants action on an ownerless
// resource.
func RequireAction(pol policy.Policy, action policy.Action, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller := requestcontext.Principal(ctx)
			if !pol.Can(caller, action, policy.Resource{}) {
				logger.WarnContext(ctx, "authorization denied",
					"action", action.String(),
					"principal", caller,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteCallerError(w, dErrors.New(dErrors.CodeUnauthorized, "owner access required"), caller)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter, desc string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             string(dErrors.CodeUnauthorized),
		"error_description": desc,
	})
}
