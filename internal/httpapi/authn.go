package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"yardimpanel.org/internal/audit"
	"yardimpanel.org/internal/authz"
	"yardimpanel.org/internal/obs"
)

const (
	authHeader = "Authorization"
	orgHeader  = "X-Organization-Id"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/v1/auth/token",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
}

// withGate authenticates the caller and resolves the active tenant exactly
// once per request, attaching the grant to the context. Route-level role and
// permission requirements are asserted by the handlers via require().
func (a *API) withGate(next http.Handler) http.Handler {
	if a == nil || a.gate == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			obs.ObserveAuthzDecision(false, string(authz.CodeAuthFailed))
			writeErrorCode(w, r, http.StatusUnauthorized, string(authz.CodeAuthFailed), err.Error())
			return
		}

		grant, err := a.gate.Authorize(r.Context(), token, r.Header.Get(orgHeader), authz.Requirement{})
		if err != nil {
			a.denyAuthz(w, r, err)
			return
		}

		obs.ObserveAuthzDecision(true, "")
		next.ServeHTTP(w, r.WithContext(authz.ContextWithGrant(r.Context(), grant)))
	})
}

// require asserts a route-level requirement against the grant already in the
// context. Returns the grant and true when the request may proceed.
func (a *API) require(w http.ResponseWriter, r *http.Request, req authz.Requirement) (authz.Grant, bool) {
	grant, ok := authz.GrantFromContext(r.Context())
	if !ok {
		a.denyAuthz(w, r, authz.ErrAuthFailed(""))
		return authz.Grant{}, false
	}
	if req.Role != "" && !grant.Context.Role.AtLeast(req.Role) {
		a.denyAuthz(w, r, authz.ErrRoleInsufficient(req.Role))
		return authz.Grant{}, false
	}
	if req.Permission != "" && !authz.HasPermission(grant.Context.Role, req.Permission, req.Resource) {
		a.denyAuthz(w, r, authz.ErrPermissionDenied(req.Permission))
		return authz.Grant{}, false
	}
	return grant, true
}

// denyAuthz maps a typed authorization error onto the response, counts it and
// audits the denial. Store failures are logged with their cause; the client
// only ever sees the generic message.
func (a *API) denyAuthz(w http.ResponseWriter, r *http.Request, err error) {
	typed := authz.AsError(err)
	obs.ObserveAuthzDecision(false, string(typed.Code))

	if typed.Code == authz.CodeStoreError {
		obs.LogRequest(map[string]any{
			"level":      "error",
			"msg":        "authorization_store_failure",
			"request_id": RequestIDFromContext(r.Context()),
			"error":      typed.Error(),
		})
	} else {
		_ = audit.LogEvent(r.Context(), "authz.denied", map[string]any{
			"code":   string(typed.Code),
			"path":   r.URL.Path,
			"method": r.Method,
		})
	}

	if typed.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(typed.RetryAfter))
	}
	writeErrorCode(w, r, typed.Status, string(typed.Code), typed.Message)
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
