package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const (
	loginPath           = "/login"
	signupPath          = "/signup"
	pendingApprovalPath = "/pending-approval"
)

// guardDecision is the outcome of routing a page request through the
// access rules. A zero decision means "serve the page as requested".
type guardDecision struct {
	Redirect    string
	ClearCookie bool
}

// landingPath is where a signed-in session belongs; an unapproved teacher
// is parked on the pending approval page instead of their portal.
func landingPath(claims *Claims) string {
	if claims.Role == user.RoleTeacher && !claims.Approved {
		return pendingApprovalPath
	}
	return claims.Role.DashboardPath()
}

// rolePrefix returns the portal owning the path, if any.
func rolePrefix(path string) (user.Role, bool) {
	for _, role := range user.AllRoles {
		if prefix := "/" + string(role); path == prefix || strings.HasPrefix(path, prefix+"/") {
			return role, true
		}
	}
	return "", false
}

// decideAccess applies the session rules for a page request:
//   - a signed-in session visiting the login or signup page is sent to its landing page
//   - every other page requires a session; a missing one goes to the login page
//   - a bad token is cleared on top of the login redirect
//   - an unapproved teacher is parked on the pending approval page
//   - a session on another portal's page is sent home to its own
func decideAccess(claims *Claims, hasToken bool, path string) guardDecision {
	valid := claims != nil

	switch path {
	case loginPath, signupPath:
		if valid {
			return guardDecision{Redirect: landingPath(claims)}
		}
		return guardDecision{ClearCookie: hasToken}
	}

	if !valid {
		return guardDecision{Redirect: loginPath, ClearCookie: hasToken}
	}
	if claims.Role == user.RoleTeacher && !claims.Approved {
		if path == pendingApprovalPath {
			return guardDecision{}
		}
		return guardDecision{Redirect: pendingApprovalPath}
	}
	if role, ok := rolePrefix(path); ok && claims.Role != role {
		return guardDecision{Redirect: landingPath(claims)}
	}
	return guardDecision{}
}

func pageGuardMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, hasToken := resolveSession(ctx)
			decision := decideAccess(claims, hasToken, ctx.Request().URL.Path)
			if decision.ClearCookie {
				clearAuthCookie(ctx, conf)
			}
			if decision.Redirect != "" {
				return ctx.Redirect(http.StatusFound, decision.Redirect)
			}
			return next(ctx)
		}
	}
}
