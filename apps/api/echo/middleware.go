package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

// roleMiddleware rejects sessions from another portal. Tokens never say
// who they were minted for, so a mismatch reads as "not authenticated".
func roleMiddleware(role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role != role {
				return errUnauthorized
			}
			if claims.Role == user.RoleTeacher && !claims.Approved {
				return errPendingApproval
			}
			return next(ctx)
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc   { return roleMiddleware(user.RoleAdmin) }
func teacherMiddleware() echo.MiddlewareFunc { return roleMiddleware(user.RoleTeacher) }
func studentMiddleware() echo.MiddlewareFunc { return roleMiddleware(user.RoleStudent) }
