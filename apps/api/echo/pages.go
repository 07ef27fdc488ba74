package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// registerPages mounts the portal pages behind the session guard.
// These render placeholders until the web frontend takes them over.
func registerPages(app *echo.Echo, conf *core.Config) {
	guard := pageGuardMiddleware(conf)

	app.GET("/", home, guard)
	app.GET(loginPath, page("Sign in"), guard)
	app.GET(signupPath, page("Sign up"), guard)
	app.GET(pendingApprovalPath, page("Your teacher application is pending approval"), guard)

	app.GET(user.RoleAdmin.DashboardPath(), page("Admin dashboard"), guard)
	app.GET(user.RoleTeacher.DashboardPath(), page("Teacher dashboard"), guard)
	app.GET(user.RoleStudent.DashboardPath(), page("Student dashboard"), guard)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa!")
}

func page(title string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, title)
	}
}
