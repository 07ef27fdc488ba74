package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userApi struct {
	conf     *core.Config
	svc      user.ServiceInterface
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		conf:     deps.Conf,
		svc:      deps.UserSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/auth")
	ag.POST("/signup", api.signup)
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me, jwt)

	// admin portal
	adg := g.Group("/admin", jwt, adminMiddleware())
	adg.GET("/teachers", api.queryTeachers)
	adg.GET("/teachers/pending", api.queryPendingTeachers)
	adg.POST("/teachers/approval", api.reviewTeacher)
	adg.GET("/students", api.queryStudents)
}

// Handlers

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}
	// admins are created from the CLI, never self-served
	if data.Role == user.RoleAdmin {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "role must be student or teacher"})
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	// no session yet; teachers wait for approval, everyone else signs in
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, usr, err := authenticate(ctx, data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	setAuthCookie(ctx, api.conf, token)
	return ctx.JSON(http.StatusOK, LoginResponse{User: usr, RedirectTo: usr.Role.DashboardPath()})
}

func (api *userApi) logout(ctx echo.Context) error {
	clearAuthCookie(ctx, api.conf)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			clearAuthCookie(ctx, api.conf)
			return errUnauthorized
		}
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) queryTeachers(ctx echo.Context) error {
	users, err := api.svc.Query(ctx.Request().Context(), user.QueryFilter{Role: user.RoleTeacher})
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryPendingTeachers(ctx echo.Context) error {
	users, err := api.svc.PendingTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying pending teachers")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

// reviewTeacher settles a pending teacher application: approval opens the
// teacher portal, rejection deletes the account.
func (api *userApi) reviewTeacher(ctx echo.Context) error {
	var data TeacherApprovalRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherApprovalRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if *data.Approve {
		usr, err := api.svc.ApproveTeacher(ctx.Request().Context(), data.TeacherID)
		if err != nil {
			return errors.Wrap(err, "approving teacher")
		}
		return ctx.JSON(http.StatusOK, usr)
	}

	if err := api.svc.RejectTeacher(ctx.Request().Context(), data.TeacherID); err != nil {
		return errors.Wrap(err, "rejecting teacher")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "teacher application rejected"})
}

func (api *userApi) queryStudents(ctx echo.Context) error {
	users, err := api.svc.Query(ctx.Request().Context(), user.QueryFilter{Role: user.RoleStudent})
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		User       user.User `json:"user"`
		RedirectTo string    `json:"redirect_to"`
	}

	TeacherApprovalRequest struct {
		TeacherID string `json:"teacher_id" validate:"required"`
		Approve   *bool  `json:"approve" validate:"required"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (tr *TeacherApprovalRequest) Validate(validate *validator.Validate) error {
	tr.TeacherID = core.CleanString(tr.TeacherID)
	return validate.Struct(tr)
}
