package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type courseApi struct {
	svc      course.ServiceInterface
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		validate: deps.Validate,
	}

	// admin portal
	adg := g.Group("/admin", jwt, adminMiddleware())
	adg.GET("/courses", api.query)
	adg.POST("/courses", api.create)
	adg.PUT("/courses/:id/teacher", api.assignTeacher)

	// teacher portal
	tg := g.Group("/teacher", jwt, teacherMiddleware())
	tg.GET("/courses", api.queryOwn)
	tg.GET("/students", api.queryEnrolledStudents)
	tg.GET("/assignments", api.queryAssignments)
	tg.POST("/assignments", api.createAssignment)
	tg.GET("/quizzes", api.queryQuizzes)
	tg.POST("/quizzes", api.createQuiz)

	// student portal
	sg := g.Group("/student", jwt, studentMiddleware())
	sg.GET("/courses", api.queryForStudent)
	sg.POST("/courses/:id/enroll", api.enroll)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	filter := course.QueryFilter{TeacherID: ctx.QueryParam("teacher_id")}
	courses, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) assignTeacher(ctx echo.Context) error {
	var data AssignTeacherRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignTeacherRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.AssignTeacher(ctx.Request().Context(), ctx.Param("id"), data.TeacherID)
	if err != nil {
		return errors.Wrap(err, "assigning teacher")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) queryOwn(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	courses, err := api.svc.Query(ctx.Request().Context(), course.QueryFilter{TeacherID: claims.Subject})
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) queryEnrolledStudents(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	students, err := api.svc.EnrolledStudents(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying enrolled students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *courseApi) queryAssignments(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := course.ContentFilter{TeacherID: claims.Subject, CourseID: ctx.QueryParam("course_id")}
	assignments, err := api.svc.QueryAssignments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []course.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *courseApi) createAssignment(ctx echo.Context) error {
	var data course.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	a, err := api.svc.CreateAssignment(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *courseApi) queryQuizzes(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := course.ContentFilter{TeacherID: claims.Subject, CourseID: ctx.QueryParam("course_id")}
	quizzes, err := api.svc.QueryQuizzes(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []course.Quiz{}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *courseApi) createQuiz(ctx echo.Context) error {
	var data course.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	q, err := api.svc.CreateQuiz(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, q)
}

// queryForStudent lists the catalogue; ?enrolled=true narrows to the
// student's courses, ?enrolled=false to the ones still open to them.
func (api *courseApi) queryForStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var filter course.QueryFilter
	if param := ctx.QueryParam("enrolled"); param != "" {
		enrolled, err := strconv.ParseBool(param)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "enrolled", Error: "must be true or false"})
		}
		if enrolled {
			filter.EnrolledStudentID = claims.Subject
		} else {
			filter.NotEnrolledStudentID = claims.Subject
		}
	}

	courses, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	crs, err := api.svc.Enroll(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusOK, crs)
}

type AssignTeacherRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
}

func (ar *AssignTeacherRequest) Validate(validate *validator.Validate) error {
	ar.TeacherID = core.CleanString(ar.TeacherID)
	return validate.Struct(ar)
}
