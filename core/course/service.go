package course

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrCodeExists      = errors.New("course code already exists")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrNotCourseOwner  = errors.New("you are not assigned to this course")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...Course) error
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		// QueryCourses applies AND operation on available QueryFilter fields.
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		// EnrollStudent appends the student to the course's student set.
		// Enrollment is add-only; duplicates are ErrAlreadyEnrolled, enforced
		// by the storage layer so concurrent duplicate calls cannot race.
		EnrollStudent(ctx context.Context, courseID, studentID string) error
		QueryEnrolledStudents(ctx context.Context, teacherID string) ([]user.User, error)
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		QueryAssignments(ctx context.Context, filter ContentFilter) ([]Assignment, error)
		CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
		QueryQuizzes(ctx context.Context, filter ContentFilter) ([]Quiz, error)
	}

	ServiceInterface interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...Course) error
		Create(ctx context.Context, nc NewCourse, createdBy string) (Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		Query(ctx context.Context, filter QueryFilter) ([]Course, error)
		AssignTeacher(ctx context.Context, courseID, teacherID string) (Course, error)
		Enroll(ctx context.Context, studentID, courseID string) (Course, error)
		EnrolledStudents(ctx context.Context, teacherID string) ([]user.User, error)
		CreateAssignment(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error)
		QueryAssignments(ctx context.Context, filter ContentFilter) ([]Assignment, error)
		CreateQuiz(ctx context.Context, teacherID string, nq NewQuiz) (Quiz, error)
		QueryQuizzes(ctx context.Context, filter ContentFilter) ([]Quiz, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, usrRepo user.Repository) *Service {
	return &Service{
		repo:    repo,
		usrRepo: usrRepo,
	}
}

func (svc *Service) CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...Course) error {
	return svc.repo.CheckCodeUniqueness(ctx, code, excludedCourses...)
}

func (svc *Service) Create(ctx context.Context, nc NewCourse, createdBy string) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		Code:        strings.ToUpper(nc.Code),
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

// AssignTeacher puts an approved teacher in charge of the course.
func (svc *Service) AssignTeacher(ctx context.Context, courseID, teacherID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, err
	}

	tch, err := svc.usrRepo.GetUserByID(ctx, teacherID)
	if err != nil {
		return Course{}, err
	}
	if !tch.IsTeacher() {
		return Course{}, user.ErrNotFound
	}
	if !tch.Approved {
		return Course{}, core.NewValidationError(
			nil, core.FieldError{Field: "teacher_id", Error: "teacher is pending approval"})
	}

	crs.TeacherID = null.StringFrom(tch.ID)
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// Enroll adds the student to the course's student set.
func (svc *Service) Enroll(ctx context.Context, studentID, courseID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if err = svc.repo.EnrollStudent(ctx, crs.ID, studentID); err != nil {
		return Course{}, err
	}
	return svc.repo.GetCourseByID(ctx, crs.ID)
}

func (svc *Service) EnrolledStudents(ctx context.Context, teacherID string) ([]user.User, error) {
	return svc.repo.QueryEnrolledStudents(ctx, teacherID)
}

func (svc *Service) CreateAssignment(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error) {
	crs, err := svc.repo.GetCourseByID(ctx, na.CourseID)
	if err != nil {
		return Assignment{}, err
	}
	if !crs.HasTeacher(teacherID) {
		return Assignment{}, ErrNotCourseOwner
	}

	now := time.Now().UTC()
	a := Assignment{
		Title:       na.Title,
		Description: na.Description,
		CourseID:    crs.ID,
		TeacherID:   teacherID,
		DueDate:     na.DueDate,
		TotalMarks:  na.TotalMarks,
		Attachments: na.Attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateAssignment(ctx, a)
}

func (svc *Service) QueryAssignments(ctx context.Context, filter ContentFilter) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, filter)
}

func (svc *Service) CreateQuiz(ctx context.Context, teacherID string, nq NewQuiz) (Quiz, error) {
	crs, err := svc.repo.GetCourseByID(ctx, nq.CourseID)
	if err != nil {
		return Quiz{}, err
	}
	if !crs.HasTeacher(teacherID) {
		return Quiz{}, ErrNotCourseOwner
	}

	now := time.Now().UTC()
	q := Quiz{
		Title:       nq.Title,
		Description: nq.Description,
		CourseID:    crs.ID,
		TeacherID:   teacherID,
		Questions:   nq.Questions,
		Duration:    nq.Duration,
		TotalMarks:  nq.TotalMarks,
		StartDate:   nq.StartDate,
		EndDate:     nq.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateQuiz(ctx, q)
}

func (svc *Service) QueryQuizzes(ctx context.Context, filter ContentFilter) ([]Quiz, error) {
	return svc.repo.QueryQuizzes(ctx, filter)
}
