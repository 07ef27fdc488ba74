package course

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

type Course struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Code        string      `json:"code"` // always uppercase
	TeacherID   null.String `json:"teacher_id"`
	StudentIDs  []string    `json:"student_ids"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// HasTeacher reports whether the given user is the assigned teacher.
func (c *Course) HasTeacher(teacherID string) bool {
	return c.TeacherID.Valid && c.TeacherID.String == teacherID
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Code        string `json:"code" validate:"required,coursecode"`
}

func (nc *NewCourse) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Code = strings.ToUpper(core.CleanString(nc.Code))

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(ctx, nc.Code)
}

type Assignment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CourseID    string    `json:"course_id"`
	TeacherID   string    `json:"teacher_id"`
	DueDate     time.Time `json:"due_date"`
	TotalMarks  int       `json:"total_marks"`
	Attachments []string  `json:"attachments,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewAssignment struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	CourseID    string    `json:"course_id" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	TotalMarks  int       `json:"total_marks" validate:"required,gte=1"`
	Attachments []string  `json:"attachments"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

type Question struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,max=6,dive,required"`
	CorrectAnswer int      `json:"correct_answer" validate:"gte=0"`
	Marks         int      `json:"marks" validate:"gte=1"`
}

type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CourseID    string     `json:"course_id"`
	TeacherID   string     `json:"teacher_id"`
	Questions   []Question `json:"questions"`
	Duration    int        `json:"duration"` // minutes
	TotalMarks  int        `json:"total_marks"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC
}

type NewQuiz struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	CourseID    string     `json:"course_id" validate:"required"`
	Questions   []Question `json:"questions" validate:"min=1,dive"`
	Duration    int        `json:"duration" validate:"required,gte=1"`
	TotalMarks  int        `json:"total_marks" validate:"required,gte=1"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     time.Time  `json:"end_date" validate:"required,gtfield=StartDate"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	nq.Description = core.CleanString(nq.Description)

	if err := validate.Struct(nq); err != nil {
		return err
	}

	// the correct answer must point at one of the options
	for i, q := range nq.Questions {
		if q.CorrectAnswer >= len(q.Options) {
			fld := "questions[" + strconv.Itoa(i) + "].correct_answer"
			return core.NewValidationError(nil, core.FieldError{Field: fld, Error: "out of options range"})
		}
	}
	return nil
}

type (
	// QueryFilter applies AND operation on available fields.
	QueryFilter struct {
		TeacherID            string
		EnrolledStudentID    string
		NotEnrolledStudentID string
	}

	ContentFilter struct {
		TeacherID string
		CourseID  string
	}
)
