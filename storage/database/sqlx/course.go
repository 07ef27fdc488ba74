package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	Code        string      `db:"code"`
	TeacherID   null.String `db:"teacher_id"`
	CreatedBy   string      `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (repo courseRepository) row(crs course.Course) courseRow {
	return courseRow{
		ID:          crs.ID,
		Title:       crs.Title,
		Description: crs.Description,
		Code:        crs.Code,
		TeacherID:   crs.TeacherID,
		CreatedBy:   crs.CreatedBy,
		CreatedAt:   crs.CreatedAt.UTC(),
		UpdatedAt:   crs.UpdatedAt.UTC(),
	}
}

func (repo courseRepository) unrow(row courseRow) course.Course {
	return course.Course{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Code:        row.Code,
		TeacherID:   row.TeacherID,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo courseRepository) loadStudentIDs(ctx context.Context, crs *course.Course) error {
	err := repo.db.SelectContext(ctx, &crs.StudentIDs,
		`SELECT student_id FROM enrollment WHERE course_id = $1 ORDER BY enrolled_at`, crs.ID)
	return errors.Wrap(err, "loading course students")
}

func (repo courseRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...course.Course) error {
	query := `SELECT EXISTS (SELECT 1 FROM course WHERE upper(code) = upper($1))`
	args := []interface{}{code}

	if len(excludedCourses) > 0 {
		ids := make([]string, 0, len(excludedCourses))
		for _, c := range excludedCourses {
			ids = append(ids, c.ID)
		}
		var err error
		query, args, err = sqlx.In(
			`SELECT EXISTS (SELECT 1 FROM course WHERE upper(code) = upper(?) AND id NOT IN (?))`, code, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		query = repo.db.Rebind(query)
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking code uniqueness")
	}
	if exists {
		return course.ErrCodeExists
	}
	return nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	row := repo.row(crs)

	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, title, description, code, teacher_id, created_by, created_at, updated_at)
		VALUES (:id, :title, :description, :code, :teacher_id, :created_by, :created_at, :updated_at)`, row)
	if err != nil {
		if violatedConstraint(err) == "course_code_key" {
			return course.Course{}, course.ErrCodeExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return repo.unrow(row), nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}

	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course by ID")
	}
	crs := repo.unrow(row)
	if err := repo.loadStudentIDs(ctx, &crs); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	query := `SELECT * FROM course`
	var conds []string
	var args []interface{}

	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conds = append(conds, "teacher_id = ?")
	}
	if filter.EnrolledStudentID != "" {
		args = append(args, filter.EnrolledStudentID)
		conds = append(conds, "id IN (SELECT course_id FROM enrollment WHERE student_id = ?)")
	}
	if filter.NotEnrolledStudentID != "" {
		args = append(args, filter.NotEnrolledStudentID)
		conds = append(conds, "id NOT IN (SELECT course_id FROM enrollment WHERE student_id = ?)")
	}
	if len(conds) > 0 {
		query += " WHERE " + conds[0]
		for _, cond := range conds[1:] {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"
	query = repo.db.Rebind(query)

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		crs := repo.unrow(row)
		if err := repo.loadStudentIDs(ctx, &crs); err != nil {
			return nil, err
		}
		courses = append(courses, crs)
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row := repo.row(crs)

	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE course
		SET title = :title, description = :description, code = :code,
		    teacher_id = :teacher_id, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		if violatedConstraint(err) == "course_code_key" {
			return course.Course{}, course.ErrCodeExists
		}
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return course.Course{}, course.ErrNotFound
	}

	out := repo.unrow(row)
	if err = repo.loadStudentIDs(ctx, &out); err != nil {
		return course.Course{}, err
	}
	return out, nil
}

// EnrollStudent relies on the enrollment primary key to reject duplicates,
// so two concurrent calls for the same (student, course) pair cannot both win.
func (repo courseRepository) EnrollStudent(ctx context.Context, courseID, studentID string) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO enrollment (course_id, student_id) VALUES ($1, $2)`, courseID, studentID)
	if err != nil {
		if violatedConstraint(err) == "enrollment_pkey" {
			return course.ErrAlreadyEnrolled
		}
		return errors.Wrap(err, "enrolling student")
	}
	return nil
}

func (repo courseRepository) QueryEnrolledStudents(ctx context.Context, teacherID string) ([]user.User, error) {
	var rows []userRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT DISTINCT u.*
		FROM "user" u
		JOIN enrollment e ON e.student_id = u.id
		JOIN course c ON c.id = e.course_id
		WHERE c.teacher_id = $1
		ORDER BY u.email`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrolled students")
	}
	return userRepository{}.unrowSlice(rows), nil
}

type assignmentRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	CourseID    string         `db:"course_id"`
	TeacherID   string         `db:"teacher_id"`
	DueDate     time.Time      `db:"due_date"`
	TotalMarks  int            `db:"total_marks"`
	Attachments pq.StringArray `db:"attachments"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (repo courseRepository) CreateAssignment(ctx context.Context, a course.Assignment) (course.Assignment, error) {
	a.ID = uuid.New().String()
	row := assignmentRow{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		CourseID:    a.CourseID,
		TeacherID:   a.TeacherID,
		DueDate:     a.DueDate.UTC(),
		TotalMarks:  a.TotalMarks,
		Attachments: a.Attachments,
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}

	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO assignment (id, title, description, course_id, teacher_id, due_date, total_marks, attachments, created_at, updated_at)
		VALUES (:id, :title, :description, :course_id, :teacher_id, :due_date, :total_marks, :attachments, :created_at, :updated_at)`, row)
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo courseRepository) QueryAssignments(ctx context.Context, filter course.ContentFilter) ([]course.Assignment, error) {
	query, args := contentQuery("assignment", filter)
	query = repo.db.Rebind(query)

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}

	assignments := make([]course.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, course.Assignment{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			CourseID:    row.CourseID,
			TeacherID:   row.TeacherID,
			DueDate:     row.DueDate,
			TotalMarks:  row.TotalMarks,
			Attachments: row.Attachments,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return assignments, nil
}

type quizRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CourseID    string    `db:"course_id"`
	TeacherID   string    `db:"teacher_id"`
	Questions   []byte    `db:"questions"`
	Duration    int       `db:"duration"`
	TotalMarks  int       `db:"total_marks"`
	StartDate   time.Time `db:"start_date"`
	EndDate     time.Time `db:"end_date"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (repo courseRepository) CreateQuiz(ctx context.Context, q course.Quiz) (course.Quiz, error) {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "encoding quiz questions")
	}

	q.ID = uuid.New().String()
	row := quizRow{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		CourseID:    q.CourseID,
		TeacherID:   q.TeacherID,
		Questions:   questions,
		Duration:    q.Duration,
		TotalMarks:  q.TotalMarks,
		StartDate:   q.StartDate.UTC(),
		EndDate:     q.EndDate.UTC(),
		CreatedAt:   q.CreatedAt.UTC(),
		UpdatedAt:   q.UpdatedAt.UTC(),
	}

	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO quiz (id, title, description, course_id, teacher_id, questions, duration, total_marks, start_date, end_date, created_at, updated_at)
		VALUES (:id, :title, :description, :course_id, :teacher_id, :questions, :duration, :total_marks, :start_date, :end_date, :created_at, :updated_at)`, row)
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	return q, nil
}

func (repo courseRepository) QueryQuizzes(ctx context.Context, filter course.ContentFilter) ([]course.Quiz, error) {
	query, args := contentQuery("quiz", filter)
	query = repo.db.Rebind(query)

	var rows []quizRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}

	quizzes := make([]course.Quiz, 0, len(rows))
	for _, row := range rows {
		var questions []course.Question
		if err := json.Unmarshal(row.Questions, &questions); err != nil {
			return nil, errors.Wrap(err, "decoding quiz questions")
		}
		quizzes = append(quizzes, course.Quiz{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			CourseID:    row.CourseID,
			TeacherID:   row.TeacherID,
			Questions:   questions,
			Duration:    row.Duration,
			TotalMarks:  row.TotalMarks,
			StartDate:   row.StartDate,
			EndDate:     row.EndDate,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return quizzes, nil
}

func contentQuery(table string, filter course.ContentFilter) (string, []interface{}) {
	query := `SELECT * FROM ` + table
	var conds []string
	var args []interface{}

	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conds = append(conds, "teacher_id = ?")
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		conds = append(conds, "course_id = ?")
	}
	if len(conds) > 0 {
		query += " WHERE " + conds[0]
		for _, cond := range conds[1:] {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"
	return query, args
}
