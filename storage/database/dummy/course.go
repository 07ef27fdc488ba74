package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type courseRepository struct {
	db    *courseTable
	users *userTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, users: db.user}
}

func (repo *courseRepository) get(id string) (course.Course, bool) {
	crs, ok := repo.db.table[id]
	if !ok {
		return course.Course{}, false
	}
	out := *crs
	out.StudentIDs = repo.studentIDs(id)
	return out, true
}

func (repo *courseRepository) studentIDs(courseID string) []string {
	ids := make([]string, 0, len(repo.db.enrollments[courseID]))
	for id := range repo.db.enrollments[courseID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (repo *courseRepository) CheckCodeUniqueness(_ context.Context, code string, excludedCourses ...course.Course) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// same semantics as the unique index on upper(code)
	for _, crs := range repo.db.table {
		if !strings.EqualFold(crs.Code, code) {
			continue
		}
		var excluded bool
		for _, c := range excludedCourses {
			if c.ID == crs.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.table[crs.ID] = &crs
	repo.db.enrollments[crs.ID] = make(map[string]bool)
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.get(id); ok {
		return crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for id := range repo.db.table {
		crs, _ := repo.get(id)
		if filter.TeacherID != "" && !crs.HasTeacher(filter.TeacherID) {
			continue
		}
		if filter.EnrolledStudentID != "" && !repo.db.enrollments[id][filter.EnrolledStudentID] {
			continue
		}
		if filter.NotEnrolledStudentID != "" && repo.db.enrollments[id][filter.NotEnrolledStudentID] {
			continue
		}
		courses = append(courses, crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.table[crs.ID] = &crs
	out, _ := repo.get(crs.ID)
	return out, nil
}

func (repo *courseRepository) EnrollStudent(_ context.Context, courseID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	set, ok := repo.db.enrollments[courseID]
	if !ok {
		return course.ErrNotFound
	}
	if set[studentID] {
		return course.ErrAlreadyEnrolled
	}
	set[studentID] = true
	return nil
}

func (repo *courseRepository) QueryEnrolledStudents(_ context.Context, teacherID string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.users.RLock()
	defer repo.users.RUnlock()

	seen := make(map[string]bool)
	students := make([]user.User, 0)
	for id, crs := range repo.db.table {
		if !crs.HasTeacher(teacherID) {
			continue
		}
		for sid := range repo.db.enrollments[id] {
			if seen[sid] {
				continue
			}
			seen[sid] = true
			if usr, ok := repo.users.table[sid]; ok {
				students = append(students, *usr)
			}
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Email < students[j].Email })
	return students, nil
}

func (repo *courseRepository) CreateAssignment(_ context.Context, a course.Assignment) (course.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.New().String()
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *courseRepository) QueryAssignments(_ context.Context, filter course.ContentFilter) ([]course.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]course.Assignment, 0)
	for _, a := range repo.db.assignments {
		if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
			continue
		}
		if filter.CourseID != "" && a.CourseID != filter.CourseID {
			continue
		}
		assignments = append(assignments, *a)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].Title < assignments[j].Title })
	return assignments, nil
}

func (repo *courseRepository) CreateQuiz(_ context.Context, q course.Quiz) (course.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	q.ID = uuid.New().String()
	repo.db.quizzes[q.ID] = &q
	return q, nil
}

func (repo *courseRepository) QueryQuizzes(_ context.Context, filter course.ContentFilter) ([]course.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	quizzes := make([]course.Quiz, 0)
	for _, q := range repo.db.quizzes {
		if filter.TeacherID != "" && q.TeacherID != filter.TeacherID {
			continue
		}
		if filter.CourseID != "" && q.CourseID != filter.CourseID {
			continue
		}
		quizzes = append(quizzes, *q)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].Title < quizzes[j].Title })
	return quizzes, nil
}
