package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

// DB is an in-memory database for tests and local hacking.
type DB struct {
	user   *userTable
	course *courseTable
}

type userTable struct {
	sync.RWMutex
	table map[string]*user.User
}

type courseTable struct {
	sync.RWMutex
	table       map[string]*course.Course
	enrollments map[string]map[string]bool // courseID -> studentID set
	assignments map[string]*course.Assignment
	quizzes     map[string]*course.Quiz
}

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
		course: &courseTable{
			table:       make(map[string]*course.Course),
			enrollments: make(map[string]map[string]bool),
			assignments: make(map[string]*course.Assignment),
			quizzes:     make(map[string]*course.Quiz),
		},
	}
}
