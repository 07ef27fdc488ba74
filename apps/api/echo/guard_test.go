package echoapi

import (
	"testing"

	"github.com/trezcool/darasa/core/user"
)

func Test_decideAccess(t *testing.T) {
	student := &Claims{Role: user.RoleStudent, Approved: true}
	teacher := &Claims{Role: user.RoleTeacher, Approved: true}
	pendingTeacher := &Claims{Role: user.RoleTeacher}
	admin := &Claims{Role: user.RoleAdmin, Approved: true}

	tests := []struct {
		name     string
		claims   *Claims
		hasToken bool
		path     string
		want     guardDecision
	}{
		// public pages
		{name: "login: anonymous", path: "/login", want: guardDecision{}},
		{name: "signup: anonymous", path: "/signup", want: guardDecision{}},
		{name: "login: bad token is cleared", hasToken: true, path: "/login", want: guardDecision{ClearCookie: true}},
		{name: "login: student goes home", claims: student, hasToken: true, path: "/login", want: guardDecision{Redirect: "/student/dashboard"}},
		{name: "signup: admin goes home", claims: admin, hasToken: true, path: "/signup", want: guardDecision{Redirect: "/admin/dashboard"}},
		{name: "login: pending teacher parked", claims: pendingTeacher, hasToken: true, path: "/login", want: guardDecision{Redirect: "/pending-approval"}},

		// pending approval page
		{name: "pending: anonymous", path: "/pending-approval", want: guardDecision{Redirect: "/login"}},
		{name: "pending: bad token", hasToken: true, path: "/pending-approval", want: guardDecision{Redirect: "/login", ClearCookie: true}},
		{name: "pending: pending teacher stays", claims: pendingTeacher, hasToken: true, path: "/pending-approval", want: guardDecision{}},
		{name: "pending: approved teacher is served", claims: teacher, hasToken: true, path: "/pending-approval", want: guardDecision{}},
		{name: "pending: student is served", claims: student, hasToken: true, path: "/pending-approval", want: guardDecision{}},

		// portal pages
		{name: "portal: anonymous", path: "/student/dashboard", want: guardDecision{Redirect: "/login"}},
		{name: "portal: bad token", hasToken: true, path: "/admin/dashboard", want: guardDecision{Redirect: "/login", ClearCookie: true}},
		{name: "portal: own portal", claims: student, hasToken: true, path: "/student/dashboard", want: guardDecision{}},
		{name: "portal: admin on admin", claims: admin, hasToken: true, path: "/admin/dashboard", want: guardDecision{}},
		{name: "portal: student on teacher portal", claims: student, hasToken: true, path: "/teacher/dashboard", want: guardDecision{Redirect: "/student/dashboard"}},
		{name: "portal: teacher on admin portal", claims: teacher, hasToken: true, path: "/admin/dashboard", want: guardDecision{Redirect: "/teacher/dashboard"}},
		{name: "portal: pending teacher parked", claims: pendingTeacher, hasToken: true, path: "/teacher/dashboard", want: guardDecision{Redirect: "/pending-approval"}},
		{name: "portal: prefix only", claims: teacher, hasToken: true, path: "/student", want: guardDecision{Redirect: "/teacher/dashboard"}},

		// everything else still requires a session
		{name: "home: anonymous", path: "/", want: guardDecision{Redirect: "/login"}},
		{name: "home: bad token", hasToken: true, path: "/", want: guardDecision{Redirect: "/login", ClearCookie: true}},
		{name: "home: student", claims: student, hasToken: true, path: "/", want: guardDecision{}},
		{name: "home: pending teacher parked", claims: pendingTeacher, hasToken: true, path: "/", want: guardDecision{Redirect: "/pending-approval"}},
		{name: "unknown path: anonymous", path: "/studently", want: guardDecision{Redirect: "/login"}},
		{name: "unknown path: session is served", claims: teacher, hasToken: true, path: "/studently", want: guardDecision{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decideAccess(tt.claims, tt.hasToken, tt.path); got != tt.want {
				t.Errorf("decideAccess() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
