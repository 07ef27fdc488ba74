package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/user"
)

func TestUserAPI_signup(t *testing.T) {
	app := setup(t)

	createUser(t, "John Awe", "taken@test.cd", "s3cr3tpwd", user.RoleStudent, true)

	tests := []httpTest{
		{name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"this field is required","email":"this field is required","password":"this field is required","password_confirm":"this field is required","role":"this field is required"}`)},
		{name: "bad email", body: []byte(`{"name":"J","email":"lol","password":"s3cr3tpwd","password_confirm":"s3cr3tpwd","role":"student"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"email":"email must be a valid email address"}`)},
		{name: "short password", body: []byte(`{"name":"J","email":"j@test.cd","password":"lol","password_confirm":"lol","role":"student"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"password":"password must be at least 8 characters in length"}`)},
		{name: "password mismatch", body: []byte(`{"name":"J","email":"j@test.cd","password":"s3cr3tpwd","password_confirm":"s3cr3tpwe","role":"student"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"password_confirm":"password_confirm must be equal to Password"}`)},
		{name: "unknown role", body: []byte(`{"name":"J","email":"j@test.cd","password":"s3cr3tpwd","password_confirm":"s3cr3tpwd","role":"boss"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"role":"must be one of admin, teacher or student"}`)},
		{name: "admin role rejected", body: []byte(`{"name":"J","email":"j@test.cd","password":"s3cr3tpwd","password_confirm":"s3cr3tpwd","role":"admin"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"role":"role must be student or teacher"}`)},
		{name: "taken email", body: []byte(`{"name":"J","email":"taken@test.cd","password":"s3cr3tpwd","password_confirm":"s3cr3tpwd","role":"student"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"email":"a user with this email already exists"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/signup", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("student is approved right away", func(t *testing.T) {
		body := []byte(`{"name":"Sam Awe","email":"sam@test.cd","password":"s3cr3tpwd","password_confirm":"s3cr3tpwd","role":"student"}`)
		req, rec := newRequest(http.MethodPost, "/v1/auth/signup", body)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		assert.Equal(t, "sam@test.cd", usr.Email)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.True(t, usr.Approved)
		assert.Nil(t, authCookie(rec), "signup must not start a session")
	})

	t.Run("teacher starts unapproved and is notified", func(t *testing.T) {
		body := []byte(`{"name":"Jane Awe","email":"jane@test.cd","password":"s3cr3tpwd","password_confirm":"s3cr3tpwd","role":"teacher"}`)
		req, rec := newRequest(http.MethodPost, "/v1/auth/signup", body)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		assert.Equal(t, user.RoleTeacher, usr.Role)
		assert.False(t, usr.Approved)
		assert.Nil(t, authCookie(rec), "signup must not start a session")

		if assert.NotEmpty(t, mailMock.Messages) {
			msg := mailMock.Messages[len(mailMock.Messages)-1]
			assert.Equal(t, "Application received", msg.Subject)
			assert.Equal(t, "jane@test.cd", msg.To[0].Address)
		}
	})
}

func TestUserAPI_login(t *testing.T) {
	app := setup(t)

	student := createUser(t, "John Awe", "student@test.cd", "s3cr3tpwd", user.RoleStudent, true)
	createUser(t, "Jane Awe", "pending@test.cd", "s3cr3tpwd", user.RoleTeacher, false)

	tests := []httpTest{
		{name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"this field is required","password":"this field is required"}`)},
		{name: "unknown email", body: []byte(`{"email":"lol@test.cd","password":"s3cr3tpwd"}`),
			wantCode: http.StatusUnauthorized, wantData: []byte(`{"error":"invalid email or password"}`)},
		{name: "wrong password", body: []byte(`{"email":"student@test.cd","password":"lol"}`),
			wantCode: http.StatusUnauthorized, wantData: []byte(`{"error":"invalid email or password"}`)},
		{name: "pending teacher", body: []byte(`{"email":"pending@test.cd","password":"s3cr3tpwd"}`),
			wantCode: http.StatusForbidden, wantData: []byte(`{"error":"account pending approval"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
			assert.Nil(t, authCookie(rec))
		})
	}

	t.Run("successful login starts a session", func(t *testing.T) {
		body := []byte(`{"email":"student@test.cd","password":"s3cr3tpwd"}`)
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		cookie := authCookie(rec)
		if cookie == nil {
			t.Fatal("expected the auth cookie to be set")
		}
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Greater(t, cookie.MaxAge, 0)

		var resp struct {
			User       user.User `json:"user"`
			RedirectTo string    `json:"redirect_to"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		assert.Equal(t, student.ID, resp.User.ID)
		assert.Equal(t, "/student/dashboard", resp.RedirectTo)

		refreshed, err := usrRepo.GetUserByID(context.Background(), student.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		assert.False(t, refreshed.LastLogin.IsZero(), "lastLogin must be set")
	})
}

func TestUserAPI_logout(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodPost, "/v1/auth/logout")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := authCookie(rec)
	if cookie == nil {
		t.Fatal("expected the auth cookie to be cleared")
	}
	assert.Less(t, cookie.MaxAge, 0)
}

func TestUserAPI_me(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "John Awe", "student@test.cd", "s3cr3tpwd", user.RoleStudent, true)

	tests := []httpTest{
		{name: "anonymous", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "bad token", token: "lol", wantCode: http.StatusUnauthorized, wantData: []byte(`{"error":"invalid or expired jwt"}`)},
		{name: "me", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/auth/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestUserAPI_teacherApproval(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin@test.cd", "s3cr3tpwd", user.RoleAdmin, true)
	student := createUser(t, "John Awe", "student@test.cd", "s3cr3tpwd", user.RoleStudent, true)
	pending := createUser(t, "Jane Awe", "pending@test.cd", "s3cr3tpwd", user.RoleTeacher, false)
	rejected := createUser(t, "Jack Awe", "rejected@test.cd", "s3cr3tpwd", user.RoleTeacher, false)

	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{name: "pending list: anonymous", method: http.MethodGet, path: "/v1/admin/teachers/pending",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "pending list: wrong portal", method: http.MethodGet, path: "/v1/admin/teachers/pending", token: studentToken,
			wantCode: http.StatusUnauthorized, wantData: []byte(`{"error":"user not authenticated"}`)},
		{name: "pending list", method: http.MethodGet, path: "/v1/admin/teachers/pending", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, pending, rejected)},
		{name: "approval: empty body", method: http.MethodPost, path: "/v1/admin/teachers/approval", token: adminToken,
			body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"teacher_id":"this field is required","approve":"this field is required"}`)},
		{name: "approval: unknown id", method: http.MethodPost, path: "/v1/admin/teachers/approval", token: adminToken,
			body: []byte(`{"teacher_id":"lol","approve":true}`), wantCode: http.StatusNotFound,
			wantData: []byte(`{"error":"user not found"}`)},
		{name: "approval: target is not a teacher", method: http.MethodPost, path: "/v1/admin/teachers/approval", token: adminToken,
			body: marchallObj(t, map[string]interface{}{"teacher_id": student.ID, "approve": true}), wantCode: http.StatusNotFound,
			wantData: []byte(`{"error":"user not found"}`)},
		{name: "reject deletes the account", method: http.MethodPost, path: "/v1/admin/teachers/approval", token: adminToken,
			body: marchallObj(t, map[string]interface{}{"teacher_id": rejected.ID, "approve": false}), wantCode: http.StatusOK,
			wantData: []byte(`{"success":"teacher application rejected"}`)},
		{name: "rejecting twice is not found", method: http.MethodPost, path: "/v1/admin/teachers/approval", token: adminToken,
			body: marchallObj(t, map[string]interface{}{"teacher_id": rejected.ID, "approve": false}), wantCode: http.StatusNotFound,
			wantData: []byte(`{"error":"user not found"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("approve opens the teacher portal", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"teacher_id": pending.ID, "approve": true})
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/teachers/approval", adminToken, body)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		refreshed, err := usrRepo.GetUserByID(context.Background(), pending.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		assert.True(t, refreshed.Approved)

		if assert.NotEmpty(t, mailMock.Messages) {
			msg := mailMock.Messages[len(mailMock.Messages)-1]
			assert.Equal(t, "Application approved", msg.Subject)
		}

		// the rejected account is gone for good
		if _, err = usrRepo.GetUserByID(context.Background(), rejected.ID); err != user.ErrNotFound {
			t.Errorf("rejected teacher still exists; err = %v", err)
		}
	})
}

func TestUserAPI_adminListings(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin@test.cd", "s3cr3tpwd", user.RoleAdmin, true)
	teacher := createUser(t, "Jane Awe", "teacher@test.cd", "s3cr3tpwd", user.RoleTeacher, true)
	student1 := createUser(t, "John Awe", "student1@test.cd", "s3cr3tpwd", user.RoleStudent, true)
	student2 := createUser(t, "Sam Awe", "student2@test.cd", "s3cr3tpwd", user.RoleStudent, true)

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "teachers", method: http.MethodGet, path: "/v1/admin/teachers", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, teacher)},
		{name: "students", method: http.MethodGet, path: "/v1/admin/students", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, student1, student2)},
		{name: "teachers: teacher token", method: http.MethodGet, path: "/v1/admin/teachers", token: getToken(t, teacher),
			wantCode: http.StatusUnauthorized, wantData: []byte(`{"error":"user not authenticated"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
