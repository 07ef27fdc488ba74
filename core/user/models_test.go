package user

import "testing"

func TestRole(t *testing.T) {
	tests := []struct {
		role          Role
		valid         bool
		approved      bool
		dashboardPath string
	}{
		{role: RoleAdmin, valid: true, approved: true, dashboardPath: "/admin/dashboard"},
		{role: RoleTeacher, valid: true, approved: false, dashboardPath: "/teacher/dashboard"},
		{role: RoleStudent, valid: true, approved: true, dashboardPath: "/student/dashboard"},
		{role: Role("boss"), dashboardPath: "/login", approved: true},
		{role: Role(""), dashboardPath: "/login", approved: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.role.DefaultApproved(); got != tt.approved {
				t.Errorf("DefaultApproved() = %v, want %v", got, tt.approved)
			}
			if got := tt.role.DashboardPath(); got != tt.dashboardPath {
				t.Errorf("DashboardPath() = %v, want %v", got, tt.dashboardPath)
			}
		})
	}
}

func TestUser_password(t *testing.T) {
	var usr User
	if err := usr.SetPassword("s3cr3tpwd"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("s3cr3tpwd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("lol"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}
