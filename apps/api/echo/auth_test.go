package echoapi_test

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
)

func TestTokenRoundTrip(t *testing.T) {
	setup(t)

	usr := createUser(t, "John Awe", "awe@test.cd", "s3cr3tpwd", user.RoleStudent, true)

	token := getToken(t, usr)
	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}

	assert.Equal(t, usr.ID, claims.Subject)
	assert.Equal(t, usr.Name, claims.Name)
	assert.Equal(t, usr.Email, claims.Email)
	assert.Equal(t, usr.Role, claims.Role)
	assert.True(t, claims.Approved)
}

func TestVerifyToken_tampered(t *testing.T) {
	setup(t)

	usr := createUser(t, "John Awe", "awe@test.cd", "s3cr3tpwd", user.RoleStudent, true)

	token := getToken(t, usr)
	if _, err := VerifyToken(token + "lol"); err == nil {
		t.Error("VerifyToken() accepted a tampered token")
	}
	if _, err := VerifyToken("lol"); err == nil {
		t.Error("VerifyToken() accepted garbage")
	}
}

func TestVerifyToken_expired(t *testing.T) {
	setup(t)

	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "someone",
			ExpiresAt: now.Add(-time.Minute).Unix(),
			IssuedAt:  now.Add(-time.Hour).Unix(),
		},
		Role: user.RoleStudent,
	}
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if _, err = VerifyToken(token); err == nil {
		t.Error("VerifyToken() accepted an expired token")
	}
}
