package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const authCookieName = "auth-token"

var (
	// appJWTConfig is the default JWT auth middleware config.
	// The session token travels in the auth cookie, never in a header.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		TokenLookup:   "cookie:" + authCookieName,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	appName            string
	jwtExpirationDelta time.Duration
	contextUserKey     = "user"
)

// Claims represents the session claims transmitted via the auth cookie.
// Role and Approved are snapshots taken at login; a change on the account
// shows up when the user next signs in.
type Claims struct {
	jwt.StandardClaims
	Name     string    `json:"name,omitempty"`
	Email    string    `json:"email,omitempty"`
	Role     user.Role `json:"role,omitempty"`
	Approved bool      `json:"approved"`
}

// ConfigureAuth primes token signing and verification with the app secrets
// and returns the JWT auth middleware.
func ConfigureAuth(conf *core.Config) echo.MiddlewareFunc {
	appName = conf.AppName
	jwtExpirationDelta = conf.Server.JWTExpirationDelta
	appJWTConfig.SigningKey = conf.SecretKey
	return middleware.JWTWithConfig(appJWTConfig)
}

func GetUserClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    appName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(jwtExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:     usr.Name,
		Email:    usr.Email,
		Role:     usr.Role,
		Approved: usr.Approved,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// VerifyToken parses and checks a token string; page guards use it
// to resolve the session without failing the request.
func VerifyToken(token string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != appJWTConfig.SigningMethod {
			return nil, errors.Errorf("unexpected signing method: %v", t.Method.Alg())
		}
		return appJWTConfig.SigningKey, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	return claims, nil
}

func authenticate(ctx echo.Context, email, pwd string, svc user.ServiceInterface) (*Claims, user.User, error) {
	usr, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, user.User{}, errAuthenticationFailed
		}
		return nil, user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, user.User{}, errAuthenticationFailed
	}
	if usr.IsTeacher() && !usr.Approved {
		return nil, user.User{}, errPendingApproval
	}
	usr, err = svc.SetLastLogin(ctx.Request().Context(), usr)
	if err != nil {
		return nil, user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return GetUserClaims(usr), usr, nil
}

func setAuthCookie(ctx echo.Context, conf *core.Config, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Domain:   conf.Cookie.Domain,
		MaxAge:   int(conf.Server.JWTExpirationDelta.Seconds()),
		Secure:   conf.Cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		Domain:   conf.Cookie.Domain,
		MaxAge:   -1,
		Secure:   conf.Cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// resolveSession reads and verifies the auth cookie without rejecting the
// request. hasToken is true whenever a cookie is present, even a bad one.
func resolveSession(ctx echo.Context) (claims *Claims, hasToken bool) {
	cookie, err := ctx.Cookie(authCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err = VerifyToken(cookie.Value)
	if err != nil {
		return nil, true
	}
	return claims, true
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.ServiceInterface) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
