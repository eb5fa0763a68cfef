package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/glog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/util"
)

const tokenTTL = 8 * time.Hour

type AuthService struct {
	hmac []byte
	now  func() time.Time
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{hmac: []byte(secret), now: time.Now}
}

type Claims struct {
	Role string `json:"role"` // "admin", "teacher" or "student"
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := a.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "mindengage-quiz",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return c, nil
}

// Credentials decides which role, if any, a username/password pair maps to.
type Credentials struct {
	AdminUser     string
	AdminPassHash string // bcrypt
	// DevLogin accepts username == password for teacher and student roles.
	DevLogin bool
}

func (c Credentials) check(username, password, role string) (string, bool) {
	if c.AdminUser != "" && username == c.AdminUser {
		if bcrypt.CompareHashAndPassword([]byte(c.AdminPassHash), []byte(password)) != nil {
			return "", false
		}
		return "admin", true
	}
	if c.DevLogin && username != "" && username == password && (role == "teacher" || role == "student") {
		return role, true
	}
	return "", false
}

// POST /auth/login  { "username": "...", "password": "...", "role": "teacher|student" }
func LoginHandler(a *AuthService, creds Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.ReturnHTTPMessage(w, r, http.StatusBadRequest, "badrequest", "bad json")
			return
		}
		role, ok := creds.check(req.Username, req.Password, req.Role)
		if !ok {
			glog.V(2).Infof("login rejected for %q", req.Username)
			util.ReturnHTTPMessage(w, r, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		tok, err := a.IssueJWT(req.Username, role)
		if err != nil {
			glog.Errorf("issue token for %s: %v", req.Username, err)
			util.ReturnHTTPMessage(w, r, http.StatusInternalServerError, "error", "issue token")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}

// JWTMiddleware verifies the bearer token and places its subject and role in
// the request context for rbac checks and handlers.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				util.ReturnHTTPMessage(w, r, http.StatusUnauthorized, "unauthorized", "missing bearer")
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				glog.V(4).Infof("bad token: %v", err)
				util.ReturnHTTPMessage(w, r, http.StatusUnauthorized, "unauthorized", "bad token")
				return
			}
			ctx := rbac.WithSubject(rbac.WithRole(r.Context(), c.Role), c.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
