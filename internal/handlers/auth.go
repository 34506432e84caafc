package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jobportal/apiserver/internal/services"
	"github.com/jobportal/apiserver/internal/store"
	"github.com/jobportal/apiserver/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Credential tokens are carried in an HTTP-only cookie and stay valid
// for seven days from issuance.
const (
	tokenCookieName = "token"
	tokenTTL        = 7 * 24 * time.Hour
)

const (
	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Token is not valid."
)

// tokenClaims are the JWT claims issued at login.
type tokenClaims struct {
	Email string     `json:"email"`
	Role  types.Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator resolves a request's credential token to an identity.
// It is a pure function of the token and the current user store; on
// success the loaded identity (credential fields never serialized) is
// attached to the request context.
type Authenticator struct {
	users  *services.UserService
	secret []byte
}

func NewAuthenticator(users *services.UserService, jwtSecret string) *Authenticator {
	return &Authenticator{users: users, secret: []byte(jwtSecret)}
}

// RequireAuth rejects requests without a valid token and attaches the
// resolved identity to the context for downstream handlers.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := credentialToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgNoToken)
			return
		}

		userID, err := parseTokenSubject(tokenString, a.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		user, err := a.users.GetByID(r.Context(), userID)
		if err != nil {
			// A token referencing a deleted account is as invalid as a
			// forged one.
			writeError(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), contextUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// credentialToken extracts the token from the cookie, falling back to
// an Authorization bearer header for non-browser clients.
func credentialToken(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(tokenCookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return cookie.Value, nil
	}

	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing credential token")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization header")
	}
	return token, nil
}

func issueToken(user types.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (int, error) {
	claims := tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, errors.New("invalid subject")
	}
	return userID, nil
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthHandler provides signup, login and logout endpoints.
type AuthHandler struct {
	users  *services.UserService
	secret []byte
	logger *zap.Logger
}

func NewAuthHandler(users *services.UserService, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		secret: []byte(jwtSecret),
		logger: logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, users *services.UserService, jwtSecret string, logger *zap.Logger) {
	handler := NewAuthHandler(users, jwtSecret, logger)

	r.Post("/signup", handler.Signup)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
}

// Signup registers a new student or company account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := req.validate(); len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	if _, err := h.users.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("signup lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("password hashing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	user := types.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         req.Role,
	}
	switch req.Role {
	case types.RoleStudent:
		user.Student = &types.StudentProfile{
			Gender: req.Gender,
			Skills: req.Skills,
		}
	case types.RoleCompany:
		user.Company = &types.CompanyProfile{
			CompanyName: req.CompanyName,
			Industry:    req.Industry,
		}
	}

	if _, err := h.users.Create(r.Context(), user); err != nil {
		// The email unique index is authoritative; a lost race lands here.
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "User registered successfully"})
}

// Login verifies credentials and sets the token cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "Please provide a valid email address")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("login lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during login")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := issueToken(user, h.secret, tokenTTL)
	if err != nil {
		h.logger.Error("token issuance failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during login")
		return
	}
	setAuthCookie(w, token)

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful!",
		User:    user,
	})
}

// Logout clears the token cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

type SignupRequest struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      types.Role `json:"role"`

	// Student-only fields.
	Gender string   `json:"gender,omitempty"`
	Skills []string `json:"skills,omitempty"`

	// Company-only fields.
	CompanyName string `json:"companyName,omitempty"`
	Industry    string `json:"industry,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
