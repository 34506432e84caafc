package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobportal/apiserver/internal/services"
	"github.com/jobportal/apiserver/internal/store"
	"github.com/jobportal/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"

type fakeUserRepo struct {
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]types.User{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) SetProfilePicture(_ context.Context, id int, picture string) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.ProfilePicture = picture
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) SetResumeKey(_ context.Context, id int, key string) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if user.Student != nil {
		// Copy before mutating: callers hold snapshots that share the
		// Student pointer, and the real store never mutates those.
		student := *user.Student
		student.ResumeKey = key
		user.Student = &student
	}
	f.users[id] = user
	return nil
}

func newAuthRouter(t *testing.T) (*chi.Mux, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	users := services.NewUserService(repo)

	router := chi.NewRouter()
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, users, testJWTSecret, zap.NewNop())
	})
	return router, repo
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func studentSignup() SignupRequest {
	return SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "secret123",
		Role:      types.RoleStudent,
		Gender:    "female",
		Skills:    []string{"go", "sql"},
	}
}

func TestSignupStudent(t *testing.T) {
	router, repo := newAuthRouter(t)

	rec := postJSON(t, router, "/api/auth/signup", studentSignup())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User registered successfully", resp.Message)

	user, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.Student)
	assert.Equal(t, []string{"go", "sql"}, user.Student.Skills)
	assert.Equal(t, types.DefaultProfilePicture, user.ProfilePicture)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestSignupValidation(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := studentSignup()
	req.FirstName = "Al"
	req.Email = "not-an-email"
	req.Skills = nil

	rec := postJSON(t, router, "/api/auth/signup", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Contains(t, resp.Errors, "First name must be at least 3 characters long")
	assert.Contains(t, resp.Errors, "Please provide a valid email address")
	assert.Contains(t, resp.Errors, "At least one skill is required")
}

func TestSignupCompanyRequiresCompanyFields(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := postJSON(t, router, "/api/auth/signup", SignupRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Password:  "secret123",
		Role:      types.RoleCompany,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "Company name must be at least 2 characters long")
	assert.Contains(t, resp.Errors, "Industry must be at least 2 characters long")
}

func TestSignupDuplicateEmail(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := postJSON(t, router, "/api/auth/signup", studentSignup())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/api/auth/signup", studentSignup())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User already exists", resp.Message)
}

func TestLoginSetsCookie(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := postJSON(t, router, "/api/auth/signup", studentSignup())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "ada@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful!", resp.Message)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokenCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := postJSON(t, router, "/api/auth/signup", studentSignup())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid email or password", resp.Message)
}

func TestLoginUnknownEmail(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid email or password", resp.Message)
}

func TestTokenRoundTrip(t *testing.T) {
	user := types.User{ID: 42, Email: "ada@example.com", Role: types.RoleStudent}

	token, err := issueToken(user, []byte(testJWTSecret), time.Hour)
	require.NoError(t, err)

	subject, err := parseTokenSubject(token, []byte(testJWTSecret))
	require.NoError(t, err)
	assert.Equal(t, 42, subject)

	_, err = parseTokenSubject(token, []byte("other-secret"))
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	user := types.User{ID: 42, Email: "ada@example.com", Role: types.RoleStudent}

	token, err := issueToken(user, []byte(testJWTSecret), -time.Hour)
	require.NoError(t, err)

	_, err = parseTokenSubject(token, []byte(testJWTSecret))
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	repo := newFakeUserRepo()
	users := services.NewUserService(repo)
	stored, err := users.Create(context.Background(), types.User{
		Email: "ada@example.com",
		Role:  types.RoleStudent,
		Student: &types.StudentProfile{
			Gender: "female",
			Skills: []string{"go"},
		},
	})
	require.NoError(t, err)

	authenticator := NewAuthenticator(users, testJWTSecret)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(authenticator.RequireAuth)
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			user, ok := userFromContext(r.Context())
			require.True(t, ok)
			writeJSON(w, http.StatusOK, ProfileResponse{Message: "Profile data", User: user})
		})
	})

	t.Run("no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	token, err := issueToken(stored, []byte(testJWTSecret), time.Hour)
	require.NoError(t, err)

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, stored.ID, resp.User.ID)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("deleted account", func(t *testing.T) {
		delete(repo.users, stored.ID)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
