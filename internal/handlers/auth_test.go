package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard-api/internal/constants"
	"github.com/taskboard/taskboard-api/internal/database"
	"github.com/taskboard/taskboard-api/internal/dto"
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/notify"
	"github.com/taskboard/taskboard-api/internal/repository"
	"github.com/taskboard/taskboard-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db                *gorm.DB
	handler           *AuthHandler
	authService       *services.AuthService
	invitationService *services.InvitationService
	recorder          *recordingMailer
	dispatcher        *notify.Dispatcher
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Comment{},
		&models.Invitation{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	recorder := &recordingMailer{}
	dispatcher := notify.NewDispatcher(recorder)

	userRepo := repository.NewUserRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	invitationService := services.NewInvitationService(invitationRepo, dispatcher, "http://localhost:3000")
	verifier := services.NewBcryptVerifier(userRepo)
	authService := services.NewAuthService(userRepo, invitationService, verifier, dispatcher, "http://localhost:3000", "alerts@example.com")
	handler := NewAuthHandler(authService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		dispatcher.Close()
		sqlDB.Close()
	})

	return authTestEnv{
		db:                db,
		handler:           handler,
		authService:       authService,
		invitationService: invitationService,
		recorder:          recorder,
		dispatcher:        dispatcher,
	}
}

func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionName, store))
	return r
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := newSessionRouter()
	r.POST("/api/auth/signup", env.handler.Signup)

	payload := map[string]string{
		"email":     "newuser@example.com",
		"password":  "supersecret",
		"full_name": "New User",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, payload["email"], response.Email)
	require.Equal(t, models.RoleEmployee, response.Role)
	require.Equal(t, models.UserStatusActive, response.Status)
}

func TestAuthHandler_Signup_AdoptsInvitedRole(t *testing.T) {
	env := setupAuthTestEnv(t)

	inviter := &models.User{Email: "boss@example.com", FullName: "Boss", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, env.db.Create(inviter).Error)

	_, err := env.invitationService.Invite(services.InviteInput{
		Email:     "invited@example.com",
		InviterID: inviter.ID,
		Role:      models.RoleAdmin,
	})
	require.NoError(t, err)

	user, err := env.authService.Signup(services.SignupInput{
		Email:    "invited@example.com",
		Password: "supersecret",
		FullName: "Invited User",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, user.Role)

	inv, err := env.invitationService.Accept("invited@example.com", user.ID)
	require.NoError(t, err)
	require.Nil(t, inv, "invitation should already be consumed")

	var stored models.Invitation
	require.NoError(t, env.db.Where("email = ?", "invited@example.com").First(&stored).Error)
	require.Equal(t, models.InvitationAccepted, stored.Status)
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Email:    "dup@example.com",
		Password: "supersecret",
		FullName: "First",
	})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/signup", env.handler.Signup)

	body, _ := json.Marshal(map[string]string{
		"email":     "dup@example.com",
		"password":  "supersecret",
		"full_name": "Second",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Email:    "existing@example.com",
		Password: "supersecret",
		FullName: "Existing User",
	})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/login", env.handler.Login)

	payload := map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, payload["email"], response.Email)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Email:    "existing@example.com",
		Password: "supersecret",
		FullName: "Existing User",
	})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/login", env.handler.Login)

	body, _ := json.Marshal(map[string]string{
		"email":    "existing@example.com",
		"password": "wrong",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_ActivatesInvitedUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.ProvisionInvited(services.ProvisionInput{
		Email:    "provisioned@example.com",
		Password: "supersecret",
		FullName: "Provisioned User",
		Role:     models.RoleEmployee,
	})
	require.NoError(t, err)
	require.Equal(t, models.UserStatusInvited, user.Status)

	logged, err := env.authService.Login(services.LoginInput{
		Email:    "provisioned@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, models.UserStatusActive, logged.Status)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Signup(services.SignupInput{
		Email:    "current@example.com",
		Password: "supersecret",
		FullName: "Current User",
	})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyCurrentUser, *user)

	env.handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.Email, response.Email)
}
