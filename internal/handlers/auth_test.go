// internal/handlers/auth_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shoplite/backend/internal/config"
	"github.com/shoplite/backend/internal/middleware"
	"github.com/shoplite/backend/internal/models"
	"github.com/shoplite/backend/internal/services"
	"github.com/shoplite/backend/internal/utils"
)

var handlerDBCounter int64

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// newAuthRouter wires the auth surface directly, without the rate
// limiters the full router installs, so sequential requests don't 429.
func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlerdb%d?mode=memory&cache=shared", atomic.AddInt64(&handlerDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Review{},
		&models.Order{},
		&models.OrderItem{},
		&models.AuditLog{},
	))

	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "handler-test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	auditService := services.NewAuditService(db)
	authService := services.NewAuthService(db, cfg, auditService)
	userService := services.NewUserService(db, auditService)
	orderService := services.NewOrderService(db, auditService, nil)

	authHandler := NewAuthHandler(authService)
	adminHandler := NewAdminHandler(userService, orderService, authService, auditService)

	r := gin.New()
	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
			auth.POST("/impersonation/exit", middleware.AuthRequired(), authHandler.ExitImpersonation)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("/users/:id/impersonate", adminHandler.ImpersonateUser)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope apiEnvelope
	if w.Body.Len() > 0 {
		json.Unmarshal(w.Body.Bytes(), &envelope)
	}

	return w, envelope
}

func seedHandlerUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: "Handler",
		LastName:  "Test",
		Email:     email,
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, user.SetPassword("Secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRegisterLoginAndMe(t *testing.T) {
	r, _ := newAuthRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/v1/auth/register", "", gin.H{
		"first_name": "Helen",
		"last_name":  "Keller",
		"email":      "helen@example.com",
		"password":   "Radcliffe1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	var registered services.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &registered))
	assert.NotEmpty(t, registered.AccessToken)

	// Duplicate email conflicts.
	w, _ = doJSON(t, r, http.MethodPost, "/v1/auth/register", "", gin.H{
		"first_name": "Helen",
		"last_name":  "Again",
		"email":      "helen@example.com",
		"password":   "Radcliffe1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", gin.H{
		"email":    "helen@example.com",
		"password": "Radcliffe1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login services.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))

	w, _ = doJSON(t, r, http.MethodGet, "/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/v1/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		User    models.User `json:"user"`
		ActorID string      `json:"actor_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "helen@example.com", me.User.Email)
	assert.Empty(t, me.ActorID)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	r, db := newAuthRouter(t)
	seedHandlerUser(t, db, "ivy@example.com", models.UserRoleCustomer)

	w, _ := doJSON(t, r, http.MethodPost, "/v1/auth/login", "", gin.H{
		"email":    "ivy@example.com",
		"password": "WrongPass1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImpersonationFlow(t *testing.T) {
	r, db := newAuthRouter(t)

	admin := seedHandlerUser(t, db, "admin@example.com", models.UserRoleAdmin)
	customer := seedHandlerUser(t, db, "customer@example.com", models.UserRoleCustomer)

	adminToken, err := utils.GenerateJWT(admin.ID, admin.Email, string(admin.Role), 1)
	require.NoError(t, err)
	customerToken, err := utils.GenerateJWT(customer.ID, customer.Email, string(customer.Role), 1)
	require.NoError(t, err)

	// Customers cannot reach the impersonation endpoint.
	w, _ := doJSON(t, r, http.MethodPost, "/v1/admin/users/"+admin.ID.String()+"/impersonate", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins cannot impersonate other admins.
	w, _ = doJSON(t, r, http.MethodPost, "/v1/admin/users/"+admin.ID.String()+"/impersonate", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/v1/admin/users/"+customer.ID.String()+"/impersonate", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var impersonated services.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &impersonated))
	assert.Equal(t, customer.ID, impersonated.User.ID)
	require.NotNil(t, impersonated.Actor)
	assert.Equal(t, admin.ID, impersonated.Actor.ID)
	assert.Empty(t, impersonated.RefreshToken)

	// The impersonated token reads as the customer with the admin visible.
	w, env = doJSON(t, r, http.MethodGet, "/v1/auth/me", impersonated.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		User    models.User `json:"user"`
		ActorID string      `json:"actor_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, customer.Email, me.User.Email)
	assert.Equal(t, admin.ID.String(), me.ActorID)

	// Exiting hands back an admin session without the actor claim.
	w, env = doJSON(t, r, http.MethodPost, "/v1/auth/impersonation/exit", impersonated.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var exited services.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &exited))
	assert.Equal(t, admin.ID, exited.User.ID)

	claims, err := utils.ValidateJWT(exited.AccessToken)
	require.NoError(t, err)
	assert.Empty(t, claims.ActorID)

	// Exit on a plain session is rejected.
	w, _ = doJSON(t, r, http.MethodPost, "/v1/auth/impersonation/exit", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditTrailEndpoint(t *testing.T) {
	r, db := newAuthRouter(t)

	admin := seedHandlerUser(t, db, "admin@example.com", models.UserRoleAdmin)
	customer := seedHandlerUser(t, db, "customer@example.com", models.UserRoleCustomer)

	adminToken, err := utils.GenerateJWT(admin.ID, admin.Email, string(admin.Role), 1)
	require.NoError(t, err)
	customerToken, err := utils.GenerateJWT(customer.ID, customer.Email, string(customer.Role), 1)
	require.NoError(t, err)

	// Entering and leaving an impersonated session leaves a trail on the
	// target user.
	w, env := doJSON(t, r, http.MethodPost, "/v1/admin/users/"+customer.ID.String()+"/impersonate", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var impersonated services.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &impersonated))

	w, _ = doJSON(t, r, http.MethodPost, "/v1/auth/impersonation/exit", impersonated.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodGet,
		"/v1/admin/audit-logs?resource_type=user&resource_id="+customer.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var trail struct {
		AuditLogs []models.AuditLog `json:"audit_logs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &trail))
	require.Len(t, trail.AuditLogs, 2)
	for _, entry := range trail.AuditLogs {
		require.NotNil(t, entry.UserID)
		assert.Equal(t, admin.ID, *entry.UserID)
	}

	// Missing filters and non-admin callers are rejected.
	w, _ = doJSON(t, r, http.MethodGet, "/v1/admin/audit-logs", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodGet,
		"/v1/admin/audit-logs?resource_type=user&resource_id="+customer.ID.String(), customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
