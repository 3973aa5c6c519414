// internal/handlers/admin.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shoplite/backend/internal/services"
	"github.com/shoplite/backend/internal/utils"
)

// AdminHandler covers the back-office: dashboard, customer management,
// impersonation and the audit trail.
type AdminHandler struct {
	userService  *services.UserService
	orderService *services.OrderService
	authService  *services.AuthService
	auditService *services.AuditService
}

func NewAdminHandler(userService *services.UserService, orderService *services.OrderService, authService *services.AuthService, auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{
		userService:  userService,
		orderService: orderService,
		authService:  authService,
		auditService: auditService,
	}
}

// GET /dashboard/statistics
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.orderService.GetDashboardStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"statistics": stats})
}

// GET /users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(users, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.userService.AdminUpdateUser(targetID, actorID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "User")
			return
		}
		if strings.Contains(err.Error(), "already exists") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /users/:id/status
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.userService.SetUserStatus(targetID, actorID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// DELETE /users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	if err := h.userService.DeleteUser(targetID, actorID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "User removed"})
}

// GET /admin/audit-logs?resource_type=order&resource_id=<uuid>&limit=50
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	resourceType := c.Query("resource_type")
	if resourceType == "" {
		utils.BadRequestResponse(c, "resource_type is required", nil)
		return
	}

	resourceID, err := uuid.Parse(c.Query("resource_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid resource ID", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.auditService.ListForResource(resourceType, resourceID, limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"audit_logs": entries})
}

// POST /admin/users/:id/impersonate
func (h *AdminHandler) ImpersonateUser(c *gin.Context) {
	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	resp, err := h.authService.Impersonate(adminID, targetID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "User")
			return
		}
		if strings.Contains(err.Error(), "not authorized") || strings.Contains(err.Error(), "cannot impersonate") {
			utils.ForbiddenResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, resp)
}
