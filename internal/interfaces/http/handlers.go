package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shiftwise/shiftwise-backend/internal/application/service"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	"github.com/shiftwise/shiftwise-backend/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// respondError maps domain errors to status codes. Validation failures are the
// caller's fault, missing documents are 404, and losing a response race or
// firing an impossible transition is a conflict.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrAlreadyResponded),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// CreatePetition handles POST /api/petitions
func (h *Handlers) CreatePetition(c *gin.Context) {
	var input service.CreatePetitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	id, err := h.services.Petitions.CreatePetition(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: gin.H{"id": id}})
}

// GetPetition handles GET /api/petitions/:id
func (h *Handlers) GetPetition(c *gin.Context) {
	petition, err := h.services.Petitions.GetPetition(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: petition})
}

type resolvePetitionRequest struct {
	GroupID           string  `json:"group_id" binding:"required"`
	ReplacementUserID *string `json:"replacement_user_id,omitempty"`
}

// ApprovePetition handles POST /api/petitions/:id/approve
func (h *Handlers) ApprovePetition(c *gin.Context) {
	var req resolvePetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	err := h.services.Petitions.ApprovePetition(c.Request.Context(), c.Param("id"), req.GroupID, req.ReplacementUserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"status": entity.PetitionStatusApproved}})
}

// RejectPetition handles POST /api/petitions/:id/reject
func (h *Handlers) RejectPetition(c *gin.Context) {
	var req resolvePetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	err := h.services.Petitions.RejectPetition(c.Request.Context(), c.Param("id"), req.GroupID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"status": entity.PetitionStatusRejected}})
}

// SuggestReplacement handles GET /api/petitions/:id/suggestion
func (h *Handlers) SuggestReplacement(c *gin.Context) {
	suggestion, err := h.services.Suggestions.SuggestReplacement(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: suggestion})
}

// CreateSubstitutionRequest handles POST /api/substitutions
func (h *Handlers) CreateSubstitutionRequest(c *gin.Context) {
	var input service.CreateSubstitutionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	id, err := h.services.Substitutions.CreateSubstitutionRequest(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: gin.H{"id": id}})
}

type respondSubstitutionRequest struct {
	NotificationID string `json:"notification_id" binding:"required"`
	PetitionID     string `json:"petition_id" binding:"required"`
	Response       string `json:"response" binding:"required"`
	UserID         string `json:"user_id" binding:"required"`
}

// RespondToSubstitutionRequest handles POST /api/substitutions/respond
func (h *Handlers) RespondToSubstitutionRequest(c *gin.Context) {
	var req respondSubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	status, err := h.services.Substitutions.RespondToSubstitutionRequest(
		c.Request.Context(), req.NotificationID, req.PetitionID, req.Response, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"status": status}})
}

// ListPendingSubstitutions handles GET /api/users/:id/substitutions
func (h *Handlers) ListPendingSubstitutions(c *gin.Context) {
	requests, err := h.services.Substitutions.ListPendingForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// GetPetitionSubstitution handles GET /api/petitions/:id/substitution
func (h *Handlers) GetPetitionSubstitution(c *gin.Context) {
	request, err := h.services.Substitutions.GetByPetitionID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: request})
}

// RegisterUser handles POST /api/users
func (h *Handlers) RegisterUser(c *gin.Context) {
	var input service.RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	user, err := h.services.Users.RegisterUser(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: user})
}

// GetUser handles GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.services.Users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: user})
}

type createGroupRequest struct {
	Name    string `json:"name" binding:"required"`
	AdminID string `json:"admin_id" binding:"required"`
}

// CreateGroup handles POST /api/groups
func (h *Handlers) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	group, err := h.services.Groups.CreateGroup(c.Request.Context(), req.Name, req.AdminID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: group})
}

// GetGroup handles GET /api/groups/:id
func (h *Handlers) GetGroup(c *gin.Context) {
	group, err := h.services.Groups.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: group})
}

type joinGroupRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
	UserID     string `json:"user_id" binding:"required"`
}

// JoinGroup handles POST /api/groups/join
func (h *Handlers) JoinGroup(c *gin.Context) {
	var req joinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	group, err := h.services.Groups.JoinGroup(c.Request.Context(), req.InviteCode, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: group})
}

// ListGroupMembers handles GET /api/groups/:id/members
func (h *Handlers) ListGroupMembers(c *gin.Context) {
	members, err := h.services.Groups.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: members})
}

// ListPendingPetitions handles GET /api/groups/:id/petitions
func (h *Handlers) ListPendingPetitions(c *gin.Context) {
	petitions, err := h.services.Petitions.ListPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: petitions})
}

// ListGroupHistory handles GET /api/groups/:id/history
func (h *Handlers) ListGroupHistory(c *gin.Context) {
	entries, err := h.services.Petitions.ListHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ExportGroupHistory handles GET /api/groups/:id/history/export
func (h *Handlers) ExportGroupHistory(c *gin.Context) {
	groupID := c.Param("id")
	file, err := h.services.Exports.ExportGroupHistory(c.Request.Context(), groupID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("historial-%s.xlsx", groupID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		h.logger.Error("Failed to write export", "error", err, "group_id", groupID)
	}
}

// ListUserHistory handles GET /api/users/:id/history
func (h *Handlers) ListUserHistory(c *gin.Context) {
	entries, err := h.services.Petitions.ListUserHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ListNotifications handles GET /api/users/:id/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	notifications, err := h.services.Notifications.ListForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.services.Notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}
