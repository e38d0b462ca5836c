package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"timeledger/internal/models"
	"timeledger/internal/repository"
)

const dateLayout = "2006-01-02"

type taskActivityRequest struct {
	TaskDate string          `json:"task_date" binding:"required"`
	Client   string          `json:"client"`
	Project  string          `json:"project"`
	Phase    string          `json:"phase"`
	Hours    decimal.Decimal `json:"hours"`
	Details  string          `json:"details"`
	Username string          `json:"username"`
}

// toModel resolves defaults against the caller. Only admins may write
// records for other users.
func (req *taskActivityRequest) toModel(c *gin.Context) (*models.TaskActivity, bool) {
	taskDate, err := time.Parse(dateLayout, req.TaskDate)
	if err != nil {
		badRequest(c, "task_date must be formatted as "+dateLayout)
		return nil, false
	}

	claims := identity(c)
	username := req.Username
	if username == "" {
		username = claims.Username
	}
	if !canAccess(claims, username) {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "cannot write records for another user"})
		return nil, false
	}

	if req.Hours.IsNegative() || req.Hours.GreaterThan(decimal.NewFromInt(24)) {
		badRequest(c, "hours must be between 0 and 24")
		return nil, false
	}

	return &models.TaskActivity{
		TaskDate: taskDate,
		Client:   req.Client,
		Project:  req.Project,
		Phase:    req.Phase,
		Hours:    req.Hours,
		Details:  req.Details,
		Username: username,
	}, true
}

// ListTasks handles GET /api/v1/tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	claims := identity(c)

	filter := repository.TaskActivityFilter{Username: c.Query("username")}
	if claims.Role != models.RoleAdmin {
		filter.Username = claims.Username
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			badRequest(c, "from must be formatted as "+dateLayout)
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			badRequest(c, "to must be formatted as "+dateLayout)
			return
		}
		filter.To = t
	}

	activities, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		h.respondRepoError(c, err, "list tasks")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: activities})
}

// CreateTask handles POST /api/v1/tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var req taskActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task_date is required")
		return
	}

	activity, ok := req.toModel(c)
	if !ok {
		return
	}

	if err := h.tasks.Create(c.Request.Context(), activity); err != nil {
		h.respondRepoError(c, err, "create task")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: activity})
}

// GetTask handles GET /api/v1/tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	activity, err := h.tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondRepoError(c, err, "get task")
		return
	}
	if !canAccess(identity(c), activity.Username) {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "not your record"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: activity})
}

// UpdateTask handles PUT /api/v1/tasks/:id
func (h *Handlers) UpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	existing, err := h.tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondRepoError(c, err, "update task")
		return
	}
	if !canAccess(identity(c), existing.Username) {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "not your record"})
		return
	}

	var req taskActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task_date is required")
		return
	}

	activity, ok := req.toModel(c)
	if !ok {
		return
	}
	activity.ID = id

	if err := h.tasks.Update(c.Request.Context(), activity); err != nil {
		h.respondRepoError(c, err, "update task")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: activity})
}

// DeleteTask handles DELETE /api/v1/tasks/:id
func (h *Handlers) DeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	existing, err := h.tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondRepoError(c, err, "delete task")
		return
	}
	if !canAccess(identity(c), existing.Username) {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "not your record"})
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		h.respondRepoError(c, err, "delete task")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}
