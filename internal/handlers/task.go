package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"taskflow/internal/auth"
	dom "taskflow/internal/domain"
	"taskflow/internal/dto"
	"taskflow/internal/home"

	"github.com/gin-gonic/gin"
)

// Controllers hands out the controller of a session.
type Controllers interface {
	Get(ctx context.Context, id home.Identity) *home.Controller
}

type TaskHandler struct {
	controllers Controllers
}

func NewTaskHandler(controllers Controllers) *TaskHandler {
	return &TaskHandler{controllers: controllers}
}

// List godoc
// @Summary      Task list with statistics
// @Tags         tasks
// @Produce      json
// @Param        filter  query     string  false  "all, completed, pending, high, medium, low"
// @Success      200     {object}  dto.HomeResponse
// @Failure      400     {object}  map[string]string
// @Failure      503     {object}  dto.HomeResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	filter, err := home.ParseFilter(c.Query("filter"))
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondHome(c, h.controller(c), filter)
}

// Reload godoc
// @Summary      Reload tasks from the backing store (retry after a failed load)
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  dto.HomeResponse
// @Failure      503  {object}  dto.HomeResponse
// @Router       /tasks/reload [post]
func (h *TaskHandler) Reload(c *gin.Context) {
	ctrl := h.controller(c)
	_ = ctrl.Load(c.Request.Context())
	h.respondHome(c, ctrl, home.FilterAll)
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.controller(c).Create(c.Request.Context(), req.Draft())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTaskResponse(t))
}

// Update godoc
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.controller(c).Update(c.Request.Context(), id, req.Patch())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(t))
}

// Toggle godoc
// @Summary      Flip a task's completion
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.controller(c).Toggle(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(t))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.controller(c).Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats godoc
// @Summary      Statistics summary
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  dto.StatsResponse
// @Failure      503  {object}  map[string]string
// @Router       /stats [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	snap := h.controller(c).Snapshot()
	if snap.State != home.StateReady {
		writeError(c, snapshotErr(snap))
		return
	}
	c.JSON(http.StatusOK, dto.NewStatsResponse(snap.Stats))
}

func (h *TaskHandler) controller(c *gin.Context) *home.Controller {
	return h.controllers.Get(c.Request.Context(), auth.IdentityFromContext(c))
}

func (h *TaskHandler) respondHome(c *gin.Context, ctrl *home.Controller, filter home.Filter) {
	snap := ctrl.Snapshot()
	resp := dto.HomeResponse{
		State:  string(snap.State),
		Filter: string(filter),
		Items:  dto.NewTaskResponses(ctrl.Tasks(filter)),
		Stats:  dto.NewStatsResponse(snap.Stats),
	}
	if snap.State != home.StateReady {
		resp.Error = "failed to load tasks, please try again later"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func snapshotErr(s home.Snapshot) error {
	if s.Err != nil {
		return s.Err
	}
	return home.ErrNotReady
}

// writeError maps the error classes to status codes. Storage details stay in
// the logs.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dom.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, dom.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, home.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "tasks are not loaded, reload and retry"})
	case errors.Is(err, dom.ErrStorageUnavailable), errors.Is(err, dom.ErrRemote):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context, name string) (string, bool) {
	id := strings.TrimSpace(c.Param(name))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return "", false
	}
	return id, true
}
