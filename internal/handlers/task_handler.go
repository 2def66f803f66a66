package handlers

import (
	"net/http"

	"go-print-erp/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var in services.TaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), actor, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var f services.TaskFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.tasks.List(c.Request.Context(), actor, f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.TaskUpdateInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := h.tasks.Update(c.Request.Context(), actor, id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PATCH /tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.TaskStatusInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := h.tasks.UpdateStatus(c.Request.Context(), actor, id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), actor, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "task deleted"})
}

type taskStatsQuery struct {
	EmployeeID uint `form:"employeeId"`
}

// Stats counts tasks per status. Employees only ever see their own.
func (h *TaskHandler) Stats(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var q taskStatsQuery
	if !bindQuery(c, &q) {
		return
	}
	if !actor.CanManage() {
		q.EmployeeID = actor.ID
	}
	stats, err := h.tasks.Stats(c.Request.Context(), q.EmployeeID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
