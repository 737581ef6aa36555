package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todoapi/internal/domain"
	"todoapi/internal/domain/models"
	"todoapi/internal/http/respond"
	"todoapi/internal/query"
	"todoapi/internal/repositories"
	"todoapi/internal/services"
)

type TodoHandler struct {
	Todos  repositories.TodoRepository
	Export services.ExportService
	Em     respond.Emitter
}

// GET /api/v1/todos
func (h TodoHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	spec, err := query.Build(c.Request.URL.Query(), p.UserID)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	// Only an explicit page request distinguishes "past the end" from an
	// empty result set.
	if spec.PageRequested {
		total, err := h.Todos.Count(c.Request.Context(), spec)
		if err != nil {
			h.Em.Error(c, err)
			return
		}
		if spec.Offset >= total {
			h.Em.Error(c, domain.AppError{
				Msg:    "This page does not exist",
				Status: http.StatusNotFound,
				Code:   "PageOutOfRange",
			})
			return
		}
	}

	todos, err := h.Todos.List(c.Request.Context(), spec)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	views := make([]gin.H, 0, len(todos))
	for _, t := range todos {
		views = append(views, todoView(t, spec.Columns()))
	}
	h.Em.List(c, len(todos), gin.H{"todos": views})
}

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    int    `json:"priority"`
}

// POST /api/v1/todos
func (h TodoHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	var req createTodoRequest
	if !bindJSON(c, h.Em, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.Em.Error(c, domain.ValidationError{Field: "title", Msg: "Title is required"})
		return
	}

	todo, err := h.Todos.Create(c.Request.Context(), models.Todo{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		OwnerID:     p.UserID,
	})
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	h.Em.Data(c, http.StatusCreated, gin.H{"todo": todo})
}

// GET /api/v1/todos/:id
func (h TodoHandler) Get(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	todo, err := h.Todos.GetByID(c.Request.Context(), id, p.UserID)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	h.Em.Data(c, http.StatusOK, gin.H{"todo": todo})
}

// PATCH /api/v1/todos/:id
func (h TodoHandler) Update(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	var patch repositories.TodoPatch
	if !bindJSON(c, h.Em, &patch) {
		return
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		h.Em.Error(c, domain.ValidationError{Field: "title", Msg: "Title cannot be empty"})
		return
	}

	todo, err := h.Todos.Update(c.Request.Context(), id, p.UserID, patch)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	h.Em.Data(c, http.StatusOK, gin.H{"todo": todo})
}

// DELETE /api/v1/todos/:id
func (h TodoHandler) Delete(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	if err := h.Todos.Delete(c.Request.Context(), id, p.UserID); err != nil {
		h.Em.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /api/v1/export/todos.pdf
func (h TodoHandler) ExportPDF(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	pdf, filename, err := h.Export.TodoList(c.Request.Context(), p)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// todoView serializes only the projected columns.
func todoView(t models.Todo, cols []string) gin.H {
	view := gin.H{}
	for _, col := range cols {
		switch col {
		case "id":
			view["id"] = t.ID
		case "title":
			view["title"] = t.Title
		case "description":
			view["description"] = t.Description
		case "completed":
			view["completed"] = t.Completed
		case "priority":
			view["priority"] = t.Priority
		case "created_at":
			view["created_at"] = t.CreatedAt
		case "updated_at":
			view["updated_at"] = t.UpdatedAt
		}
	}
	return view
}
