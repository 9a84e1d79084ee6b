package handlers

import (
	"errors"
	"strconv"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// todo của người dùng khác cũng trả về lỗi này, không phải 403
var errTodoNotFound = utils.NotFoundError("No Task matches the given query.")

func todoID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errTodoNotFound
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return errTodoNotFound
	}
	return err
}

// HandleAllTodos lấy todos của người dùng hiện tại, mới nhất trước
// @Summary   List tasks
// @Tags      todos
// @Produce   json
// @Security  TokenAuth
// @Param     completed query bool false "Filter by completion"
// @Success   200 {array} models.Todo
// @Failure   401 {object} utils.APIError
// @Router    /todos/ [get]
func (h *Handler) HandleAllTodos(c *fiber.Ctx) error {
	var completed *bool
	if raw := c.Query("completed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.ValidationError("invalid input", map[string][]string{
				"completed": {"Must be a valid boolean."},
			})
		}
		completed = &v
	}

	todos, err := h.todos.List(c.UserContext(), middleware.UserID(c), completed)
	if err != nil {
		return err
	}

	owner := middleware.Username(c)
	for i := range todos {
		todos[i].Owner = owner
	}
	return c.Status(200).JSON(todos)
}

// HandleCreateTodo tạo mới một Todo, owner luôn là người gọi
// @Summary   Create a task
// @Tags      todos
// @Accept    json
// @Produce   json
// @Security  TokenAuth
// @Param     body body models.TodoRequest true "Task"
// @Success   201 {object} models.Todo
// @Failure   400 {object} utils.APIError
// @Router    /todos/ [post]
func (h *Handler) HandleCreateTodo(c *fiber.Ctx) error {
	var req models.TodoRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validateTodo(&req); err != nil {
		return err
	}

	todo := &models.Todo{
		Title:     req.Title,
		Completed: req.Completed,
		OwnerID:   middleware.UserID(c),
		Owner:     middleware.Username(c),
	}
	if err := h.todos.Create(c.UserContext(), todo); err != nil {
		return err
	}

	h.events.Publish(events.Event{Type: events.TodoCreated, OwnerID: todo.OwnerID, Todo: todo})
	return c.Status(fiber.StatusCreated).JSON(todo)
}

// HandleGetOneTodo lấy một Todo theo ID
// @Summary   Retrieve a task
// @Tags      todos
// @Produce   json
// @Security  TokenAuth
// @Param     id path int true "Task ID"
// @Success   200 {object} models.Todo
// @Failure   404 {object} utils.APIError
// @Router    /todos/{id}/ [get]
func (h *Handler) HandleGetOneTodo(c *fiber.Ctx) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	todo, err := h.todos.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return notFound(err)
	}

	todo.Owner = middleware.Username(c)
	return c.Status(200).JSON(todo)
}

// HandleUpdateTodo cập nhật toàn bộ một Todo
// @Summary   Replace a task
// @Tags      todos
// @Accept    json
// @Produce   json
// @Security  TokenAuth
// @Param     id   path int                true "Task ID"
// @Param     body body models.TodoRequest true "Task"
// @Success   200 {object} models.Todo
// @Failure   400 {object} utils.APIError
// @Failure   404 {object} utils.APIError
// @Router    /todos/{id}/ [put]
func (h *Handler) HandleUpdateTodo(c *fiber.Ctx) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	var req models.TodoRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validateTodo(&req); err != nil {
		return err
	}

	todo := &models.Todo{ID: id, Title: req.Title, Completed: req.Completed, OwnerID: middleware.UserID(c)}
	return h.saveTodo(c, todo)
}

// HandlePatchTodo cập nhật các field có trong body, giữ nguyên các field còn lại
// @Summary   Update a task partially
// @Tags      todos
// @Accept    json
// @Produce   json
// @Security  TokenAuth
// @Param     id   path int              true "Task ID"
// @Param     body body models.TodoPatch true "Fields to change"
// @Success   200 {object} models.Todo
// @Failure   400 {object} utils.APIError
// @Failure   404 {object} utils.APIError
// @Router    /todos/{id}/ [patch]
func (h *Handler) HandlePatchTodo(c *fiber.Ctx) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	var patch models.TodoPatch
	if err := bind(c, &patch); err != nil {
		return err
	}

	todo, err := h.todos.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return notFound(err)
	}

	req := models.TodoRequest{Title: todo.Title, Completed: todo.Completed}
	if patch.Title != nil {
		req.Title = *patch.Title
	}
	if patch.Completed != nil {
		req.Completed = *patch.Completed
	}
	if err := validateTodo(&req); err != nil {
		return err
	}

	todo.Title = req.Title
	todo.Completed = req.Completed
	return h.saveTodo(c, todo)
}

func (h *Handler) saveTodo(c *fiber.Ctx, todo *models.Todo) error {
	if err := h.todos.Update(c.UserContext(), todo); err != nil {
		return notFound(err)
	}

	todo.Owner = middleware.Username(c)
	h.events.Publish(events.Event{Type: events.TodoUpdated, OwnerID: todo.OwnerID, Todo: todo})
	return c.Status(200).JSON(todo)
}

// HandleDeleteTodo xóa một Todo
// @Summary   Delete a task
// @Tags      todos
// @Security  TokenAuth
// @Param     id path int true "Task ID"
// @Success   204
// @Failure   404 {object} utils.APIError
// @Router    /todos/{id}/ [delete]
func (h *Handler) HandleDeleteTodo(c *fiber.Ctx) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	ownerID := middleware.UserID(c)
	if err := h.todos.Delete(c.UserContext(), ownerID, id); err != nil {
		return notFound(err)
	}

	h.events.Publish(events.Event{Type: events.TodoDeleted, OwnerID: ownerID, TodoID: id})
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleClearCompleted xóa mọi Todo đã hoàn thành của người gọi.
// Body bị bỏ qua; số lượng đã xóa nằm trong header X-Cleared-Count.
// @Summary   Clear completed tasks
// @Tags      todos
// @Security  TokenAuth
// @Success   204
// @Header    204 {integer} X-Cleared-Count "Number of deleted tasks"
// @Router    /todos/clear_completed/ [post]
func (h *Handler) HandleClearCompleted(c *fiber.Ctx) error {
	ownerID := middleware.UserID(c)
	count, err := h.todos.ClearCompleted(c.UserContext(), ownerID)
	if err != nil {
		return err
	}

	log.Infof("cleared %d completed tasks for user %d", count, ownerID)
	h.events.Publish(events.Event{Type: events.TodoCleared, OwnerID: ownerID, Count: count})

	c.Set("X-Cleared-Count", strconv.FormatInt(count, 10))
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleTodoEvents mở luồng SSE các thay đổi todo của người gọi
// @Summary   Stream task changes
// @Tags      todos
// @Produce   text/event-stream
// @Security  TokenAuth
// @Param     token query string false "Token, for clients that cannot send headers"
// @Success   200
// @Router    /todos/events [get]
func (h *Handler) HandleTodoEvents(c *fiber.Ctx) error {
	return h.hub.Stream(c, middleware.UserID(c))
}
