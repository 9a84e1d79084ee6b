package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/biosecret/go-todo/models"
)

// TodoRepository: mọi truy vấn đều lọc theo owner_id
type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// List trả về todos của ownerID, mới nhất trước. completed != nil thì lọc theo trạng thái.
func (r *TodoRepository) List(ctx context.Context, ownerID int64, completed *bool) ([]models.Todo, error) {
	query := "SELECT id, title, completed, created_at, owner_id FROM todos WHERE owner_id = $1"
	args := []any{ownerID}
	if completed != nil {
		query += " AND completed = $2"
		args = append(args, *completed)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var todo models.Todo
		if err := rows.Scan(&todo.ID, &todo.Title, &todo.Completed, &todo.CreatedAt, &todo.OwnerID); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// Create chèn todo, gán ID và CreatedAt từ database
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO todos (title, completed, owner_id) VALUES ($1, $2, $3) RETURNING id, created_at",
		todo.Title, todo.Completed, todo.OwnerID,
	).Scan(&todo.ID, &todo.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) Get(ctx context.Context, ownerID, id int64) (*models.Todo, error) {
	var todo models.Todo
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, completed, created_at, owner_id FROM todos WHERE id = $1 AND owner_id = $2",
		id, ownerID,
	).Scan(&todo.ID, &todo.Title, &todo.Completed, &todo.CreatedAt, &todo.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select todo: %w", err)
	}
	return &todo, nil
}

// Update ghi title và completed; owner_id không bao giờ thay đổi
func (r *TodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	err := r.db.QueryRowContext(ctx,
		"UPDATE todos SET title = $1, completed = $2 WHERE id = $3 AND owner_id = $4 RETURNING created_at",
		todo.Title, todo.Completed, todo.ID, todo.OwnerID,
	).Scan(&todo.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM todos WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCompleted xóa mọi todo đã hoàn thành của ownerID trong một câu lệnh, trả về số lượng đã xóa
func (r *TodoRepository) ClearCompleted(ctx context.Context, ownerID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM todos WHERE owner_id = $1 AND completed = TRUE", ownerID)
	if err != nil {
		return 0, fmt.Errorf("clear completed todos: %w", err)
	}
	return res.RowsAffected()
}
