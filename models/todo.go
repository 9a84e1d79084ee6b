package models

import "time"

// Todo là một công việc thuộc về đúng một người dùng
type Todo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	OwnerID   int64     `json:"-"`
	Owner     string    `json:"owner"` // username của chủ sở hữu
}

// TodoRequest là payload cho tạo mới và cập nhật toàn bộ
type TodoRequest struct {
	Title     string `json:"title" form:"title" validate:"required,max=200"`
	Completed bool   `json:"completed" form:"completed"`
}

// TodoPatch là payload cho cập nhật một phần
type TodoPatch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}
