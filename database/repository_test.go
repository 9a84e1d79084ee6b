package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/biosecret/go-todo/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		conn.Close()
	})
	return conn, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestUserRepositoryCreate(t *testing.T) {
	t.Run("assigns id", func(t *testing.T) {
		conn, mock := newMock(t)
		now := time.Now()
		mock.ExpectQuery(q("INSERT INTO users (username, email, password)")).
			WithArgs("alice", "alice@example.com", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id", "date_joined"}).AddRow(int64(7), now))

		user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
		if err := NewUserRepository(conn).Create(context.Background(), user); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != 7 {
			t.Errorf("ID: got %d, want 7", user.ID)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectQuery(q("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := NewUserRepository(conn).Create(context.Background(), &models.User{Username: "alice"})
		if !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}
	})
}

func TestUserRepositoryGetByUsernameMissing(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE username = $1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepository(conn).GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepositoryGetOrCreate(t *testing.T) {
	t.Run("returns existing token without generating", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectQuery(q("SELECT key, user_id, created FROM auth_tokens WHERE user_id = $1")).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"key", "user_id", "created"}).AddRow("existing", int64(1), time.Now()))

		token, err := NewTokenRepository(conn).GetOrCreate(context.Background(), 1, func() (string, error) {
			t.Fatal("newKey should not be called")
			return "", nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.Key != "existing" {
			t.Errorf("Key: got %q, want existing", token.Key)
		}
	})

	t.Run("creates when missing", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectQuery(q("FROM auth_tokens WHERE user_id = $1")).
			WithArgs(int64(1)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(q("INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING")).
			WithArgs("fresh", int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"created"}).AddRow(time.Now()))

		token, err := NewTokenRepository(conn).GetOrCreate(context.Background(), 1, func() (string, error) {
			return "fresh", nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.Key != "fresh" || token.UserID != 1 {
			t.Errorf("got %+v", token)
		}
	})

	t.Run("concurrent insert rereads", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectQuery(q("FROM auth_tokens WHERE user_id = $1")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(q("INSERT INTO auth_tokens")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(q("FROM auth_tokens WHERE user_id = $1")).
			WillReturnRows(sqlmock.NewRows([]string{"key", "user_id", "created"}).AddRow("winner", int64(1), time.Now()))

		token, err := NewTokenRepository(conn).GetOrCreate(context.Background(), 1, func() (string, error) {
			return "loser", nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.Key != "winner" {
			t.Errorf("Key: got %q, want winner", token.Key)
		}
	})
}

func TestTokenRepositoryDelete(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM auth_tokens WHERE key = $1 AND user_id = $2")).
		WithArgs("k", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM auth_tokens")).
		WithArgs("k", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTokenRepository(conn)
	deleted, err := repo.Delete(context.Background(), "k", 3)
	if err != nil || !deleted {
		t.Fatalf("first delete: got %v, %v", deleted, err)
	}
	deleted, err = repo.Delete(context.Background(), "k", 3)
	if err != nil || deleted {
		t.Fatalf("second delete: got %v, %v", deleted, err)
	}
}

func TestTodoRepositoryListScopedToOwner(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(q("FROM todos WHERE owner_id = $1 ORDER BY created_at DESC, id DESC")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "completed", "created_at", "owner_id"}).
			AddRow(int64(5), "newer", false, now, int64(2)).
			AddRow(int64(4), "older", true, now.Add(-time.Hour), int64(2)))

	todos, err := NewTodoRepository(conn).List(context.Background(), 2, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(todos) != 2 || todos[0].Title != "newer" {
		t.Errorf("got %+v", todos)
	}
}

func TestTodoRepositoryListCompletedFilter(t *testing.T) {
	conn, mock := newMock(t)
	done := true
	mock.ExpectQuery(q("WHERE owner_id = $1 AND completed = $2")).
		WithArgs(int64(2), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "completed", "created_at", "owner_id"}))

	todos, err := NewTodoRepository(conn).List(context.Background(), 2, &done)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if todos == nil || len(todos) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", todos)
	}
}

func TestTodoRepositoryNotFound(t *testing.T) {
	tests := []struct {
		name string
		run  func(*TodoRepository, sqlmock.Sqlmock) error
	}{
		{"get", func(r *TodoRepository, m sqlmock.Sqlmock) error {
			m.ExpectQuery(q("WHERE id = $1 AND owner_id = $2")).WithArgs(int64(9), int64(1)).WillReturnError(sql.ErrNoRows)
			_, err := r.Get(context.Background(), 1, 9)
			return err
		}},
		{"update", func(r *TodoRepository, m sqlmock.Sqlmock) error {
			m.ExpectQuery(q("UPDATE todos SET title = $1, completed = $2 WHERE id = $3 AND owner_id = $4")).
				WithArgs("x", true, int64(9), int64(1)).WillReturnError(sql.ErrNoRows)
			return r.Update(context.Background(), &models.Todo{ID: 9, OwnerID: 1, Title: "x", Completed: true})
		}},
		{"delete", func(r *TodoRepository, m sqlmock.Sqlmock) error {
			m.ExpectExec(q("DELETE FROM todos WHERE id = $1 AND owner_id = $2")).WithArgs(int64(9), int64(1)).
				WillReturnResult(sqlmock.NewResult(0, 0))
			return r.Delete(context.Background(), 1, 9)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newMock(t)
			err := tt.run(NewTodoRepository(conn), mock)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestTodoRepositoryClearCompleted(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM todos WHERE owner_id = $1 AND completed = TRUE")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := NewTodoRepository(conn).ClearCompleted(context.Background(), 4)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 3 {
		t.Errorf("count: got %d, want 3", count)
	}
}

func TestCreateTables(t *testing.T) {
	conn, mock := newMock(t)
	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	if err := CreateTables(context.Background(), conn); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
