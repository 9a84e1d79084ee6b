package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/biosecret/go-todo/models"
)

type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetOrCreate trả về token hiện có của người dùng, hoặc tạo mới bằng newKey nếu chưa có.
// Hai lần đăng nhập đồng thời luôn nhận cùng một key nhờ UNIQUE(user_id).
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID int64, newKey func() (string, error)) (*models.AuthToken, error) {
	token, err := r.byUser(ctx, userID)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	key, err := newKey()
	if err != nil {
		return nil, fmt.Errorf("generate token key: %w", err)
	}

	token = &models.AuthToken{Key: key, UserID: userID}
	err = r.db.QueryRowContext(ctx,
		"INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING RETURNING created",
		key, userID,
	).Scan(&token.Created)
	if errors.Is(err, sql.ErrNoRows) {
		// một request khác đã tạo token trước
		return r.byUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) byUser(ctx context.Context, userID int64) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.QueryRowContext(ctx,
		"SELECT key, user_id, created FROM auth_tokens WHERE user_id = $1", userID,
	).Scan(&token.Key, &token.UserID, &token.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select token: %w", err)
	}
	return &token, nil
}

// Lookup tìm token đang hoạt động theo key, kèm username của chủ sở hữu
func (r *TokenRepository) Lookup(ctx context.Context, key string) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.QueryRowContext(ctx,
		`SELECT t.key, t.user_id, u.username, t.created
		FROM auth_tokens t JOIN users u ON u.id = t.user_id
		WHERE t.key = $1`, key,
	).Scan(&token.Key, &token.UserID, &token.Username, &token.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	return &token, nil
}

// Delete xóa token key của userID, trả về false nếu không có token nào bị xóa
func (r *TokenRepository) Delete(ctx context.Context, key string, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM auth_tokens WHERE key = $1 AND user_id = $2", key, userID)
	if err != nil {
		return false, fmt.Errorf("delete token: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
