package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Priya8975/newsletter-subscription-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

// insertUser runs on the pool or inside a transaction.
func insertUser(ctx context.Context, q rowQuerier, username string) (*domain.User, error) {
	var u domain.User
	err := q.QueryRow(ctx, `
		INSERT INTO users (username)
		VALUES ($1)
		RETURNING user_id, username
	`, username).Scan(&u.UserID, &u.Username)
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, username FROM users WHERE user_id = $1
	`, userID).Scan(&u.UserID, &u.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}
