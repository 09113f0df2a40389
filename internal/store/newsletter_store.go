package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Priya8975/newsletter-subscription-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

func insertNewsletter(ctx context.Context, q rowQuerier, n domain.Newsletter) (*domain.Newsletter, error) {
	var out domain.Newsletter
	err := q.QueryRow(ctx, `
		INSERT INTO newsletters (title, content, publication_date)
		VALUES ($1, $2, $3)
		RETURNING newsletter_id, title, content, publication_date
	`, n.Title, n.Content, n.PublicationDate).Scan(
		&out.NewsletterID, &out.Title, &out.Content, &out.PublicationDate,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting newsletter: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) GetNewsletter(ctx context.Context, newsletterID int64) (*domain.Newsletter, error) {
	var n domain.Newsletter
	err := s.pool.QueryRow(ctx, `
		SELECT newsletter_id, title, content, publication_date
		FROM newsletters WHERE newsletter_id = $1
	`, newsletterID).Scan(&n.NewsletterID, &n.Title, &n.Content, &n.PublicationDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying newsletter: %w", err)
	}
	return &n, nil
}

func (s *PostgresStore) ListNewsletters(ctx context.Context) ([]domain.Newsletter, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT newsletter_id, title, content, publication_date
		FROM newsletters
		ORDER BY newsletter_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying newsletters: %w", err)
	}
	defer rows.Close()

	newsletters := []domain.Newsletter{}
	for rows.Next() {
		var n domain.Newsletter
		if err := rows.Scan(&n.NewsletterID, &n.Title, &n.Content, &n.PublicationDate); err != nil {
			return nil, fmt.Errorf("scanning newsletter: %w", err)
		}
		newsletters = append(newsletters, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating newsletters: %w", err)
	}

	return newsletters, nil
}

// CountNewsletters returns the number of stored newsletters.
func (s *PostgresStore) CountNewsletters(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM newsletters`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting newsletters: %w", err)
	}
	return n, nil
}
