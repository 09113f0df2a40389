package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Priya8975/newsletter-subscription-service/internal/domain"
)

// SeedDemoData inserts count demo newsletters and users when the newsletters
// table is empty. It reports whether anything was inserted.
func (s *PostgresStore) SeedDemoData(ctx context.Context, count int, today time.Time) (bool, error) {
	existing, err := s.CountNewsletters(ctx)
	if err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	date := today.Format(domain.PublicationDateLayout)
	for i := 0; i < count; i++ {
		_, err := insertNewsletter(ctx, tx, domain.Newsletter{
			Title:           fmt.Sprintf("Newsletter %d", i),
			Content:         fmt.Sprintf("Content of Newsletter %d", i),
			PublicationDate: date,
		})
		if err != nil {
			return false, fmt.Errorf("seeding newsletter %d: %w", i, err)
		}

		if _, err := insertUser(ctx, tx, fmt.Sprintf("User%d", i)); err != nil {
			return false, fmt.Errorf("seeding user %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}
	return true, nil
}
