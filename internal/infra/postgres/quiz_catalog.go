package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"quiz-intake-service/internal/domain"
)

// NewBunDB opens a bun handle over the pgdriver connector.
func NewBunDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID        string      `bun:"id,pk"`
	Data      domain.Quiz `bun:"data,type:jsonb"`
	CreatedAt time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// QuizCatalog stores operator-authored quizzes in the quizzes table.
type QuizCatalog struct {
	db *bun.DB
}

func NewQuizCatalog(db *bun.DB) *QuizCatalog {
	return &QuizCatalog{db: db}
}

func (c *QuizCatalog) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	row := quizRow{ID: quiz.ID, Data: quiz, CreatedAt: quiz.CreatedAt}
	_, err := c.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save quiz %s: %w", quiz.ID, err)
	}
	return nil
}

func (c *QuizCatalog) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	if err := c.db.NewSelect().Model(&rows).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(rows))
	for _, row := range rows {
		quiz := row.Data
		quiz.ID = row.ID
		out = append(out, quiz)
	}
	return out, nil
}
