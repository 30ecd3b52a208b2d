package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/elsisiem/muthaker-bot/internal/database"
	"github.com/elsisiem/muthaker-bot/internal/models"
)

// AthkarMessageRepository persists the last posted message id per athkar
// kind, so the replace lifecycle survives restarts.
type AthkarMessageRepository struct {
	db *database.DB
}

func NewAthkarMessageRepository(db *database.DB) *AthkarMessageRepository {
	return &AthkarMessageRepository{db: db}
}

func (r *AthkarMessageRepository) Get(ctx context.Context, kind models.AthkarKind) (int, bool, error) {
	var messageID int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT message_id FROM athkar_messages WHERE kind = $1`, string(kind),
	).Scan(&messageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return messageID, true, nil
}

func (r *AthkarMessageRepository) Set(ctx context.Context, kind models.AthkarKind, messageID int) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO athkar_messages (kind, message_id, posted_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (kind) DO UPDATE SET message_id = EXCLUDED.message_id, posted_at = NOW()`,
		string(kind), messageID,
	)
	return err
}

func (r *AthkarMessageRepository) Clear(ctx context.Context, kind models.AthkarKind) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM athkar_messages WHERE kind = $1`, string(kind),
	)
	return err
}
