package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/elsisiem/muthaker-bot/internal/database"
)

// The single bot_state row.
const botStateID = 1

// BotStateRepository persists the legacy rotation counter. Kept for
// compatibility with counter-based deployments; the anchor-based rotation
// never reads it.
type BotStateRepository struct {
	db *database.DB
}

func NewBotStateRepository(db *database.DB) *BotStateRepository {
	return &BotStateRepository{db: db}
}

func (r *BotStateRepository) GetQuranPage(ctx context.Context) (int, error) {
	var page int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT quran_page FROM bot_state WHERE id = $1`, botStateID,
	).Scan(&page)
	if errors.Is(err, pgx.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return page, nil
}

func (r *BotStateRepository) SetQuranPage(ctx context.Context, page int) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO bot_state (id, quran_page, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET quran_page = EXCLUDED.quran_page, updated_at = NOW()`,
		botStateID, page,
	)
	return err
}
