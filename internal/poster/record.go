package poster

import (
	"context"
	"sync"

	"github.com/elsisiem/muthaker-bot/internal/models"
)

// MemoryRecord keeps the athkar message ids in process memory. Used when
// no database is configured; a restart simply forgets the last messages,
// which costs at most one missed deletion.
type MemoryRecord struct {
	mu  sync.Mutex
	ids map[models.AthkarKind]int
}

func NewMemoryRecord() *MemoryRecord {
	return &MemoryRecord{ids: make(map[models.AthkarKind]int)}
}

func (r *MemoryRecord) Get(ctx context.Context, kind models.AthkarKind) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.ids[kind]
	return id, ok, nil
}

func (r *MemoryRecord) Set(ctx context.Context, kind models.AthkarKind, messageID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[kind] = messageID
	return nil
}

func (r *MemoryRecord) Clear(ctx context.Context, kind models.AthkarKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, kind)
	return nil
}
