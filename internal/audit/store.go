package audit

import (
	"context"
	"log/slog"

	"github.com/neexbeast/travel-planner/internal/travel"
)

// Store decorates a HistoryStore so every successful Append is also published.
// A publish failure is logged only; the record is already durable.
type Store struct {
	travel.HistoryStore
	pub *Publisher
	log *slog.Logger
}

// NewStore wraps inner with publication through pub.
func NewStore(inner travel.HistoryStore, pub *Publisher, log *slog.Logger) *Store {
	return &Store{HistoryStore: inner, pub: pub, log: log}
}

// Append stores rec in the wrapped store, then publishes it with its new id.
func (s *Store) Append(ctx context.Context, rec travel.HistoryRecord) (int64, error) {
	id, err := s.HistoryStore.Append(ctx, rec)
	if err != nil {
		return 0, err
	}

	rec.ID = id
	if err := s.pub.Publish(rec); err != nil {
		s.log.Warn("audit publish failed", "history_id", id, "err", err)
	}

	return id, nil
}
