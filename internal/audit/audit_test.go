package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/travel-planner/internal/audit"
	"github.com/neexbeast/travel-planner/internal/storage"
	"github.com/neexbeast/travel-planner/internal/travel"
)

func sampleRecord() travel.HistoryRecord {
	temp := 18.5
	return travel.HistoryRecord{
		UserCity:        "Toronto",
		DestinationCity: "Paris",
		TemperatureC:    &temp,
		CurrencySummary: "1 CAD = 0.68 EUR",
		Timestamp:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newProducer(t *testing.T) *mocks.SyncProducer {
	t.Helper()
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return mocks.NewSyncProducer(t, cfg)
}

func TestPublisher_PublishSendsJSON(t *testing.T) {
	producer := newProducer(t)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var rec travel.HistoryRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		if rec.ID != 9 || rec.DestinationCity != "Paris" {
			return fmt.Errorf("unexpected record %+v", rec)
		}
		return nil
	})

	pub := audit.NewPublisherWithProducer(producer, "travel.history")
	rec := sampleRecord()
	rec.ID = 9

	require.NoError(t, pub.Publish(rec))
	require.NoError(t, pub.Close())
}

func TestPublisher_PublishError(t *testing.T) {
	producer := newProducer(t)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := audit.NewPublisherWithProducer(producer, "travel.history")

	err := pub.Publish(sampleRecord())
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Contains(t, err.Error(), "travel.history")
	require.NoError(t, pub.Close())
}

func TestStore_AppendPublishesWithAssignedID(t *testing.T) {
	producer := newProducer(t)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var rec travel.HistoryRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		if rec.ID != 1 {
			return fmt.Errorf("expected id 1, got %d", rec.ID)
		}
		return nil
	})

	inner := storage.NewMemoryHistory()
	pub := audit.NewPublisherWithProducer(producer, "travel.history")
	store := audit.NewStore(inner, pub, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	require.NoError(t, store.Initialize(ctx))
	id, err := store.Append(ctx, sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NoError(t, pub.Close())
}

func TestStore_PublishFailureDoesNotFailAppend(t *testing.T) {
	producer := newProducer(t)
	producer.ExpectSendMessageAndFail(sarama.ErrNotConnected)

	inner := storage.NewMemoryHistory()
	pub := audit.NewPublisherWithProducer(producer, "travel.history")
	store := audit.NewStore(inner, pub, slog.New(slog.DiscardHandler))

	id, err := store.Append(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := inner.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.NoError(t, pub.Close())
}

type failingStore struct{ travel.HistoryStore }

func (failingStore) Append(context.Context, travel.HistoryRecord) (int64, error) {
	return 0, errors.New("disk full")
}

func TestStore_AppendErrorSkipsPublish(t *testing.T) {
	// No expectations: any send would be reported by the mock.
	producer := newProducer(t)
	pub := audit.NewPublisherWithProducer(producer, "travel.history")
	store := audit.NewStore(failingStore{storage.NewMemoryHistory()}, pub, slog.New(slog.DiscardHandler))

	_, err := store.Append(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, pub.Close())
}
