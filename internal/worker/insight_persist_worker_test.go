package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-rag/internal/model"
)

type recordingStore struct {
	records []model.InsightRecord
	err     error
}

func (s *recordingStore) Create(_ context.Context, record *model.InsightRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *record)
	return nil
}

func TestInsightPersistWorker_Handle(t *testing.T) {
	store := &recordingStore{}
	w := NewInsightPersistWorker(nil, store, "q")

	err := w.handle(context.Background(), []byte(`{"id":9,"user_id":4,"query":"why","answer":"because","sources":"[]"}`))

	require.NoError(t, err)
	require.Len(t, store.records, 1)
	assert.Zero(t, store.records[0].ID)
	assert.Equal(t, uint(4), store.records[0].UserID)
	assert.Equal(t, "because", store.records[0].Answer)
}

func TestInsightPersistWorker_HandleRejects(t *testing.T) {
	tests := map[string]struct {
		body  string
		store *recordingStore
	}{
		"malformed":   {`{"user_id":`, &recordingStore{}},
		"no owner":    {`{"query":"q"}`, &recordingStore{}},
		"store error": {`{"user_id":1,"query":"q"}`, &recordingStore{err: errors.New("db down")}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			w := NewInsightPersistWorker(nil, tc.store, "q")

			assert.Error(t, w.handle(context.Background(), []byte(tc.body)))
			assert.Empty(t, tc.store.records)
		})
	}
}

func TestInsightPersistWorker_CloseWithoutStart(t *testing.T) {
	w := NewInsightPersistWorker(nil, &recordingStore{}, "q")

	assert.NotPanics(t, w.Close)
}
