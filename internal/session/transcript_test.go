package session

import (
	"testing"
	"time"

	"github.com/timebank/chat-client/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgAt(id int64, body string, at time.Time) domain.Message {
	return domain.Message{ID: id, Body: body, Kind: domain.KindText, CreatedAt: at}
}

func TestTranscriptSeedSortsChronologically(t *testing.T) {
	tr := NewTranscript(nil)
	t0 := time.Now()

	tr.Seed([]domain.Message{
		msgAt(3, "third", t0.Add(2*time.Second)),
		msgAt(1, "first", t0),
		msgAt(2, "second", t0.Add(time.Second)),
	})

	msgs := tr.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)
	assert.Equal(t, "third", msgs[2].Body)
}

func TestTranscriptAppendRejectsDuplicateID(t *testing.T) {
	tr := NewTranscript(nil)
	t0 := time.Now()

	require.NoError(t, tr.Append(msgAt(1, "hi", t0)))
	err := tr.Append(msgAt(1, "hi again", t0))
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Equal(t, 1, tr.Len())
}

func TestTranscriptSeedKeepsOptimisticTail(t *testing.T) {
	tr := NewTranscript(nil)
	t0 := time.Now()

	tr.Seed([]domain.Message{msgAt(1, "hi", t0)})

	opt := msgAt(domain.TempID(time.Now()), "yo", time.Now())
	opt.Optimistic = true
	require.NoError(t, tr.Append(opt))

	// повторная загрузка истории не должна терять optimistic-запись
	tr.Seed([]domain.Message{msgAt(1, "hi", t0)})

	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Body)
	assert.True(t, msgs[1].Optimistic)
	assert.Equal(t, "yo", msgs[1].Body)
}

func TestTranscriptSeedIsIdempotent(t *testing.T) {
	tr := NewTranscript(nil)
	t0 := time.Now()
	history := []domain.Message{msgAt(1, "hi", t0), msgAt(2, "hello", t0.Add(time.Second))}

	tr.Seed(history)
	tr.Seed(history)
	tr.Seed(history)

	assert.Equal(t, 2, tr.Len(), "reseeding must not accumulate duplicates")
}

func TestTranscriptNotifiesOnEveryMutation(t *testing.T) {
	var updates int
	tr := NewTranscript(func() { updates++ })

	tr.Seed([]domain.Message{msgAt(1, "hi", time.Now())})
	require.NoError(t, tr.Append(msgAt(2, "yo", time.Now())))

	assert.Equal(t, 2, updates, "scroll-to-latest contract: one notify per mutation")

	// отказ по дубликату — не мутация
	_ = tr.Append(msgAt(2, "yo", time.Now()))
	assert.Equal(t, 2, updates)
}
