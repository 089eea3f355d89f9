package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesAreReproducible(t *testing.T) {
	now := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)

	first := NewGenerator(42, now).Messages(50)
	second := NewGenerator(42, now).Messages(50)
	require.Equal(t, first, second, "same seed must yield the same corpus")

	other := NewGenerator(7, now).Messages(50)
	assert.NotEqual(t, first, other)
}

func TestMessagesShape(t *testing.T) {
	now := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	msgs := NewGenerator(1, now).Messages(60)
	require.Len(t, msgs, 60)

	noise := 0
	for i, msg := range msgs {
		assert.NotEmpty(t, msg.Raw, "message %d", i)
		assert.NotEmpty(t, msg.Sender, "message %d", i)
		assert.False(t, msg.SentAt.After(now.Add(24*time.Hour)), "message %d in the future", i)
		if msg.Sender == "VM-PROMOS" {
			noise++
		}
	}

	assert.Equal(t, 6, noise, "one in ten messages is promotional noise")

	// Oldest first.
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].SentAt.Before(msgs[i-1].SentAt.AddDate(0, 0, -1)),
			"timestamps must trend forward")
	}
}
