package goroutine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bizdesk/internal/shared/logger"
)

func TestGo(t *testing.T) {
	log := logger.NewNop()

	t.Run("nil result closes the channel", func(t *testing.T) {
		err, ok := <-Go(log, "ok", func() error { return nil })
		assert.False(t, ok)
		assert.NoError(t, err)
	})

	t.Run("error is delivered", func(t *testing.T) {
		err, ok := <-Go(log, "fails", func() error { return assert.AnError })
		assert.True(t, ok)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		err := <-Go(log, "boom", func() error { panic("boom") })
		assert.EqualError(t, err, "boom panicked: boom")
	})
}
