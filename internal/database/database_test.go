package database

import (
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry("test", 5*time.Second, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := retry("test", 5*time.Second, func() error {
		calls++
		return backoff.Permanent(errors.New("bad dsn"))
	})

	assert.EqualError(t, err, "bad dsn")
	assert.Equal(t, 1, calls)
}

func TestRetry_GivesUp(t *testing.T) {
	err := retry("test", 100*time.Millisecond, func() error {
		return errors.New("down")
	})

	assert.EqualError(t, err, "down")
}
