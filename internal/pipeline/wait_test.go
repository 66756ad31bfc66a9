package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWait_ReturnsNilAsSoonAsCheckReportsDone(t *testing.T) {
	calls := 0
	err := Wait(context.Background(), Policy{Attempts: 5, Delay: time.Millisecond}, func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 2, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWait_ExhaustsBudgetReturnsErrWaitExhausted(t *testing.T) {
	err := Wait(context.Background(), Policy{Attempts: 3, Delay: time.Millisecond}, func(ctx context.Context) (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, ErrWaitExhausted)
}

func TestWait_CheckErrorIsFatal(t *testing.T) {
	wantErr := errors.New("check failed")
	err := Wait(context.Background(), Policy{Attempts: 3, Delay: time.Millisecond}, func(ctx context.Context) (bool, error) {
		return false, wantErr
	})

	assert.ErrorIs(t, err, wantErr)
}
