package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIntentValidation(t *testing.T) {
	sim := New(Options{Seed: 1})
	ctx := context.Background()

	_, err := sim.CreateIntent(ctx, IntentInput{Amount: 0, Currency: "USD"})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = sim.CreateIntent(ctx, IntentInput{Amount: 10, Currency: "dollars"})
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	intent, err := sim.CreateIntent(ctx, IntentInput{Amount: 10, Currency: "kes"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.ID, "pi_"))
	assert.Equal(t, "KES", intent.Currency)
	assert.Equal(t, IntentRequiresConfirmation, intent.Status)
	assert.Contains(t, intent.ClientSecret, intent.ID)
}

func TestConfirmSucceedsWithZeroFailureRate(t *testing.T) {
	sim := New(Options{Seed: 7, FailureRate: 0})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		intent, err := sim.CreateIntent(ctx, IntentInput{Amount: 5, Currency: "USD"})
		require.NoError(t, err)
		res, err := sim.Confirm(ctx, intent, MethodCard)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.True(t, strings.HasPrefix(res.TransactionID, "txn_"))
		assert.Equal(t, IntentSucceeded, intent.Status)
	}
}

func TestConfirmAlwaysFailsWithFullFailureRate(t *testing.T) {
	sim := New(Options{Seed: 7, FailureRate: 1})
	ctx := context.Background()

	intent, err := sim.CreateIntent(ctx, IntentInput{Amount: 5, Currency: "USD"})
	require.NoError(t, err)
	res, err := sim.Confirm(ctx, intent, MethodMobileMoney)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, res.TransactionID)
	assert.Equal(t, IntentFailed, intent.Status)
}

func TestConfirmRejectsUnknownMethod(t *testing.T) {
	sim := New(Options{Seed: 1})
	intent := &Intent{ID: "pi_x", Amount: 1, Currency: "USD"}

	_, err := sim.Confirm(context.Background(), intent, "cheque")
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestDelayHonoursCancellation(t *testing.T) {
	sim := New(Options{Seed: 1, Delay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.CreateIntent(ctx, IntentInput{Amount: 1, Currency: "USD"})
	assert.True(t, errors.Is(err, context.Canceled))
}
