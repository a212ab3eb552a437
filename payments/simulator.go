// Package payments provides a simulated payment gateway. It issues fake
// intents and confirmations after an artificial delay and fails a configurable
// share of confirmations. It stands in for a real gateway integration.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than 0")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter ISO code")
	ErrInvalidMethod   = errors.New("unsupported payment method")
)

// Supported payment methods
const (
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodMobileMoney  = "mobile_money"
)

// Intent statuses
const (
	IntentRequiresConfirmation = "requires_confirmation"
	IntentSucceeded            = "succeeded"
	IntentFailed               = "failed"
)

type IntentInput struct {
	Amount      float64
	Currency    string
	Description string
	DonorEmail  string
}

type Intent struct {
	ID           string
	ClientSecret string
	Amount       float64
	Currency     string
	Status       string
	CreatedAt    time.Time
}

type Result struct {
	Success       bool
	TransactionID string
	Error         string
}

type Options struct {
	// Delay is applied before each intent and confirmation.
	Delay time.Duration
	// FailureRate is the probability in [0,1] that a confirmation is declined.
	FailureRate float64
	// Seed makes failure injection reproducible; zero seeds from the clock.
	Seed int64
}

// Simulator is safe for concurrent use.
type Simulator struct {
	delay       time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func New(opts Options) *Simulator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rate := opts.FailureRate
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return &Simulator{
		delay:       opts.Delay,
		failureRate: rate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulator) CreateIntent(ctx context.Context, in IntentInput) (*Intent, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return &Intent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%s", id, uuid.NewString()[:8]),
		Amount:       in.Amount,
		Currency:     currency,
		Status:       IntentRequiresConfirmation,
		CreatedAt:    time.Now(),
	}, nil
}

// Confirm settles an intent. Gateway-side declines are reported in Result,
// not as an error; an error means the confirmation never ran.
func (s *Simulator) Confirm(ctx context.Context, intent *Intent, method string) (Result, error) {
	if intent == nil {
		return Result{}, errors.New("nil payment intent")
	}
	if !ValidMethod(method) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	if err := s.wait(ctx); err != nil {
		return Result{}, err
	}

	if s.roll() < s.failureRate {
		intent.Status = IntentFailed
		return Result{Success: false, Error: "payment declined by issuer"}, nil
	}
	intent.Status = IntentSucceeded
	return Result{Success: true, TransactionID: "txn_" + uuid.NewString()}, nil
}

func ValidMethod(method string) bool {
	switch method {
	case MethodCard, MethodBankTransfer, MethodMobileMoney:
		return true
	}
	return false
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
