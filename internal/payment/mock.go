package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// DeclineLast4 makes MockProcessor refuse a card, for exercising the
// decline path end to end.
const DeclineLast4 = "0002"

// MockProcessor approves every valid card without contacting anyone.  It
// remembers captures so voids can be checked in development.
type MockProcessor struct {
	mu       sync.Mutex
	captured map[string]decimal.Decimal
	voided   map[string]bool
	now      func() time.Time
}

func NewMockProcessor() *MockProcessor {
	return &MockProcessor{
		captured: map[string]decimal.Decimal{},
		voided:   map[string]bool{},
		now:      time.Now,
	}
}

func (m *MockProcessor) Validate(card model.PaymentCard) bool {
	return ValidateCard(card, m.now()) == nil
}

func (m *MockProcessor) Capture(_ context.Context, card model.PaymentCard, amount decimal.Decimal) (string, error) {
	if err := ValidateCard(card, m.now()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	if card.Last4() == DeclineLast4 {
		return "", fmt.Errorf("%w: card refused", ErrDeclined)
	}
	id := "mock_" + uuid.NewString()
	m.mu.Lock()
	m.captured[id] = amount
	m.mu.Unlock()
	return id, nil
}

func (m *MockProcessor) Void(_ context.Context, chargeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.captured[chargeID]; !ok {
		return fmt.Errorf("mock void: unknown charge %s", chargeID)
	}
	m.voided[chargeID] = true
	return nil
}

// Voided reports whether a charge was voided.
func (m *MockProcessor) Voided(chargeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voided[chargeID]
}
