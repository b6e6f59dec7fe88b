package coffee

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"buymeacoffee/chain"
)

const (
	DefaultAmount   = "0.001"
	ThankYouMessage = "Thank you for believing in us. Together, we can create something amazing!"
)

// Phase is a step of the donation state machine:
// Idle -> Validating -> Submitted -> Confirmed, or Failed from any step.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitted
	PhaseConfirmed
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseSubmitted:
		return "submitted"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Draft is the donation form. The name is kept as typed, even when empty.
type Draft struct {
	Name    string
	Message string
	Amount  string
}

func NewDraft() Draft {
	return Draft{Amount: DefaultAmount}
}

func (d *Draft) Reset() {
	*d = NewDraft()
}

// Value parses the amount as a positive ether value in wei.
func (d Draft) Value() (*big.Int, error) {
	value, err := chain.ParseEther(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	return value, nil
}

// Submit sends draft as a donation and waits for it to be mined. Only one
// submission runs at a time; a concurrent call fails with
// ErrSubmissionInFlight. On success the draft is reset and the read model
// refreshed once. On failure the draft is left untouched.
func (s *Session) Submit(ctx context.Context, draft *Draft) (*Receipt, error) {
	if draft == nil {
		return nil, fmt.Errorf("%w: no draft", ErrValidation)
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		s.metrics.ObserveSubmission(Kind(ErrSubmissionInFlight))
		return nil, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	attempt := uuid.New()
	logger := s.logger.With(zap.String("attempt", attempt.String()))

	receipt, err := s.submit(ctx, attempt, logger, *draft)
	if err != nil {
		s.phase(PhaseFailed)
		s.metrics.ObserveSubmission(Kind(err))
		s.setDonationMessage("Transaction failed: " + err.Error())
		logger.Warn("donation failed", zap.Error(err), zap.String("kind", Kind(err)))
		return nil, err
	}

	s.phase(PhaseConfirmed)
	s.metrics.ObserveSubmission("confirmed")
	logger.Info("donation confirmed", zap.String("tx", receipt.TransactionHash.Hex()), zap.Uint64("block", receipt.BlockNumber))

	s.mu.Lock()
	s.receipt = receipt
	s.donation = ThankYouMessage
	s.mu.Unlock()
	draft.Reset()

	if _, err := s.Refresh(ctx); err != nil {
		logger.Warn("refresh after donation failed", zap.Error(err))
	}
	return receipt, nil
}

func (s *Session) submit(ctx context.Context, attempt uuid.UUID, logger *zap.Logger, draft Draft) (*Receipt, error) {
	s.phase(PhaseValidating)
	value, err := draft.Value()
	if err != nil {
		return nil, err
	}

	handle, _ := s.current()
	if handle == nil {
		return nil, ErrNotConnected
	}
	from := handle.Signer()

	balance, err := handle.BalanceAt(ctx, from)
	if err != nil {
		return nil, classifyRemote(err)
	}
	if balance == nil || balance.Cmp(value) < 0 {
		return nil, fmt.Errorf("%w: balance %s %s is below the donation of %s",
			ErrInsufficientFunds, chain.FormatEther(balance), s.target.Currency.Symbol, strings.TrimSpace(draft.Amount))
	}

	s.phase(PhaseSubmitted)
	tx, err := handle.BuyCoffee(ctx, draft.Name, draft.Message, value)
	if err != nil {
		return nil, classifyRemote(err)
	}
	logger.Info("donation broadcast", zap.String("tx", tx.Hash().Hex()), zap.String("value", value.String()))

	sent := time.Now()
	mined, err := handle.WaitMined(ctx, tx)
	if err != nil {
		return nil, classifyRemote(err)
	}
	s.metrics.ObserveConfirmation(time.Since(sent).Seconds())

	return newReceipt(attempt, tx, mined, from, draft, s.target), nil
}

func (s *Session) phase(p Phase) {
	if s.onPhase != nil {
		s.onPhase(p)
	}
}

// DonationMessage is the outcome message of the last submission.
func (s *Session) DonationMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.donation
}

func (s *Session) setDonationMessage(msg string) {
	s.mu.Lock()
	s.donation = msg
	s.mu.Unlock()
}

// Submitting reports whether a donation is in flight.
func (s *Session) Submitting() bool {
	return s.inFlight.Load()
}
