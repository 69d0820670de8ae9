package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"feespay_backend/internals/features/payments/gateway"
	"feespay_backend/internals/features/payments/model"
)

type VerifyResult struct {
	Reference       string                `json:"reference"`
	Status          model.PaymentStatus   `json:"status"`
	PaymentID       uuid.UUID             `json:"payment_id"`
	AmountPaid      int64                 `json:"amount_paid"`
	ProviderCode    string                `json:"provider_code,omitempty"`
	ProviderMessage string                `json:"provider_message,omitempty"`
	Balance         *ChainBalance         `json:"balance,omitempty"`
}

// Verify reconciles one transaction reference against gateway ground
// truth. It is idempotent: once a record is terminal, every further call
// returns the stored outcome without touching the gateway. Concurrent
// calls for the same obligation chain are linearized behind a per-chain
// lock, so exactly one caller performs the authoritative status check.
func (s *PaymentService) Verify(ctx context.Context, reference string, gatewayName model.GatewayProvider) (*VerifyResult, error) {
	p, err := s.store.GetByReference(ctx, reference)
	if err != nil {
		if err == ErrNotFound {
			return nil, NotFoundf("payment %q not found", reference)
		}
		return nil, err
	}

	// Terminal records short-circuit before any locking or gateway work.
	if p.IsTerminal() {
		return s.verifyResult(ctx, p)
	}

	if gatewayName == "" {
		gatewayName = p.PaymentGateway
	}
	adapter, ok := s.gateways.Get(gatewayName)
	if !ok {
		return nil, Validationf("unsupported gateway %q", gatewayName)
	}

	rootRef := p.PaymentTransactionRef
	if !p.IsRoot() {
		rootRef = *p.PaymentOriginalRef
	}

	release := s.locks.acquire(rootRef)
	defer release()

	// Re-read under the lock: another verification may have already
	// resolved this record. That is the idempotent short-circuit, not an
	// error.
	p, err = s.store.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return s.verifyResult(ctx, p)
	}

	outcome, err := adapter.CheckStatus(ctx, reference)
	if err != nil {
		// Unknown answer: never guess a terminal state. The record stays
		// pending and the caller may retry.
		return nil, GatewayErr(err, "gateway status check failed for %s", reference)
	}

	s.appendVerifyEvent(ctx, p, gatewayName, outcome)

	switch outcome.Status {
	case gateway.OutcomeSuccessful:
		if err := s.applySuccess(ctx, p, rootRef, outcome); err != nil {
			return nil, err
		}
		if s.notifier != nil {
			go s.notifier.PaymentSucceeded(context.Background(), p)
		}

	case gateway.OutcomeFailed:
		now := time.Now()
		p.PaymentStatus = model.PaymentStatusFailed
		p.PaymentVerifiedAt = &now
		p.PaymentProviderCode = optional(outcome.ProviderCode)
		p.PaymentProviderMessage = optional(outcome.ProviderMessage)
		if err := s.store.Update(ctx, p); err != nil {
			return nil, err
		}

	case gateway.OutcomePending:
		// Valid non-final answer; no mutation.
	}

	return s.verifyResult(ctx, p)
}

// applySuccess transitions the record to successful, clamping the paid
// amount so the chain can never exceed its obligation. Callers hold the
// chain lock.
func (s *PaymentService) applySuccess(ctx context.Context, p *model.Payment, rootRef string, outcome *gateway.Outcome) error {
	amount := outcome.Amount
	if amount <= 0 || amount > p.PaymentAmountPayable {
		// Never trust the provider to report more than was due.
		amount = p.PaymentAmountPayable
	}

	// Clamp against what the rest of the chain has already settled.
	records, err := s.store.ListChain(ctx, rootRef)
	if err != nil {
		return err
	}
	var totalDue, paidByOthers int64
	for i := range records {
		r := &records[i]
		if r.IsRoot() {
			snap, serr := r.Snapshot()
			if serr != nil {
				return serr
			}
			totalDue = snap.Total()
		}
		if r.PaymentID != p.PaymentID && r.IsSuccessful() {
			paidByOthers += r.PaidAmount()
		}
	}
	if remaining := totalDue - paidByOthers; amount > remaining {
		if remaining < 0 {
			remaining = 0
		}
		amount = remaining
	}

	now := time.Now()
	p.PaymentStatus = model.PaymentStatusSuccessful
	p.PaymentAmountPaid = &amount
	p.PaymentVerifiedAt = &now
	p.PaymentProviderCode = optional(outcome.ProviderCode)
	p.PaymentProviderMessage = optional(outcome.ProviderMessage)
	if outcome.ProviderRef != "" {
		p.PaymentProviderRef = optional(outcome.ProviderRef)
	}
	return s.store.Update(ctx, p)
}

func (s *PaymentService) verifyResult(ctx context.Context, p *model.Payment) (*VerifyResult, error) {
	res := &VerifyResult{
		Reference:  p.PaymentTransactionRef,
		Status:     p.PaymentStatus,
		PaymentID:  p.PaymentID,
		AmountPaid: p.PaidAmount(),
	}
	if p.PaymentProviderCode != nil {
		res.ProviderCode = *p.PaymentProviderCode
	}
	if p.PaymentProviderMessage != nil {
		res.ProviderMessage = *p.PaymentProviderMessage
	}

	// Advisory balance view; a failure here never fails the verify.
	if bal, err := s.ResolveChain(ctx, p.PaymentTransactionRef); err == nil {
		res.Balance = bal
	}
	return res, nil
}

func (s *PaymentService) appendVerifyEvent(ctx context.Context, p *model.Payment, gw model.GatewayProvider, outcome *gateway.Outcome) {
	payload, _ := json.Marshal(outcome)
	ev := &model.GatewayEvent{
		GatewayEventPaymentID: &p.PaymentID,
		GatewayEventProvider:  gw,
		GatewayEventKind:      "verify",
		GatewayEventReference: optional(p.PaymentTransactionRef),
		GatewayEventPayload:   datatypes.JSON(payload),
		GatewayEventStatus:    model.GatewayEventProcessed,
	}
	if err := s.store.AppendEvent(ctx, ev); err != nil {
		log.Printf("[WARN] gateway event append failed for %s: %v", p.PaymentTransactionRef, err)
	}
}
