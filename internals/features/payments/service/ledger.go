package service

import (
	"context"
	"math"

	"feespay_backend/internals/features/payments/model"
)

// ChainBalance is the derived view over one obligation chain. It is
// recomputed on demand as a pure fold over the records; nothing here is
// ever stored, which is what keeps the chain invariant enforceable by
// construction.
type ChainBalance struct {
	RootReference   string                  `json:"root_reference"`
	TotalAmountDue  int64                   `json:"total_amount_due"`
	TotalAmountPaid int64                   `json:"total_amount_paid"`
	BalanceDue      int64                   `json:"balance_due"`
	PercentagePaid  float64                 `json:"percentage_paid"`
	Records         []model.Payment         `json:"records"`
	Items           []model.FeeSnapshotItem `json:"items"`
}

// ResolveChain accepts any reference in a chain, resolves the root and
// folds the whole chain into totals. Read-only; takes no lock.
func (s *PaymentService) ResolveChain(ctx context.Context, reference string) (*ChainBalance, error) {
	rec, err := s.store.GetByReference(ctx, reference)
	if err != nil {
		if err == ErrNotFound {
			return nil, NotFoundf("payment %q not found", reference)
		}
		return nil, err
	}

	rootRef := rec.PaymentTransactionRef
	if !rec.IsRoot() {
		rootRef = *rec.PaymentOriginalRef
	}

	records, err := s.store.ListChain(ctx, rootRef)
	if err != nil {
		return nil, err
	}

	bal := &ChainBalance{RootReference: rootRef, Records: records}
	for i := range records {
		r := &records[i]
		if r.IsRoot() {
			snap, serr := r.Snapshot()
			if serr != nil {
				return nil, serr
			}
			bal.Items = snap
			bal.TotalAmountDue = snap.Total()
		}
		if r.IsSuccessful() {
			bal.TotalAmountPaid += r.PaidAmount()
		}
	}

	bal.BalanceDue = bal.TotalAmountDue - bal.TotalAmountPaid
	if bal.BalanceDue < 0 {
		bal.BalanceDue = 0
	}
	if bal.TotalAmountDue > 0 {
		pct := float64(bal.TotalAmountPaid) / float64(bal.TotalAmountDue) * 100
		bal.PercentagePaid = math.Min(100, pct)
	}
	return bal, nil
}
