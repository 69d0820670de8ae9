package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"feespay_backend/internals/features/payments/gateway"
	"feespay_backend/internals/features/payments/model"
)

func setupPending(t *testing.T, adapter *stubAdapter, total int64, percent int) (*PaymentService, *memStore, string) {
	t.Helper()
	fee := tuitionFee(total)
	store := newMemStore()
	svc := newTestService(store, newStubFees(fee), adapter)

	in := freshInput(fee)
	in.Percent = percent
	res, err := svc.Initiate(context.Background(), in)
	require.NoError(t, err)
	return svc, store, res.Reference
}

func TestVerifySuccessTransition(t *testing.T) {
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(75000)}
	svc, store, ref := setupPending(t, adapter, 150000, 50)

	res, err := svc.Verify(context.Background(), ref, "")
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusSuccessful, res.Status)
	require.Equal(t, int64(75000), res.AmountPaid)
	require.Equal(t, "00", res.ProviderCode)

	p := store.record(ref)
	require.True(t, p.IsSuccessful())
	require.NotNil(t, p.PaymentVerifiedAt)

	require.NotNil(t, res.Balance)
	require.Equal(t, int64(75000), res.Balance.BalanceDue)
	require.Equal(t, float64(50), res.Balance.PercentagePaid)
}

func TestVerifyIdempotentAfterTerminal(t *testing.T) {
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(0)}
	svc, _, ref := setupPending(t, adapter, 150000, 100)

	first, err := svc.Verify(context.Background(), ref, "")
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusSuccessful, first.Status)
	callsAfterFirst := atomic.LoadInt64(&adapter.checkCalls)
	require.Equal(t, int64(1), callsAfterFirst)

	// Every further verification answers from storage.
	for i := 0; i < 5; i++ {
		res, err := svc.Verify(context.Background(), ref, "")
		require.NoError(t, err)
		require.Equal(t, first.Status, res.Status)
		require.Equal(t, first.AmountPaid, res.AmountPaid)
	}
	require.Equal(t, callsAfterFirst, atomic.LoadInt64(&adapter.checkCalls))
}

func TestVerifyFailedIsTerminal(t *testing.T) {
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: gateway.Outcome{
		Status:          gateway.OutcomeFailed,
		ProviderCode:    "05",
		ProviderMessage: "Do not honour",
	}}
	svc, store, ref := setupPending(t, adapter, 150000, 100)

	res, err := svc.Verify(context.Background(), ref, "")
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusFailed, res.Status)
	require.Equal(t, int64(0), res.AmountPaid)

	// Flip the stub to success: the stored failed outcome must win.
	adapter.outcome = outcomeSuccess(150000)
	res, err = svc.Verify(context.Background(), ref, "")
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusFailed, res.Status)
	require.Equal(t, int64(1), atomic.LoadInt64(&adapter.checkCalls))

	p := store.record(ref)
	require.Nil(t, p.PaymentAmountPaid)
}

func TestVerifyPendingLeavesRecordUntouched(t *testing.T) {
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: gateway.Outcome{
		Status: gateway.OutcomePending,
	}}
	svc, store, ref := setupPending(t, adapter, 150000, 100)

	res, err := svc.Verify(context.Background(), ref, "")
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusPending, res.Status)

	p := store.record(ref)
	require.Equal(t, model.PaymentStatusPending, p.PaymentStatus)
	require.Nil(t, p.PaymentVerifiedAt)

	// Still pending, so the next call consults the gateway again.
	_, err = svc.Verify(context.Background(), ref, "")
	require.NoError(t, err)
	require.Equal(t, int64(2), atomic.LoadInt64(&adapter.checkCalls))
}

func TestVerifyGatewayErrorNoMutation(t *testing.T) {
	adapter := &stubAdapter{name: model.GatewayPaystack, checkErr: errors.New("tls handshake timeout")}
	svc, store, ref := setupPending(t, adapter, 150000, 100)

	_, err := svc.Verify(context.Background(), ref, "")
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindGateway, kind)

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	require.True(t, svcErr.Retryable())

	p := store.record(ref)
	require.Equal(t, model.PaymentStatusPending, p.PaymentStatus)

	// Retry after the outage succeeds.
	adapter.checkErr = nil
	adapter.outcome = outcomeSuccess(0)
	res, err := svc.Verify(context.Background(), ref, "")
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusSuccessful, res.Status)
}

func TestVerifyUnknownReference(t *testing.T) {
	svc := newTestService(newMemStore(), newStubFees(), &stubAdapter{name: model.GatewayPaystack})
	_, err := svc.Verify(context.Background(), "PAY-MISSING", "")
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindNotFound, kind)
}

func TestVerifyClampsOverReportedAmount(t *testing.T) {
	// Provider claims more than was due on this transaction.
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(999999)}
	svc, store, ref := setupPending(t, adapter, 150000, 50)

	res, err := svc.Verify(context.Background(), ref, "")
	require.NoError(t, err)
	require.Equal(t, int64(75000), res.AmountPaid)

	p := store.record(ref)
	require.Equal(t, int64(75000), *p.PaymentAmountPaid)
}

func TestVerifyClampsToChainRemainder(t *testing.T) {
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(0)}
	fee := tuitionFee(150000)
	store := newMemStore()
	svc := newTestService(store, newStubFees(fee), adapter)

	in := freshInput(fee)
	in.Percent = 75
	root, err := svc.Initiate(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), root.Reference, "")
	require.NoError(t, err)

	// Settle the remaining quarter against the same chain.
	in2 := freshInput(fee)
	in2.Percent = 25
	in2.OriginalReference = root.Reference
	child, err := svc.Initiate(context.Background(), in2)
	require.NoError(t, err)

	res, err := svc.Verify(context.Background(), child.Reference, "")
	require.NoError(t, err)
	require.Equal(t, int64(37500), res.AmountPaid)

	bal, err := svc.ResolveChain(context.Background(), root.Reference)
	require.NoError(t, err)
	require.Equal(t, int64(0), bal.BalanceDue)
	require.Equal(t, float64(100), bal.PercentagePaid)
}

func TestVerifyConcurrentSingleAuthoritativeCheck(t *testing.T) {
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(0)}
	svc, store, ref := setupPending(t, adapter, 150000, 100)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*VerifyResult, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Verify(context.Background(), ref, "")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, model.PaymentStatusSuccessful, results[i].Status)
		require.Equal(t, int64(150000), results[i].AmountPaid)
	}

	// Exactly one caller reached the gateway; the rest answered from
	// the re-read under the chain lock.
	require.Equal(t, int64(1), atomic.LoadInt64(&adapter.checkCalls))

	p := store.record(ref)
	require.Equal(t, int64(150000), *p.PaymentAmountPaid)
}

func TestVerifyDefaultsToRecordedGateway(t *testing.T) {
	paystack := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(0)}
	flutterwave := &stubAdapter{name: model.GatewayFlutterwave, outcome: outcomeSuccess(0)}
	fee := tuitionFee(150000)
	store := newMemStore()
	svc := newTestService(store, newStubFees(fee), paystack, flutterwave)

	in := freshInput(fee)
	in.Gateway = model.GatewayFlutterwave
	res, err := svc.Initiate(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), res.Reference, "")
	require.NoError(t, err)
	require.Equal(t, int64(0), atomic.LoadInt64(&paystack.checkCalls))
	require.Equal(t, int64(1), atomic.LoadInt64(&flutterwave.checkCalls))
}

func TestVerifyRecordsGatewayEvent(t *testing.T) {
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(0)}
	svc, store, ref := setupPending(t, adapter, 150000, 100)

	_, err := svc.Verify(context.Background(), ref, "")
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.events, 1)
	ev := store.events[0]
	require.Equal(t, "verify", ev.GatewayEventKind)
	require.Equal(t, model.GatewayPaystack, ev.GatewayEventProvider)
	require.Equal(t, ref, *ev.GatewayEventReference)
}
