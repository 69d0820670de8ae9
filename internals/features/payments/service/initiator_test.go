package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"feespay_backend/internals/features/payments/model"
)

func tuitionFee(amount int64, levels ...string) FeeInfo {
	return FeeInfo{
		FeeID:    uuid.New(),
		Category: "Tuition",
		Amount:   amount,
		Levels:   levels,
	}
}

func freshInput(fee FeeInfo) InitiateInput {
	return InitiateInput{
		FeeIDs:       []uuid.UUID{fee.FeeID},
		Percent:      100,
		Gateway:      model.GatewayPaystack,
		StudentEmail: "ada@uni.edu.ng",
		StudentName:  "Ada Obi",
		Level:        "L100",
	}
}

func TestInitiateCreatesPendingRecord(t *testing.T) {
	fee := tuitionFee(150000, "L100", "L200")
	store := newMemStore()
	adapter := &stubAdapter{name: model.GatewayPaystack}
	svc := newTestService(store, newStubFees(fee), adapter)

	in := freshInput(fee)
	in.Percent = 50
	res, err := svc.Initiate(context.Background(), in)
	require.NoError(t, err)
	require.NotEmpty(t, res.Reference)
	require.Equal(t, "https://checkout.example/"+res.Reference, res.RedirectURL)

	p := store.record(res.Reference)
	require.NotNil(t, p)
	require.Equal(t, model.PaymentStatusPending, p.PaymentStatus)
	require.Equal(t, int64(75000), p.PaymentAmountPayable)
	require.Equal(t, 50, p.PaymentPercent)
	require.Equal(t, "NGN", p.PaymentCurrency)
	require.Nil(t, p.PaymentAmountPaid)
	require.True(t, p.IsRoot())

	snap, err := p.Snapshot()
	require.NoError(t, err)
	require.Equal(t, int64(150000), snap.Total())
}

func TestInitiateRejectsUnsupportedPercent(t *testing.T) {
	fee := tuitionFee(150000)
	store := newMemStore()
	svc := newTestService(store, newStubFees(fee), &stubAdapter{name: model.GatewayPaystack})

	in := freshInput(fee)
	in.Percent = 30
	_, err := svc.Initiate(context.Background(), in)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindValidation, kind)
	require.Equal(t, 0, store.count())
}

func TestInitiateRejectsIneligibleLevel(t *testing.T) {
	fee := tuitionFee(150000, "L100", "L200")
	store := newMemStore()
	svc := newTestService(store, newStubFees(fee), &stubAdapter{name: model.GatewayPaystack})

	in := freshInput(fee)
	in.Level = "L300"
	_, err := svc.Initiate(context.Background(), in)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindValidation, kind)
	require.Equal(t, 0, store.count())
}

func TestInitiateLevelWildcard(t *testing.T) {
	fee := tuitionFee(80000, "ALL")
	store := newMemStore()
	svc := newTestService(store, newStubFees(fee), &stubAdapter{name: model.GatewayPaystack})

	in := freshInput(fee)
	in.Level = "L600"
	_, err := svc.Initiate(context.Background(), in)
	require.NoError(t, err)
}

func TestInitiateUnknownFee(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, newStubFees(), &stubAdapter{name: model.GatewayPaystack})

	in := freshInput(tuitionFee(100))
	_, err := svc.Initiate(context.Background(), in)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindNotFound, kind)
}

func TestInitiateUnknownGateway(t *testing.T) {
	fee := tuitionFee(150000)
	svc := newTestService(newMemStore(), newStubFees(fee), &stubAdapter{name: model.GatewayPaystack})

	in := freshInput(fee)
	in.Gateway = model.GatewayProvider("cashapp")
	_, err := svc.Initiate(context.Background(), in)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindValidation, kind)
}

func TestInitiateGlobalPayPhoneRules(t *testing.T) {
	fee := tuitionFee(150000)
	store := newMemStore()
	svc := newTestService(store, newStubFees(fee), &stubAdapter{name: model.GatewayGlobalPay})

	in := freshInput(fee)
	in.Gateway = model.GatewayGlobalPay

	_, err := svc.Initiate(context.Background(), in)
	kind, _ := KindOf(err)
	require.Equal(t, KindValidation, kind, "missing phone must be rejected")

	in.PhoneNumber = "0803123456" // 10 digits
	_, err = svc.Initiate(context.Background(), in)
	kind, _ = KindOf(err)
	require.Equal(t, KindValidation, kind)

	in.PhoneNumber = "08031234567"
	in.Address = "short"
	_, err = svc.Initiate(context.Background(), in)
	kind, _ = KindOf(err)
	require.Equal(t, KindValidation, kind)

	in.Address = "12 University Road"
	_, err = svc.Initiate(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 1, store.count())
}

func TestInitiateGatewayFailureKeepsRecord(t *testing.T) {
	fee := tuitionFee(150000)
	store := newMemStore()
	adapter := &stubAdapter{name: model.GatewayPaystack, startErr: errors.New("connect timeout")}
	svc := newTestService(store, newStubFees(fee), adapter)

	_, err := svc.Initiate(context.Background(), freshInput(fee))
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindGateway, kind)

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	require.True(t, svcErr.Retryable())

	// The pending record survives the failed initiation.
	require.Equal(t, 1, store.count())
}

func TestInitiateBalanceSettlesRemainder(t *testing.T) {
	fee := tuitionFee(150000)
	store := newMemStore()
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(0)}
	svc := newTestService(store, newStubFees(fee), adapter)

	in := freshInput(fee)
	in.Percent = 50
	root, err := svc.Initiate(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), root.Reference, "")
	require.NoError(t, err)

	child, err := svc.InitiateBalance(context.Background(), BalanceInput{
		Reference: root.Reference,
		Gateway:   model.GatewayPaystack,
	})
	require.NoError(t, err)

	cp := store.record(child.Reference)
	require.NotNil(t, cp)
	require.Equal(t, int64(75000), cp.PaymentAmountPayable)
	require.Equal(t, 50, cp.PaymentPercent)
	require.NotNil(t, cp.PaymentOriginalRef)
	require.Equal(t, root.Reference, *cp.PaymentOriginalRef)
	// Identity carried over from the root.
	require.Equal(t, "ada@uni.edu.ng", cp.PaymentStudentEmail)
}

func TestInitiateBalanceByChildReferenceLinksToRoot(t *testing.T) {
	fee := tuitionFee(200000)
	store := newMemStore()
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(0)}
	svc := newTestService(store, newStubFees(fee), adapter)

	in := freshInput(fee)
	in.Percent = 25
	root, err := svc.Initiate(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), root.Reference, "")
	require.NoError(t, err)

	first, err := svc.InitiateBalance(context.Background(), BalanceInput{
		Reference: root.Reference,
		Gateway:   model.GatewayPaystack,
	})
	require.NoError(t, err)

	// Naming the pending child must still link the next settlement to
	// the root.
	second, err := svc.InitiateBalance(context.Background(), BalanceInput{
		Reference: first.Reference,
		Gateway:   model.GatewayPaystack,
	})
	require.NoError(t, err)

	sp := store.record(second.Reference)
	require.Equal(t, root.Reference, *sp.PaymentOriginalRef)
}

func TestInitiateBalanceSettledChainConflicts(t *testing.T) {
	fee := tuitionFee(150000)
	store := newMemStore()
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(0)}
	svc := newTestService(store, newStubFees(fee), adapter)

	root, err := svc.Initiate(context.Background(), freshInput(fee))
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), root.Reference, "")
	require.NoError(t, err)

	_, err = svc.InitiateBalance(context.Background(), BalanceInput{
		Reference: root.Reference,
		Gateway:   model.GatewayPaystack,
	})
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindConflict, kind)
}

func TestInitiateSettlementRequiresRootReference(t *testing.T) {
	fee := tuitionFee(150000)
	store := newMemStore()
	adapter := &stubAdapter{name: model.GatewayPaystack, outcome: outcomeSuccess(0)}
	svc := newTestService(store, newStubFees(fee), adapter)

	in := freshInput(fee)
	in.Percent = 25
	root, err := svc.Initiate(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), root.Reference, "")
	require.NoError(t, err)

	child, err := svc.InitiateBalance(context.Background(), BalanceInput{
		Reference: root.Reference,
		Gateway:   model.GatewayPaystack,
	})
	require.NoError(t, err)

	// Pointing a settlement directly at a child is rejected.
	in2 := freshInput(fee)
	in2.Percent = 25
	in2.OriginalReference = child.Reference
	_, err = svc.Initiate(context.Background(), in2)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindValidation, kind)
}

func TestInitiateBalanceUnknownReference(t *testing.T) {
	svc := newTestService(newMemStore(), newStubFees(), &stubAdapter{name: model.GatewayPaystack})
	_, err := svc.InitiateBalance(context.Background(), BalanceInput{
		Reference: "PAY-NOPE",
		Gateway:   model.GatewayPaystack,
	})
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindNotFound, kind)
}
