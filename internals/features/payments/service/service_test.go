package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"feespay_backend/internals/features/payments/gateway"
	"feespay_backend/internals/features/payments/model"
)

/* =========================================================
   In-memory fixtures shared by the service tests
========================================================= */

type memStore struct {
	mu     sync.Mutex
	byRef  map[string]*model.Payment
	order  []string
	events []model.GatewayEvent
}

func newMemStore() *memStore {
	return &memStore{byRef: map[string]*model.Payment{}}
}

func clonePayment(p *model.Payment) *model.Payment {
	cp := *p
	if p.PaymentAmountPaid != nil {
		v := *p.PaymentAmountPaid
		cp.PaymentAmountPaid = &v
	}
	return &cp
}

func (m *memStore) Create(ctx context.Context, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.PaymentID == uuid.Nil {
		p.PaymentID = uuid.New()
	}
	if _, dup := m.byRef[p.PaymentTransactionRef]; dup {
		return errors.New("duplicate reference")
	}
	m.byRef[p.PaymentTransactionRef] = clonePayment(p)
	m.order = append(m.order, p.PaymentTransactionRef)
	return nil
}

func (m *memStore) Update(ctx context.Context, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byRef[p.PaymentTransactionRef]; !ok {
		return ErrNotFound
	}
	m.byRef[p.PaymentTransactionRef] = clonePayment(p)
	return nil
}

func (m *memStore) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byRef[reference]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePayment(p), nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byRef {
		if p.PaymentID == id {
			return clonePayment(p), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) ListChain(ctx context.Context, rootReference string) ([]model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Payment
	for _, ref := range m.order {
		p := m.byRef[ref]
		if p.PaymentTransactionRef == rootReference ||
			(p.PaymentOriginalRef != nil && *p.PaymentOriginalRef == rootReference) {
			out = append(out, *clonePayment(p))
		}
	}
	return out, nil
}

func (m *memStore) List(ctx context.Context, f ListFilter) ([]model.Payment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Payment
	for _, ref := range m.order {
		p := m.byRef[ref]
		if f.Status != nil && p.PaymentStatus != *f.Status {
			continue
		}
		if f.Gateway != nil && p.PaymentGateway != *f.Gateway {
			continue
		}
		if f.Email != nil && p.PaymentStudentEmail != *f.Email {
			continue
		}
		out = append(out, *clonePayment(p))
	}
	return out, int64(len(out)), nil
}

func (m *memStore) AppendEvent(ctx context.Context, ev *model.GatewayEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}

func (m *memStore) record(ref string) *model.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byRef[ref]
	if !ok {
		return nil
	}
	return clonePayment(p)
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byRef)
}

/* ===================== stub gateway ===================== */

type stubAdapter struct {
	name       model.GatewayProvider
	startErr   error
	checkErr   error
	outcome    gateway.Outcome
	checkCalls int64
	startCalls int64
}

func (a *stubAdapter) Name() model.GatewayProvider { return a.name }

func (a *stubAdapter) StartTransaction(ctx context.Context, req gateway.StartRequest) (*gateway.RedirectTarget, error) {
	atomic.AddInt64(&a.startCalls, 1)
	if a.startErr != nil {
		return nil, a.startErr
	}
	return &gateway.RedirectTarget{
		CheckoutURL: "https://checkout.example/" + req.Reference,
		ProviderRef: "prov-" + req.Reference,
	}, nil
}

func (a *stubAdapter) CheckStatus(ctx context.Context, reference string) (*gateway.Outcome, error) {
	atomic.AddInt64(&a.checkCalls, 1)
	if a.checkErr != nil {
		return nil, a.checkErr
	}
	out := a.outcome
	return &out, nil
}

/* ===================== stub fee catalog ===================== */

type stubFees struct {
	fees map[uuid.UUID]FeeInfo
	err  error
}

func newStubFees(fees ...FeeInfo) *stubFees {
	s := &stubFees{fees: map[uuid.UUID]FeeInfo{}}
	for _, f := range fees {
		s.fees[f.FeeID] = f
	}
	return s
}

func (s *stubFees) FeesByIDs(ctx context.Context, ids []uuid.UUID) ([]FeeInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []FeeInfo
	for _, id := range ids {
		if f, ok := s.fees[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// outcomeSuccess builds a successful provider answer. A zero amount
// means the provider did not report one.
func outcomeSuccess(amount int64) gateway.Outcome {
	return gateway.Outcome{
		Status:          gateway.OutcomeSuccessful,
		Amount:          amount,
		ProviderCode:    "00",
		ProviderMessage: "Approved",
	}
}

/* ===================== assembly helper ===================== */

func newTestService(store Store, fees FeeLookup, adapters ...gateway.Adapter) *PaymentService {
	return NewPaymentService(store, fees, gateway.NewRegistry(adapters...))
}
