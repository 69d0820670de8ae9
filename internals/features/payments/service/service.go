package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"feespay_backend/internals/features/payments/gateway"
	"feespay_backend/internals/features/payments/model"
)

/* =========================================================
   Collaborator contracts

   The engine names the interfaces it needs; the catalog and
   receipts features satisfy them. Keeps the core free of
   upward imports.
========================================================= */

// FeeInfo is the slice of the fee catalog the initiator cares about.
type FeeInfo struct {
	FeeID    uuid.UUID
	Category string
	Amount   int64 // naira
	Levels   []string // empty or containing "ALL" means any level
}

func (f FeeInfo) EligibleFor(level string) bool {
	if len(f.Levels) == 0 {
		return true
	}
	for _, l := range f.Levels {
		if l == "ALL" || l == level {
			return true
		}
	}
	return false
}

// FeeLookup is the read-only fee catalog dependency.
type FeeLookup interface {
	FeesByIDs(ctx context.Context, ids []uuid.UUID) ([]FeeInfo, error)
}

// ReceiptNotifier is told exactly once per record that reaches the
// terminal successful state. Implementations must tolerate being called
// with a background context; delivery is best-effort.
type ReceiptNotifier interface {
	PaymentSucceeded(ctx context.Context, p *model.Payment)
}

/* =========================================================
   Service
========================================================= */

type PaymentService struct {
	store    Store
	fees     FeeLookup
	gateways *gateway.Registry
	notifier ReceiptNotifier

	refPrefix string
	locks     chainLocks
}

type Option func(*PaymentService)

func WithReceiptNotifier(n ReceiptNotifier) Option {
	return func(s *PaymentService) { s.notifier = n }
}

func WithReferencePrefix(prefix string) Option {
	return func(s *PaymentService) {
		if prefix != "" {
			s.refPrefix = prefix
		}
	}
}

func NewPaymentService(store Store, fees FeeLookup, gateways *gateway.Registry, opts ...Option) *PaymentService {
	s := &PaymentService{
		store:     store,
		fees:      fees,
		gateways:  gateways,
		refPrefix: "PAY",
	}
	s.locks.m = make(map[string]*chainLock)
	for _, o := range opts {
		o(s)
	}
	return s
}

/* =========================================================
   Per-chain exclusive locks

   Verification transitions for one obligation chain are
   linearized behind the root reference. Distinct chains never
   contend. Entries are dropped once the last holder releases.
========================================================= */

type chainLock struct {
	mu   sync.Mutex
	refs int
}

type chainLocks struct {
	mu sync.Mutex
	m  map[string]*chainLock
}

// acquire blocks until the chain lock is held and returns the release.
func (l *chainLocks) acquire(key string) func() {
	l.mu.Lock()
	cl, ok := l.m[key]
	if !ok {
		cl = &chainLock{}
		l.m[key] = cl
	}
	cl.refs++
	l.mu.Unlock()

	cl.mu.Lock()
	return func() {
		cl.mu.Unlock()
		l.mu.Lock()
		cl.refs--
		if cl.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}
