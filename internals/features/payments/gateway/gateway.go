package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feespay_backend/internals/features/payments/model"
)

/* =========================================================
   Adapter contract

   One implementation per provider. Adapters own all of the
   provider-specific shapes (field names, status vocabularies,
   callback conventions) and hand the engine a single
   normalized Outcome. The engine never sees raw provider JSON.
========================================================= */

type OutcomeStatus string

const (
	OutcomeSuccessful OutcomeStatus = "successful"
	OutcomeFailed     OutcomeStatus = "failed"
	OutcomePending    OutcomeStatus = "pending"
)

// Outcome is the provider's current word on a transaction, normalized.
type Outcome struct {
	Status          OutcomeStatus
	Amount          int64 // naira, 0 when the provider did not report one
	ProviderRef     string
	ProviderCode    string
	ProviderMessage string
}

// StartRequest carries everything a provider needs to open a checkout.
type StartRequest struct {
	Reference string
	Amount    int64 // naira
	Currency  string
	Email     string
	Name      string
	Phone     string
	Address   string
}

// RedirectTarget is where the student finishes the transaction.
type RedirectTarget struct {
	CheckoutURL string
	ProviderRef string
}

type Adapter interface {
	Name() model.GatewayProvider

	// StartTransaction must be called at most once per reference; the
	// engine never retries it for the same reference.
	StartTransaction(ctx context.Context, req StartRequest) (*RedirectTarget, error)

	// CheckStatus is safe to call repeatedly and returns a stable answer
	// once the provider has a final outcome. A provider-side decline is a
	// failed Outcome, not an error; errors mean the answer is unknown.
	CheckStatus(ctx context.Context, reference string) (*Outcome, error)
}

/* =========================================================
   Registry
========================================================= */

type Registry struct {
	adapters map[model.GatewayProvider]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[model.GatewayProvider]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

func (r *Registry) Get(name model.GatewayProvider) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

func (r *Registry) Names() []model.GatewayProvider {
	out := make([]model.GatewayProvider, 0, len(r.adapters))
	for n := range r.adapters {
		out = append(out, n)
	}
	return out
}

/* =========================================================
   Shared plumbing for the HTTP providers
========================================================= */

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func unexpectedStatus(provider string, code int) error {
	return fmt.Errorf("%s: unexpected http status %d", provider, code)
}
