package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"feespay_backend/internals/features/payments/model"
)

const paystackDefaultBaseURL = "https://api.paystack.co"

// Paystack talks to the Paystack transaction API. Amounts cross the wire
// in kobo.
type Paystack struct {
	SecretKey string
	BaseURL   string
	client    *http.Client
}

func NewPaystack(secretKey string) *Paystack {
	return &Paystack{
		SecretKey: secretKey,
		BaseURL:   paystackDefaultBaseURL,
		client:    newHTTPClient(),
	}
}

func (p *Paystack) Name() model.GatewayProvider { return model.GatewayPaystack }

type paystackInitReq struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"` // kobo
	Reference string `json:"reference"`
	Currency  string `json:"currency,omitempty"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *Paystack) StartTransaction(ctx context.Context, req StartRequest) (*RedirectTarget, error) {
	body, _ := json.Marshal(paystackInitReq{
		Email:     req.Email,
		Amount:    req.Amount * 100,
		Reference: req.Reference,
		Currency:  req.Currency,
	})

	env, err := p.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("paystack: initialize rejected: %s", env.Message)
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack: malformed initialize response: %w", err)
	}
	if data.AuthorizationURL == "" {
		return nil, fmt.Errorf("paystack: initialize response missing authorization_url")
	}
	return &RedirectTarget{
		CheckoutURL: data.AuthorizationURL,
		ProviderRef: data.AccessCode,
	}, nil
}

func (p *Paystack) CheckStatus(ctx context.Context, reference string) (*Outcome, error) {
	env, err := p.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("paystack: verify rejected: %s", env.Message)
	}

	var data struct {
		Status          string `json:"status"`
		Amount          int64  `json:"amount"` // kobo
		GatewayResponse string `json:"gateway_response"`
		ID              int64  `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack: malformed verify response: %w", err)
	}

	out := &Outcome{
		Amount:          data.Amount / 100,
		ProviderRef:     fmt.Sprintf("%d", data.ID),
		ProviderCode:    data.Status,
		ProviderMessage: data.GatewayResponse,
	}
	switch strings.ToLower(data.Status) {
	case "success":
		out.Status = OutcomeSuccessful
	case "failed", "reversed":
		out.Status = OutcomeFailed
	default:
		// abandoned / ongoing / queued / pending: not final yet
		out.Status = OutcomePending
	}
	return out, nil
}

func (p *Paystack) do(ctx context.Context, method, path string, body io.Reader) (*paystackEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 500 {
		return nil, unexpectedStatus("paystack", resp.StatusCode)
	}

	var env paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("paystack: malformed response: %w", err)
	}
	return &env, nil
}
