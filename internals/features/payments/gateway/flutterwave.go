package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"feespay_backend/internals/features/payments/model"
)

const flutterwaveDefaultBaseURL = "https://api.flutterwave.com/v3"

// Flutterwave uses the v3 payments API; transactions are keyed by tx_ref
// (our transaction reference) and amounts are whole currency units.
type Flutterwave struct {
	SecretKey   string
	BaseURL     string
	RedirectURL string
	client      *http.Client
}

func NewFlutterwave(secretKey, redirectURL string) *Flutterwave {
	return &Flutterwave{
		SecretKey:   secretKey,
		BaseURL:     flutterwaveDefaultBaseURL,
		RedirectURL: redirectURL,
		client:      newHTTPClient(),
	}
}

func (f *Flutterwave) Name() model.GatewayProvider { return model.GatewayFlutterwave }

type flwEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *Flutterwave) StartTransaction(ctx context.Context, req StartRequest) (*RedirectTarget, error) {
	payload := map[string]any{
		"tx_ref":       req.Reference,
		"amount":       req.Amount,
		"currency":     req.Currency,
		"redirect_url": f.RedirectURL,
		"customer": map[string]any{
			"email":       req.Email,
			"name":        req.Name,
			"phonenumber": req.Phone,
		},
	}
	body, _ := json.Marshal(payload)

	env, err := f.do(ctx, http.MethodPost, "/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(env.Status, "success") {
		return nil, fmt.Errorf("flutterwave: payment init rejected: %s", env.Message)
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("flutterwave: malformed init response: %w", err)
	}
	if data.Link == "" {
		return nil, fmt.Errorf("flutterwave: init response missing link")
	}
	return &RedirectTarget{CheckoutURL: data.Link}, nil
}

func (f *Flutterwave) CheckStatus(ctx context.Context, reference string) (*Outcome, error) {
	path := "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	env, err := f.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(env.Status, "success") {
		return nil, fmt.Errorf("flutterwave: verify rejected: %s", env.Message)
	}

	var data struct {
		Status            string  `json:"status"`
		Amount            float64 `json:"amount"`
		ChargedAmount     float64 `json:"charged_amount"`
		FlwRef            string  `json:"flw_ref"`
		ProcessorResponse string  `json:"processor_response"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("flutterwave: malformed verify response: %w", err)
	}

	amount := data.Amount
	if amount == 0 {
		amount = data.ChargedAmount
	}
	out := &Outcome{
		Amount:          int64(amount + 0.5),
		ProviderRef:     data.FlwRef,
		ProviderCode:    data.Status,
		ProviderMessage: data.ProcessorResponse,
	}
	switch strings.ToLower(data.Status) {
	case "successful":
		out.Status = OutcomeSuccessful
	case "failed", "cancelled":
		out.Status = OutcomeFailed
	default:
		out.Status = OutcomePending
	}
	return out, nil
}

func (f *Flutterwave) do(ctx context.Context, method, path string, body io.Reader) (*flwEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, f.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flutterwave: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 500 {
		return nil, unexpectedStatus("flutterwave", resp.StatusCode)
	}

	var env flwEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("flutterwave: malformed response: %w", err)
	}
	return &env, nil
}
