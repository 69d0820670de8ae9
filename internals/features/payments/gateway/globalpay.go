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

// GlobalPay is the institution's bank-provided gateway. Its API reports
// outcomes through responseCode/responseMessage pairs ("00" = approved)
// and is the only provider that insists on an 11-digit phone number.
type GlobalPay struct {
	MerchantID string
	APIKey     string
	BaseURL    string
	client     *http.Client
}

func NewGlobalPay(merchantID, apiKey, baseURL string) *GlobalPay {
	return &GlobalPay{
		MerchantID: merchantID,
		APIKey:     apiKey,
		BaseURL:    baseURL,
		client:     newHTTPClient(),
	}
}

func (g *GlobalPay) Name() model.GatewayProvider { return model.GatewayGlobalPay }

func (g *GlobalPay) StartTransaction(ctx context.Context, req StartRequest) (*RedirectTarget, error) {
	payload := map[string]any{
		"merchantId":  g.MerchantID,
		"txnref":      req.Reference,
		"amount":      req.Amount,
		"currency":    req.Currency,
		"email":       req.Email,
		"name":        req.Name,
		"phoneNumber": req.Phone,
		"address":     req.Address,
	}
	body, _ := json.Marshal(payload)

	raw, err := g.do(ctx, http.MethodPost, "/payment/initiate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	// GlobalPay has shipped both paymentUrl and link over the years;
	// accept either.
	var data struct {
		ResponseCode    string `json:"responseCode"`
		ResponseMessage string `json:"responseMessage"`
		PaymentURL      string `json:"paymentUrl"`
		Link            string `json:"link"`
		GlobalpayRef    string `json:"globalpay_ref"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("globalpay: malformed initiate response: %w", err)
	}
	if data.ResponseCode != "" && data.ResponseCode != "00" {
		return nil, fmt.Errorf("globalpay: initiate declined (%s): %s", data.ResponseCode, data.ResponseMessage)
	}
	checkout := data.PaymentURL
	if checkout == "" {
		checkout = data.Link
	}
	if checkout == "" {
		return nil, fmt.Errorf("globalpay: initiate response missing payment url")
	}
	return &RedirectTarget{CheckoutURL: checkout, ProviderRef: data.GlobalpayRef}, nil
}

func (g *GlobalPay) CheckStatus(ctx context.Context, reference string) (*Outcome, error) {
	path := "/payment/query?merchantId=" + url.QueryEscape(g.MerchantID) + "&txnref=" + url.QueryEscape(reference)
	raw, err := g.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		ResponseCode    string  `json:"responseCode"`
		ResponseMessage string  `json:"responseMessage"`
		Status          string  `json:"status"`
		Amount          float64 `json:"amount"`
		GlobalpayRef    string  `json:"globalpay_ref"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("globalpay: malformed query response: %w", err)
	}

	out := &Outcome{
		Amount:          int64(data.Amount + 0.5),
		ProviderRef:     data.GlobalpayRef,
		ProviderCode:    data.ResponseCode,
		ProviderMessage: data.ResponseMessage,
	}
	switch {
	case data.ResponseCode == "00" || strings.EqualFold(data.Status, "successful"):
		out.Status = OutcomeSuccessful
	case data.ResponseCode == "09" || strings.EqualFold(data.Status, "pending"):
		out.Status = OutcomePending
	default:
		out.Status = OutcomeFailed
	}
	return out, nil
}

func (g *GlobalPay) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("globalpay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 500 {
		return nil, unexpectedStatus("globalpay", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("globalpay: %w", err)
	}
	return json.RawMessage(raw), nil
}
