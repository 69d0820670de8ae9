package gateway

import (
	"context"
	"errors"
	"strconv"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"feespay_backend/internals/features/payments/model"
)

// Midtrans wraps the official SDK: Snap for checkout, Core API for the
// authoritative status check. Kept for institutions collecting from
// students abroad through Midtrans-acquired channels.
type Midtrans struct {
	snapClient snap.Client
	coreClient coreapi.Client
}

func NewMidtrans(serverKey string, production bool) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	m := &Midtrans{}
	m.snapClient.New(serverKey, env)
	m.coreClient.New(serverKey, env)
	return m
}

func (m *Midtrans) Name() model.GatewayProvider { return model.GatewayMidtrans }

func (m *Midtrans) StartTransaction(ctx context.Context, req StartRequest) (*RedirectTarget, error) {
	if req.Amount <= 0 {
		return nil, errors.New("midtrans: amount must be positive")
	}
	sreq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.Reference,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Name,
			Email: req.Email,
			Phone: req.Phone,
		},
	}
	resp, err := m.snapClient.CreateTransaction(sreq)
	if err != nil {
		return nil, err
	}
	return &RedirectTarget{
		CheckoutURL: resp.RedirectURL,
		ProviderRef: resp.Token,
	}, nil
}

func (m *Midtrans) CheckStatus(ctx context.Context, reference string) (*Outcome, error) {
	resp, err := m.coreClient.CheckTransaction(reference)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		ProviderRef:     resp.TransactionID,
		ProviderCode:    resp.StatusCode,
		ProviderMessage: resp.StatusMessage,
	}
	if amt, perr := strconv.ParseFloat(resp.GrossAmount, 64); perr == nil {
		out.Amount = int64(amt + 0.5)
	}
	out.Status = mapMidtransStatus(resp.TransactionStatus, resp.FraudStatus)
	return out, nil
}

// mapMidtransStatus folds the transaction_status / fraud_status pair into
// the normalized outcome vocabulary.
func mapMidtransStatus(transactionStatus, fraudStatus string) OutcomeStatus {
	ts := strings.ToLower(transactionStatus)
	fraud := strings.ToLower(fraudStatus)

	switch ts {
	case "capture":
		if fraud == "accept" {
			return OutcomeSuccessful
		}
		if fraud == "challenge" {
			return OutcomePending
		}
		return OutcomeFailed
	case "settlement":
		return OutcomeSuccessful
	case "pending", "authorize":
		return OutcomePending
	case "deny", "cancel", "expire", "failure":
		return OutcomeFailed
	}
	return OutcomePending
}
