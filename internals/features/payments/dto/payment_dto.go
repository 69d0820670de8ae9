package dto

import (
	"github.com/google/uuid"

	"feespay_backend/internals/features/payments/model"
	"feespay_backend/internals/features/payments/service"
)

/* =========================================================
   Requests
========================================================= */

type InitiateRequest struct {
	// Single fee or a batch; both spellings are accepted.
	FeeID   string   `json:"fee_id" validate:"omitempty,uuid4"`
	FeeIDs  []string `json:"fee_ids" validate:"omitempty,dive,uuid4"`
	Percent int      `json:"percent" validate:"required,oneof=25 50 75 100"`
	Gateway string   `json:"gateway" validate:"required,oneof=paystack flutterwave global midtrans"`

	StudentEmail string `json:"student_email" validate:"omitempty,email"`
	StudentName  string `json:"student_name" validate:"omitempty,max=255"`
	Level        string `json:"level" validate:"omitempty,oneof=L100 L200 L300 L400 L500 L600"`
	JambNumber   string `json:"jamb_number" validate:"omitempty,max=64"`
	MatricNumber string `json:"matric_number" validate:"omitempty,max=64"`
	PhoneNumber  string `json:"phone_number" validate:"omitempty,max=16"`
	Address      string `json:"address" validate:"omitempty,max=255"`

	OriginalReference string `json:"original_reference" validate:"omitempty,max=128"`
}

func (r *InitiateRequest) ToInput() (service.InitiateInput, error) {
	raw := r.FeeIDs
	if r.FeeID != "" {
		raw = append([]string{r.FeeID}, raw...)
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return service.InitiateInput{}, err
		}
		ids = append(ids, id)
	}
	return service.InitiateInput{
		FeeIDs:            ids,
		Percent:           r.Percent,
		Gateway:           model.GatewayProvider(r.Gateway),
		StudentEmail:      r.StudentEmail,
		StudentName:       r.StudentName,
		Level:             r.Level,
		JambNumber:        r.JambNumber,
		MatricNumber:      r.MatricNumber,
		PhoneNumber:       r.PhoneNumber,
		Address:           r.Address,
		OriginalReference: r.OriginalReference,
	}, nil
}

type BalanceProcessRequest struct {
	Reference   string `json:"reference" validate:"required,max=128"`
	Gateway     string `json:"gateway" validate:"required,oneof=paystack flutterwave global midtrans"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=16"`
}

/* =========================================================
   Responses
========================================================= */

type PaymentResponse struct {
	PaymentID       uuid.UUID               `json:"payment_id"`
	TransactionRef  string                  `json:"transaction_ref"`
	OriginalRef     *string                 `json:"original_ref,omitempty"`
	Status          model.PaymentStatus     `json:"status"`
	Gateway         model.GatewayProvider   `json:"gateway"`
	Percent         int                     `json:"percent"`
	AmountPayable   int64                   `json:"amount_payable"`
	AmountPaid      *int64                  `json:"amount_paid,omitempty"`
	Currency        string                  `json:"currency"`
	StudentEmail    string                  `json:"student_email"`
	StudentName     *string                 `json:"student_name,omitempty"`
	StudentLevel    *string                 `json:"student_level,omitempty"`
	MatricNumber    *string                 `json:"matric_number,omitempty"`
	JambNumber      *string                 `json:"jamb_number,omitempty"`
	CheckoutURL     *string                 `json:"checkout_url,omitempty"`
	ProviderRef     *string                 `json:"provider_ref,omitempty"`
	ProviderCode    *string                 `json:"provider_code,omitempty"`
	ProviderMessage *string                 `json:"provider_message,omitempty"`
	Items           []model.FeeSnapshotItem `json:"items"`
	VerifiedAt      *string                 `json:"verified_at,omitempty"`
	CreatedAt       string                  `json:"created_at"`
}

func FromModel(p *model.Payment) PaymentResponse {
	items, _ := p.Snapshot()
	resp := PaymentResponse{
		PaymentID:       p.PaymentID,
		TransactionRef:  p.PaymentTransactionRef,
		OriginalRef:     p.PaymentOriginalRef,
		Status:          p.PaymentStatus,
		Gateway:         p.PaymentGateway,
		Percent:         p.PaymentPercent,
		AmountPayable:   p.PaymentAmountPayable,
		AmountPaid:      p.PaymentAmountPaid,
		Currency:        p.PaymentCurrency,
		StudentEmail:    p.PaymentStudentEmail,
		StudentName:     p.PaymentStudentName,
		StudentLevel:    p.PaymentStudentLevel,
		MatricNumber:    p.PaymentMatricNumber,
		JambNumber:      p.PaymentJambNumber,
		CheckoutURL:     p.PaymentCheckoutURL,
		ProviderRef:     p.PaymentProviderRef,
		ProviderCode:    p.PaymentProviderCode,
		ProviderMessage: p.PaymentProviderMessage,
		Items:           items,
		CreatedAt:       p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if p.PaymentVerifiedAt != nil {
		v := p.PaymentVerifiedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.VerifiedAt = &v
	}
	return resp
}

type BalanceResponse struct {
	TransactionRef string                  `json:"transaction_ref"`
	Status         model.PaymentStatus     `json:"status"`
	TotalAmount    int64                   `json:"total_amount"`
	AmountPaid     int64                   `json:"amount_paid"`
	BalanceDue     int64                   `json:"balance_due"`
	PercentagePaid float64                 `json:"percentage_paid"`
	Items          []model.FeeSnapshotItem `json:"items"`
	Records        []PaymentResponse       `json:"records"`
}

func FromChain(b *service.ChainBalance) BalanceResponse {
	resp := BalanceResponse{
		TransactionRef: b.RootReference,
		TotalAmount:    b.TotalAmountDue,
		AmountPaid:     b.TotalAmountPaid,
		BalanceDue:     b.BalanceDue,
		PercentagePaid: b.PercentagePaid,
		Items:          b.Items,
	}
	// Chain is settled when nothing remains, otherwise it carries the
	// root record's status.
	if b.BalanceDue == 0 && b.TotalAmountDue > 0 {
		resp.Status = model.PaymentStatusSuccessful
	} else if len(b.Records) > 0 {
		resp.Status = b.Records[0].PaymentStatus
	}
	for i := range b.Records {
		resp.Records = append(resp.Records, FromModel(&b.Records[i]))
	}
	return resp
}
