package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"feespay_backend/internals/features/payments/gateway"
	"feespay_backend/internals/features/payments/model"
)

// AllowedPercents are the only installment fractions the business
// accepts for a fresh payment.
var AllowedPercents = []int{25, 50, 75, 100}

var phoneElevenDigits = regexp.MustCompile(`^\d{11}$`)

type InitiateInput struct {
	FeeIDs  []uuid.UUID
	Percent int
	Gateway model.GatewayProvider

	StudentEmail string
	StudentName  string
	Level        string
	JambNumber   string
	MatricNumber string
	PhoneNumber  string
	Address      string

	// Set when this transaction settles the balance of an earlier chain.
	OriginalReference string

	// Optional explicit settlement amount (balance flow only). When
	// zero the amount falls out of Percent as usual.
	SettlementAmount int64
}

type InitiateResult struct {
	PaymentID   uuid.UUID               `json:"payment_id"`
	Reference   string                  `json:"reference"`
	Gateway     model.GatewayProvider   `json:"gateway"`
	RedirectURL string                  `json:"redirect_url"`
}

// Initiate validates eligibility, computes the payable amount, creates a
// pending record and opens the gateway checkout. Exactly one record is
// created per successful call; a failed gateway call keeps the pending
// record so the student can retry verification later.
func (s *PaymentService) Initiate(ctx context.Context, in InitiateInput) (*InitiateResult, error) {
	if strings.TrimSpace(in.StudentEmail) == "" && in.OriginalReference == "" {
		return nil, Validationf("student email is required")
	}
	if !percentAllowed(in.Percent) {
		return nil, Validationf("unsupported percent value %d", in.Percent)
	}

	adapter, ok := s.gateways.Get(in.Gateway)
	if !ok {
		return nil, Validationf("unsupported gateway %q", in.Gateway)
	}
	if err := validateGatewayFields(in.Gateway, in.PhoneNumber, in.Address); err != nil {
		return nil, err
	}

	var (
		snapshot model.FeeSnapshot
		payable  int64
		percent  = in.Percent
	)

	if in.OriginalReference != "" {
		root, balanceDue, err := s.loadChainForSettlement(ctx, in.OriginalReference)
		if err != nil {
			return nil, err
		}
		snapshot, err = root.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("decode fee snapshot: %w", err)
		}
		payable = ComputePayable(snapshot.Total(), percent)
		if in.SettlementAmount > 0 {
			payable = in.SettlementAmount
		}
		if payable > balanceDue {
			return nil, Conflictf("requested amount %d exceeds balance due %d", payable, balanceDue)
		}
		fillIdentityFromRoot(&in, root)
	} else {
		if len(in.FeeIDs) == 0 {
			return nil, Validationf("at least one fee is required")
		}
		fees, err := s.fees.FeesByIDs(ctx, in.FeeIDs)
		if err != nil {
			return nil, err
		}
		if len(fees) != len(in.FeeIDs) {
			return nil, NotFoundf("one or more fees not found")
		}
		for _, f := range fees {
			if !f.EligibleFor(in.Level) {
				return nil, Validationf("fee %q is not open to level %q", f.Category, in.Level)
			}
			snapshot = append(snapshot, model.FeeSnapshotItem{
				FeeID:       f.FeeID,
				FeeCategory: f.Category,
				Amount:      f.Amount,
			})
		}
		payable = ComputePayable(snapshot.Total(), percent)
	}

	if payable <= 0 {
		return nil, Validationf("payable amount must be positive")
	}

	p := &model.Payment{
		PaymentTransactionRef: GenReference(s.refPrefix),
		PaymentAmountPayable:  payable,
		PaymentPercent:        percent,
		PaymentCurrency:       "NGN",
		PaymentStatus:         model.PaymentStatusPending,
		PaymentGateway:        in.Gateway,
		PaymentStudentEmail:   strings.TrimSpace(in.StudentEmail),
		PaymentStudentName:    optional(in.StudentName),
		PaymentStudentLevel:   optional(in.Level),
		PaymentJambNumber:     optional(in.JambNumber),
		PaymentMatricNumber:   optional(in.MatricNumber),
		PaymentPhoneNumber:    optional(in.PhoneNumber),
		PaymentAddress:        optional(in.Address),
	}
	if in.OriginalReference != "" {
		ref := in.OriginalReference
		p.PaymentOriginalRef = &ref
	}
	if err := p.SetSnapshot(snapshot); err != nil {
		return nil, fmt.Errorf("encode fee snapshot: %w", err)
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment record: %w", err)
	}

	target, err := adapter.StartTransaction(ctx, gateway.StartRequest{
		Reference: p.PaymentTransactionRef,
		Amount:    payable,
		Currency:  p.PaymentCurrency,
		Email:     p.PaymentStudentEmail,
		Name:      in.StudentName,
		Phone:     in.PhoneNumber,
		Address:   in.Address,
	})
	if err != nil {
		// The pending record stays: deleting it would orphan the
		// reference. The caller can retry verification later.
		return nil, GatewayErr(err, "gateway initiation failed for reference %s", p.PaymentTransactionRef)
	}

	p.PaymentCheckoutURL = optional(target.CheckoutURL)
	p.PaymentProviderRef = optional(target.ProviderRef)
	if err := s.store.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("persist redirect target: %w", err)
	}

	return &InitiateResult{
		PaymentID:   p.PaymentID,
		Reference:   p.PaymentTransactionRef,
		Gateway:     p.PaymentGateway,
		RedirectURL: target.CheckoutURL,
	}, nil
}

type BalanceInput struct {
	Reference   string
	Gateway     model.GatewayProvider
	PhoneNumber string
}

// InitiateBalance opens a settlement transaction for the whole
// outstanding balance of a chain. The reference may name any record in
// the chain; the child is always linked to the root.
func (s *PaymentService) InitiateBalance(ctx context.Context, in BalanceInput) (*InitiateResult, error) {
	if strings.TrimSpace(in.Reference) == "" {
		return nil, Validationf("reference is required")
	}

	rec, err := s.store.GetByReference(ctx, strings.TrimSpace(in.Reference))
	if err != nil {
		if err == ErrNotFound {
			return nil, NotFoundf("payment %q not found", in.Reference)
		}
		return nil, err
	}
	rootRef := rec.PaymentTransactionRef
	if !rec.IsRoot() {
		rootRef = *rec.PaymentOriginalRef
	}

	chain, err := s.ResolveChain(ctx, rootRef)
	if err != nil {
		return nil, err
	}
	if chain.BalanceDue <= 0 {
		return nil, Conflictf("balance already settled for %s", rootRef)
	}

	// Percent implied by the outstanding balance.
	percent := remainingPercent(chain.TotalAmountDue, chain.BalanceDue)

	return s.Initiate(ctx, InitiateInput{
		Percent:           percent,
		Gateway:           in.Gateway,
		PhoneNumber:       in.PhoneNumber,
		OriginalReference: rootRef,
		SettlementAmount:  chain.BalanceDue,
	})
}

/* =========================================================
   Internals
========================================================= */

func (s *PaymentService) loadChainForSettlement(ctx context.Context, rootRef string) (*model.Payment, int64, error) {
	root, err := s.store.GetByReference(ctx, rootRef)
	if err != nil {
		if err == ErrNotFound {
			return nil, 0, NotFoundf("original reference %q not found", rootRef)
		}
		return nil, 0, err
	}
	if !root.IsRoot() {
		return nil, 0, Validationf("original reference must be the chain root")
	}

	chain, err := s.ResolveChain(ctx, rootRef)
	if err != nil {
		return nil, 0, err
	}
	if chain.BalanceDue <= 0 {
		return nil, 0, Conflictf("balance already settled for %s", rootRef)
	}
	return root, chain.BalanceDue, nil
}

func percentAllowed(p int) bool {
	for _, a := range AllowedPercents {
		if p == a {
			return true
		}
	}
	return false
}

// remainingPercent picks the smallest allowed percent that covers the
// outstanding balance, so a half-paid chain settles with a 50 and odd
// remainders round up to the next step.
func remainingPercent(totalDue, balanceDue int64) int {
	for _, p := range AllowedPercents {
		if ComputePayable(totalDue, p) >= balanceDue {
			return p
		}
	}
	return 100
}

func validateGatewayFields(gw model.GatewayProvider, phone, address string) error {
	if gw != model.GatewayGlobalPay {
		return nil
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return Validationf("phone number is required for globalpay")
	}
	if !phoneElevenDigits.MatchString(phone) {
		return Validationf("phone number must be exactly 11 digits")
	}
	if address != "" && len(strings.TrimSpace(address)) < 6 {
		return Validationf("address must be at least 6 characters")
	}
	return nil
}

func fillIdentityFromRoot(in *InitiateInput, root *model.Payment) {
	if strings.TrimSpace(in.StudentEmail) == "" {
		in.StudentEmail = root.PaymentStudentEmail
	}
	if in.StudentName == "" && root.PaymentStudentName != nil {
		in.StudentName = *root.PaymentStudentName
	}
	if in.Level == "" && root.PaymentStudentLevel != nil {
		in.Level = *root.PaymentStudentLevel
	}
	if in.JambNumber == "" && root.PaymentJambNumber != nil {
		in.JambNumber = *root.PaymentJambNumber
	}
	if in.MatricNumber == "" && root.PaymentMatricNumber != nil {
		in.MatricNumber = *root.PaymentMatricNumber
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
