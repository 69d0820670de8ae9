package controller

import (
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"feespay_backend/internals/configs"
	"feespay_backend/internals/features/payments/dto"
	"feespay_backend/internals/features/payments/model"
	"feespay_backend/internals/features/payments/service"
	helpers "feespay_backend/internals/helpers"
)

type PaymentController struct {
	Service   *service.PaymentService
	Store     service.Store
	Validator *validator.Validate
}

func NewPaymentController(svc *service.PaymentService, store service.Store, v *validator.Validate) *PaymentController {
	return &PaymentController{Service: svc, Store: store, Validator: v}
}

/* =========================================================
   Initiation
========================================================= */

func (ctl *PaymentController) Initiate(c *fiber.Ctx) error {
	var req dto.InitiateRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helpers.JsonValidationError(c, err)
	}

	in, err := req.ToInput()
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	res, err := ctl.Service.Initiate(c.UserContext(), in)
	if err != nil {
		return ctl.serviceError(c, err)
	}
	return helpers.JsonCreated(c, res)
}

// BalanceInitiate opens a settlement transaction for whatever remains on
// a chain. The reference may name any record in the chain.
func (ctl *PaymentController) BalanceInitiate(c *fiber.Ctx) error {
	var req dto.BalanceProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helpers.JsonValidationError(c, err)
	}

	res, err := ctl.Service.InitiateBalance(c.UserContext(), service.BalanceInput{
		Reference:   req.Reference,
		Gateway:     model.GatewayProvider(req.Gateway),
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return ctl.serviceError(c, err)
	}
	return helpers.JsonCreated(c, res)
}

/* =========================================================
   Verification & lookups
========================================================= */

// Verify reconciles a reference against the gateway. Safe to call any
// number of times; the gateway is only consulted while the record is
// still pending.
func (ctl *PaymentController) Verify(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return helpers.JsonError(c, fiber.StatusBadRequest, "reference is required")
	}
	gw := model.GatewayProvider(strings.TrimSpace(c.Query("gateway")))

	res, err := ctl.Service.Verify(c.UserContext(), reference, gw)
	if err != nil {
		return ctl.serviceError(c, err)
	}
	return helpers.JsonOK(c, res)
}

func (ctl *PaymentController) LookupByRef(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return helpers.JsonError(c, fiber.StatusBadRequest, "reference is required")
	}

	p, err := ctl.Store.GetByReference(c.UserContext(), reference)
	if err != nil {
		if err == service.ErrNotFound {
			return helpers.JsonError(c, fiber.StatusNotFound, "payment not found")
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "failed to load payment")
	}
	return helpers.JsonOK(c, dto.FromModel(p))
}

func (ctl *PaymentController) BalanceByRef(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return helpers.JsonError(c, fiber.StatusBadRequest, "reference is required")
	}

	chain, err := ctl.Service.ResolveChain(c.UserContext(), reference)
	if err != nil {
		return ctl.serviceError(c, err)
	}
	return helpers.JsonOK(c, dto.FromChain(chain))
}

/* =========================================================
   Webhook
========================================================= */

// referenceKeys are the names gateways use for the transaction reference
// in callbacks, in lookup order.
var referenceKeys = []string{"reference", "tx_ref", "txnref", "globalpay_ref", "Ref", "order_id"}

// Webhook receives gateway callbacks. The payload is recorded, the
// reference extracted and the record re-verified against the gateway's
// query API; the callback body itself is never trusted for state.
func (ctl *PaymentController) Webhook(c *fiber.Ctx) error {
	gw := model.GatewayProvider(strings.ToLower(c.Params("gateway")))

	body := map[string]any{}
	_ = json.Unmarshal(c.Body(), &body)

	if gw == model.GatewayMidtrans {
		if err := verifyMidtransSignature(body); err != nil {
			return helpers.JsonError(c, fiber.StatusUnauthorized, "invalid signature")
		}
	}

	reference := extractReference(c, body)
	ev := ctl.buildWebhookEvent(c, gw, reference)

	if reference == "" {
		ev.GatewayEventStatus = model.GatewayEventIgnored
		msg := "no reference in callback"
		ev.GatewayEventError = &msg
		_ = ctl.Store.AppendEvent(c.UserContext(), ev)
		return helpers.JsonOK(c, fiber.Map{"status": "ignored", "reason": msg})
	}

	res, err := ctl.Service.Verify(c.UserContext(), reference, gw)
	if err != nil {
		kind, known := service.KindOf(err)
		msg := err.Error()
		ev.GatewayEventError = &msg
		if known && kind == service.KindNotFound {
			// Answer 200 so the gateway stops retrying an unknown ref.
			ev.GatewayEventStatus = model.GatewayEventIgnored
			_ = ctl.Store.AppendEvent(c.UserContext(), ev)
			return helpers.JsonOK(c, fiber.Map{"status": "ignored", "reason": "payment not found"})
		}
		ev.GatewayEventStatus = model.GatewayEventFailed
		_ = ctl.Store.AppendEvent(c.UserContext(), ev)
		return ctl.serviceError(c, err)
	}

	ev.GatewayEventStatus = model.GatewayEventProcessed
	_ = ctl.Store.AppendEvent(c.UserContext(), ev)
	return helpers.JsonOK(c, res)
}

func (ctl *PaymentController) buildWebhookEvent(c *fiber.Ctx, gw model.GatewayProvider, reference string) *model.GatewayEvent {
	headers := map[string]string{}
	for k, v := range c.GetReqHeaders() {
		headers[k] = strings.Join(v, ",")
	}
	headersJSON, _ := json.Marshal(headers)

	ev := &model.GatewayEvent{
		GatewayEventProvider: gw,
		GatewayEventKind:     "webhook",
		GatewayEventPayload:  datatypes.JSON(c.Body()),
		GatewayEventHeaders:  datatypes.JSON(headersJSON),
		GatewayEventStatus:   model.GatewayEventReceived,
	}
	if reference != "" {
		ev.GatewayEventReference = &reference
	}
	return ev
}

// extractReference checks the query string first (redirect callbacks),
// then the JSON body (server-to-server notifications).
func extractReference(c *fiber.Ctx, body map[string]any) string {
	for _, key := range referenceKeys {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			return v
		}
	}
	for _, key := range referenceKeys {
		if v, ok := body[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// verifyMidtransSignature checks SHA512(order_id + status_code +
// gross_amount + server key) against the signature_key field.
func verifyMidtransSignature(body map[string]any) error {
	want, _ := body["signature_key"].(string)
	orderID, _ := body["order_id"].(string)
	statusCode, _ := body["status_code"].(string)
	grossAmount, _ := body["gross_amount"].(string)

	raw := orderID + statusCode + grossAmount + configs.MidtransServerKey
	sum := sha512.Sum512([]byte(raw))
	got := hex.EncodeToString(sum[:])
	if want == "" || !strings.EqualFold(got, want) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
	}
	return nil
}

/* =========================================================
   Admin listing
========================================================= */

func (ctl *PaymentController) List(c *fiber.Ctx) error {
	paging := helpers.ResolvePaging(c, 20, 100)

	f := service.ListFilter{
		Offset: paging.Offset,
		Limit:  paging.Limit,
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		st := model.PaymentStatus(v)
		f.Status = &st
	}
	if v := strings.TrimSpace(c.Query("gateway")); v != "" {
		gw := model.GatewayProvider(v)
		f.Gateway = &gw
	}
	if v := strings.TrimSpace(c.Query("email")); v != "" {
		f.Email = &v
	}

	records, total, err := ctl.Store.List(c.UserContext(), f)
	if err != nil {
		log.Printf("[PAYMENTS] list failed: %v", err)
		return helpers.JsonError(c, fiber.StatusInternalServerError, "failed to list payments")
	}

	out := make([]dto.PaymentResponse, 0, len(records))
	for i := range records {
		out = append(out, dto.FromModel(&records[i]))
	}
	return helpers.JsonOK(c, fiber.Map{
		"payments":   out,
		"pagination": helpers.BuildPagination(total, paging.Page, paging.PerPage),
	})
}

/* =========================================================
   Error mapping
========================================================= */

func (ctl *PaymentController) serviceError(c *fiber.Ctx, err error) error {
	status := service.HTTPStatus(err)
	var svcErr *service.Error
	if errors.As(err, &svcErr) && len(svcErr.Details) > 0 {
		return helpers.JsonErrorWithDetails(c, status, svcErr.Message, svcErr.Details)
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("[PAYMENTS] internal error: %v", err)
		return helpers.JsonError(c, status, "internal server error")
	}
	return helpers.JsonError(c, status, err.Error())
}
