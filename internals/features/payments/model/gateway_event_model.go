package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* Audit trail of everything the gateways tell us: webhook deliveries and
   the authoritative checkStatus observations made during verification. */

type GatewayEventStatus string

const (
	GatewayEventReceived  GatewayEventStatus = "received"
	GatewayEventProcessed GatewayEventStatus = "processed"
	GatewayEventIgnored   GatewayEventStatus = "ignored"
	GatewayEventFailed    GatewayEventStatus = "failed"
)

type GatewayEvent struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"gateway_event_id"`

	GatewayEventPaymentID *uuid.UUID      `gorm:"column:gateway_event_payment_id;type:uuid;index" json:"gateway_event_payment_id,omitempty"`
	GatewayEventProvider  GatewayProvider `gorm:"column:gateway_event_provider;type:varchar(16);not null" json:"gateway_event_provider"`

	GatewayEventKind      string  `gorm:"column:gateway_event_kind;type:varchar(16);not null" json:"gateway_event_kind"` // webhook | verify
	GatewayEventReference *string `gorm:"column:gateway_event_reference;index" json:"gateway_event_reference,omitempty"`

	GatewayEventPayload datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload,omitempty"`
	GatewayEventHeaders datatypes.JSON `gorm:"column:gateway_event_headers;type:jsonb" json:"gateway_event_headers,omitempty"`

	GatewayEventStatus GatewayEventStatus `gorm:"column:gateway_event_status;type:varchar(16);not null;default:'received'" json:"gateway_event_status"`
	GatewayEventError  *string            `gorm:"column:gateway_event_error" json:"gateway_event_error,omitempty"`

	CreatedAt time.Time      `gorm:"column:gateway_event_created_at;autoCreateTime" json:"gateway_event_created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:gateway_event_deleted_at;index" json:"gateway_event_deleted_at,omitempty"`
}

func (GatewayEvent) TableName() string { return "gateway_events" }
