package types

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationPayload is the immutable body of a quotation message. The mutable
// quotation status and the counter-offer reference live in their own columns.
type QuotationPayload struct {
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Note       string          `json:"note,omitempty"`
	Items      QuotationItems  `json:"items,omitempty"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
}

// Value serializes the quotation payload to JSON.
func (q *QuotationPayload) Value() (driver.Value, error) {
	if q == nil {
		return nil, nil
	}
	return json.Marshal(q)
}

// Scan decodes JSONB into the quotation payload.
func (q *QuotationPayload) Scan(value interface{}) error {
	if value == nil {
		*q = QuotationPayload{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, q)
}

// InvoicePayload references the invoice generated for an order inside an
// invoice message. Amount and status are snapshots taken at generation time.
type InvoicePayload struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
}

// Value serializes the invoice payload to JSON.
func (i *InvoicePayload) Value() (driver.Value, error) {
	if i == nil {
		return nil, nil
	}
	return json.Marshal(i)
}

// Scan decodes JSONB into the invoice payload.
func (i *InvoicePayload) Scan(value interface{}) error {
	if value == nil {
		*i = InvoicePayload{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, i)
}

// DeliveryUpdate is one append-only entry in the order's delivery history.
type DeliveryUpdate struct {
	Status               string    `json:"status"`
	TrackingNumber       string    `json:"tracking_number,omitempty"`
	Carrier              string    `json:"carrier,omitempty"`
	ExpectedDeliveryDate string    `json:"expected_delivery_date,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	UpdatedBy            uuid.UUID `json:"updated_by"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DeliveryUpdates is the append-only history persisted as JSONB.
type DeliveryUpdates []DeliveryUpdate

// Value serializes the history to JSON.
func (d DeliveryUpdates) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

// Scan decodes JSONB into the history slice.
func (d *DeliveryUpdates) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded DeliveryUpdates
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*d = decoded
	return nil
}

// RequestItem is one requested material line on a material request.
type RequestItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
}

// RequestItems is a slice marshaled as JSONB.
type RequestItems []RequestItem

// Value serializes the items to JSON.
func (r RequestItems) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan decodes JSONB into the item slice.
func (r *RequestItems) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded RequestItems
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}
