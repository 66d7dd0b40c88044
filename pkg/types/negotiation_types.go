package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// QuotationItem is a single priced line inside a quotation payload.
type QuotationItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// QuotationItems is a slice marshaled as JSONB.
type QuotationItems []QuotationItem

// Value serializes the items to JSON.
func (q QuotationItems) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q)
}

// Scan decodes JSONB into the item slice.
func (q *QuotationItems) Scan(value interface{}) error {
	if value == nil {
		*q = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded QuotationItems
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*q = decoded
	return nil
}

// Sum returns the total across all lines.
func (q QuotationItems) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range q {
		sum = sum.Add(item.Total)
	}
	return sum
}

// DeliveryInfo stores the vendor-submitted delivery details as JSONB on a
// delivery message payload.
type DeliveryInfo struct {
	Carrier              string `json:"carrier,omitempty"`
	TrackingNumber       string `json:"tracking_number,omitempty"`
	ExpectedDeliveryDate string `json:"expected_delivery_date,omitempty"`
	Notes                string `json:"notes,omitempty"`
}

// Value serializes the delivery info to JSON.
func (d *DeliveryInfo) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan decodes JSONB into the delivery info struct.
func (d *DeliveryInfo) Scan(value interface{}) error {
	if value == nil {
		*d = DeliveryInfo{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, d)
}

// JSONMap stores an arbitrary JSON object inside a JSONB column.
type JSONMap map[string]any

// Value serializes the map to JSON.
func (j *JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan decodes JSONB into the map.
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded JSONMap
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*j = decoded
	return nil
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
