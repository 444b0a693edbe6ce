package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MeasureStatus tags how a numeric upstream field was coerced
type MeasureStatus string

const (
	MeasureAbsent   MeasureStatus = "absent"
	MeasureValid    MeasureStatus = "valid"
	MeasureUnparsed MeasureStatus = "unparsed"
)

// Price is a nullable decimal amount. Upstream text that cannot be read as a
// number is kept in Raw with status MeasureUnparsed instead of failing the sync.
type Price struct {
	Amount decimal.Decimal
	Status MeasureStatus
	Raw    string
}

// NewPrice returns a valid price
func NewPrice(amount decimal.Decimal) Price {
	return Price{Amount: amount, Status: MeasureValid}
}

// ParsePrice coerces upstream text into a Price. It never fails.
func ParsePrice(raw string) Price {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Price{Status: MeasureAbsent}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{Status: MeasureUnparsed, Raw: raw}
	}
	return NewPrice(d)
}

// Valid reports whether the price holds a usable amount
func (p Price) Valid() bool {
	return p.Status == MeasureValid
}

// NullDecimal returns the amount as a nullable decimal; only valid prices are non-null
func (p Price) NullDecimal() decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: p.Amount, Valid: p.Valid()}
}

// Stock is a nullable integer quantity with the same tagging as Price
type Stock struct {
	Quantity int64
	Status   MeasureStatus
	Raw      string
}

// NewStock returns a valid stock quantity
func NewStock(qty int64) Stock {
	return Stock{Quantity: qty, Status: MeasureValid}
}

// ParseStock coerces upstream text into a Stock. Decimal text is truncated
// toward zero ("12.7" becomes 12). It never fails.
func ParseStock(raw string) Stock {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Stock{Status: MeasureAbsent}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewStock(n)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Stock{Status: MeasureUnparsed, Raw: raw}
	}
	return NewStock(d.IntPart())
}

// Valid reports whether the stock holds a usable quantity
func (s Stock) Valid() bool {
	return s.Status == MeasureValid
}

// Ptr returns the quantity or nil when not valid
func (s Stock) Ptr() *int64 {
	if !s.Valid() {
		return nil
	}
	q := s.Quantity
	return &q
}
