package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Criterion names a product attribute a custom report may filter on
type Criterion string

const (
	CriterionSKU       Criterion = "sku"
	CriterionName      Criterion = "name"
	CriterionBrand     Criterion = "brand"
	CriterionModel     Criterion = "model"
	CriterionCategory  Criterion = "category"
	CriterionColor     Criterion = "color"
	CriterionPrice     Criterion = "price"
	CriterionCurrency  Criterion = "currency"
	CriterionStock     Criterion = "stock"
	CriterionCreatedAt Criterion = "createdAt"
	CriterionUpdatedAt Criterion = "updatedAt"
)

var allCriteria = []Criterion{
	CriterionSKU,
	CriterionName,
	CriterionBrand,
	CriterionModel,
	CriterionCategory,
	CriterionColor,
	CriterionPrice,
	CriterionCurrency,
	CriterionStock,
	CriterionCreatedAt,
	CriterionUpdatedAt,
}

// AllCriteria returns the allow-list in declaration order
func AllCriteria() []Criterion {
	out := make([]Criterion, len(allCriteria))
	copy(out, allCriteria)
	return out
}

// ParseCriterion validates a criteria name against the allow-list. Matching is case-sensitive.
func ParseCriterion(s string) (Criterion, error) {
	for _, c := range allCriteria {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrInvalidCriteria.WithMessage(fmt.Sprintf("Invalid criteria: %s", s))
}

// String returns the criterion name
func (c Criterion) String() string {
	return string(c)
}

// IsNumeric reports whether the attribute is stored as a number
func (c Criterion) IsNumeric() bool {
	return c == CriterionPrice || c == CriterionStock
}

// TextValue returns the value of a text attribute of p. It returns false for numeric criteria.
func (c Criterion) TextValue(p *Product) (string, bool) {
	switch c {
	case CriterionSKU:
		return p.SKU, true
	case CriterionName:
		return p.Name, true
	case CriterionBrand:
		return p.Brand, true
	case CriterionModel:
		return p.Model, true
	case CriterionCategory:
		return p.Category, true
	case CriterionColor:
		return p.Color, true
	case CriterionCurrency:
		return p.Currency, true
	case CriterionCreatedAt:
		return p.CreatedAt, true
	case CriterionUpdatedAt:
		return p.UpdatedAt, true
	}
	return "", false
}

// CriterionMatch is an equality predicate over one attribute.
// When the value reads as a number it carries the parsed Number as well as the original Text.
type CriterionMatch struct {
	Criterion Criterion
	Text      string
	Number    decimal.Decimal
	IsNumber  bool
}

// NewCriterionMatch coerces value for criterion c
func NewCriterionMatch(c Criterion, value string) CriterionMatch {
	m := CriterionMatch{Criterion: c, Text: value}
	if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
		m.Number = d
		m.IsNumber = true
	}
	return m
}

// Unsatisfiable reports whether no stored product can match, e.g. a non-numeric
// value for price or a fractional value for stock
func (m CriterionMatch) Unsatisfiable() bool {
	if !m.Criterion.IsNumeric() {
		return false
	}
	if !m.IsNumber {
		return true
	}
	return m.Criterion == CriterionStock && !m.Number.Equal(m.Number.Truncate(0))
}

// Matches evaluates the predicate against p
func (m CriterionMatch) Matches(p *Product) bool {
	if m.Unsatisfiable() {
		return false
	}
	switch m.Criterion {
	case CriterionPrice:
		return p.Price.Valid() && p.Price.Amount.Equal(m.Number)
	case CriterionStock:
		return p.Stock.Valid() && p.Stock.Quantity == m.Number.IntPart()
	}
	v, _ := m.Criterion.TextValue(p)
	return v == m.Text
}
