package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot value helpers. Money and dates leave the models as primitives
// (float64, RFC 3339 string, nil) so the change comparator only ever sees
// directly comparable values.

func moneyValue(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func moneyPtrValue(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}

func timePtrValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
