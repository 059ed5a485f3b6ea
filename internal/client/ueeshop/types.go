package ueeshop

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Fields is one raw record from the gateway kept as a loose field bag.
// The vendor renames fields across schema versions (OId/Oid/oid, ...), so
// callers coalesce aliases explicitly instead of relying on struct tags,
// which match case-insensitively in encoding/json.
type Fields map[string]json.RawMessage

func (f Fields) Has(key string) bool {
	raw, ok := f[key]
	return ok && string(raw) != "null"
}

// Str returns the first non-empty string value among the given keys,
// trimmed. Numeric values are rendered in their literal form.
func (f Fields) Str(keys ...string) string {
	for _, k := range keys {
		raw, ok := f[k]
		if !ok || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if t := strings.TrimSpace(s); t != "" {
				return t
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil && n.String() != "" {
			return n.String()
		}
	}
	return ""
}

// Sec parses the first usable value among the given keys as epoch seconds.
func (f Fields) Sec(keys ...string) int64 {
	s := f.Str(keys...)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(fl)
	}
	return 0
}

func (f Fields) Int(keys ...string) int {
	return int(f.Sec(keys...))
}

// Money returns the first parseable decimal among the given keys. The
// gateway sends amounts as strings or bare numbers depending on endpoint.
func (f Fields) Money(keys ...string) decimal.Decimal {
	for _, k := range keys {
		raw, ok := f[k]
		if !ok || string(raw) == "null" {
			continue
		}
		if d, ok := parseDecimal(raw); ok {
			return d
		}
	}
	return decimal.Zero
}

func parseDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	var fl float64
	if err := json.Unmarshal(raw, &fl); err == nil {
		return decimal.NewFromFloat(fl), true
	}
	return decimal.Decimal{}, false
}

// RawOrder is one record from sync_get_orders. Some gateway deployments
// nest the order fields under "orders" with sibling line-item and package
// arrays, others inline everything at the top level.
type RawOrder struct {
	Order    Fields
	Items    []Fields
	Packages []Fields
}

func (r *RawOrder) UnmarshalJSON(b []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return err
	}

	if nested, ok := top["orders"]; ok && string(nested) != "null" {
		if err := json.Unmarshal(nested, &r.Order); err != nil {
			return err
		}
	} else {
		order := make(Fields, len(top))
		for k, v := range top {
			switch k {
			case "orders_products_list", "items", "orders_package_info":
				continue
			}
			order[k] = v
		}
		r.Order = order
	}

	if raw, ok := top["orders_products_list"]; ok {
		if err := json.Unmarshal(raw, &r.Items); err != nil {
			return err
		}
	} else if raw, ok := top["items"]; ok {
		if err := json.Unmarshal(raw, &r.Items); err != nil {
			return err
		}
	}

	if raw, ok := top["orders_package_info"]; ok {
		if err := json.Unmarshal(raw, &r.Packages); err != nil {
			return err
		}
	}

	return nil
}

// envelope is the gateway response wrapper. msg is the record array on
// success and usually an error string otherwise.
type envelope struct {
	Ret       int             `json:"ret"`
	Msg       json.RawMessage `json:"msg"`
	TotalPage int             `json:"TotalPage"`
}

func (e *envelope) errMsg() string {
	var s string
	if err := json.Unmarshal(e.Msg, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}
