package service

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"ueesync/internal/client/ueeshop"
)

func jstr(s string) json.RawMessage {
	return json.RawMessage(strconv.Quote(s))
}

func fields(m map[string]string) ueeshop.Fields {
	f := make(ueeshop.Fields, len(m))
	for k, v := range m {
		f[k] = jstr(v)
	}
	return f
}

func TestBuildSlimOrder_Full(t *testing.T) {
	raw := ueeshop.RawOrder{
		Order: fields(map[string]string{
			"OId":                  "1001",
			"OrderTime":            "1700000000",
			"UpdateTime":           "1700000100",
			"PayTime":              "1700000050",
			"OrderStatus":          "3",
			"PaymentStatus":        "paid",
			"ShippingStatus":       "shipped",
			"OrderTotalPrice":      "100.50",
			"PayTotalPrice":        "99",
			"ProductPrice":         "80",
			"ShippingPrice":        "10",
			"TaxPrice":             "5",
			"CouponPrice":          "2",
			"DiscountPrice":        "3",
			"PayFeePrice":          "1.50",
			"PayAdditionalFee":     "0.25",
			"Email":                "jane@example.com",
			"ShippingCountry":      "US",
			"BillCountry":          "CA",
			"ShippingFirstName":    "Jane",
			"ShippingLastName":     "Doe",
			"PayCurrency":          "EUR",
			"ShippingAddressLine1": "1 Main St",
			"ShippingCity":         "Austin",
			"ShippingState":        "TX",
			"ShippingZipCode":      "73301",
			"Comments":             "gift",
			"Remarks":              "vip",
			"TotalWeight":          "2.5",
		}),
		Items: []ueeshop.Fields{
			fields(map[string]string{"ProductId": "P1", "Qty": "2", "Price": "10", "Name": "Ring", "SKU": "R-1"}),
			fields(map[string]string{"ProductId": "P1", "Qty": "1", "Price": "10"}),
			fields(map[string]string{"ProductId": "P2", "Qty": "3", "Price": "20"}),
		},
		Packages: []ueeshop.Fields{
			fields(map[string]string{"ShippingExpress": "DHL", "TrackingNumber": "TN1", "Weight": "1.2"}),
		},
	}

	slim, err := BuildSlimOrder(raw)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if slim.OID != "1001" {
		t.Fatalf("oid=%q", slim.OID)
	}
	if slim.OrderCreatedAt != 1700000000 || slim.SourceUpdatedAt != 1700000100 || slim.PayTime != 1700000050 {
		t.Fatalf("times=%d/%d/%d", slim.OrderCreatedAt, slim.SourceUpdatedAt, slim.PayTime)
	}
	if slim.OrderDate != "2023-11-14" {
		t.Fatalf("order date=%q", slim.OrderDate)
	}
	if !slim.OrderTotalPrice.Equal(decimal.RequireFromString("100.50")) {
		t.Fatalf("total=%s, OrderTotalPrice must win over PayTotalPrice", slim.OrderTotalPrice)
	}
	if !slim.FeePrice.Equal(decimal.RequireFromString("1.75")) {
		t.Fatalf("fee=%s", slim.FeePrice)
	}
	if slim.Currency != "EUR" {
		t.Fatalf("currency=%q", slim.Currency)
	}
	if slim.CustomerName != "Jane Doe" || slim.CustomerCountry != "US" {
		t.Fatalf("customer=%q/%q", slim.CustomerName, slim.CustomerCountry)
	}
	if slim.ShippingAddress != "1 Main St Austin TX 73301 US" {
		t.Fatalf("address=%q", slim.ShippingAddress)
	}
	if slim.ShippingMethod != "DHL" || slim.TrackingNumber != "TN1" {
		t.Fatalf("shipping=%q/%q", slim.ShippingMethod, slim.TrackingNumber)
	}
	if !slim.PackageWeight.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("weight=%s, package weight must win over order total weight", slim.PackageWeight)
	}
	if slim.PackageQty != 6 {
		t.Fatalf("package qty=%d", slim.PackageQty)
	}
	if got := []string(slim.PIDList); len(got) != 2 || got[0] != "P1" || got[1] != "P2" {
		t.Fatalf("pid list=%v, want order-preserving dedupe", got)
	}
	if slim.CustomerNote != "gift" || slim.AdminNote != "vip" {
		t.Fatalf("notes=%q/%q", slim.CustomerNote, slim.AdminNote)
	}
}

func TestBuildSlimOrder_MissingOID(t *testing.T) {
	raw := ueeshop.RawOrder{
		Order: fields(map[string]string{"UpdateTime": "1700000100"}),
	}
	if _, err := BuildSlimOrder(raw); !errors.Is(err, ErrMissingOrderID) {
		t.Fatalf("err=%v want ErrMissingOrderID", err)
	}
}

func TestBuildSlimOrder_OIDAliasFallback(t *testing.T) {
	raw := ueeshop.RawOrder{
		Order: fields(map[string]string{"oid": "2002", "UpdateTime": "1700000100"}),
	}
	slim, err := BuildSlimOrder(raw)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if slim.OID != "2002" {
		t.Fatalf("oid=%q", slim.OID)
	}
}

func TestBuildSlimOrder_DefaultsWithoutPackages(t *testing.T) {
	raw := ueeshop.RawOrder{
		Order: fields(map[string]string{
			"OId":             "3003",
			"ShippingExpress": "USPS",
			"TrackingNumber":  "TN9",
			"TotalWeight":     "4.0",
		}),
	}
	slim, err := BuildSlimOrder(raw)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if slim.ShippingMethod != "USPS" || slim.TrackingNumber != "TN9" {
		t.Fatalf("shipping fallback=%q/%q", slim.ShippingMethod, slim.TrackingNumber)
	}
	if !slim.PackageWeight.Equal(decimal.RequireFromString("4.0")) {
		t.Fatalf("weight fallback=%s", slim.PackageWeight)
	}
	if slim.Currency != "USD" {
		t.Fatalf("currency default=%q", slim.Currency)
	}
	if slim.OrderDate != "" {
		t.Fatalf("order date=%q without created time", slim.OrderDate)
	}
}
