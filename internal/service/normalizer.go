package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"

	"ueesync/internal/client/ueeshop"
	"ueesync/internal/models"
)

// ErrMissingOrderID marks a vendor record carrying no usable order id under
// any known alias. Fatal for that record only, never for the whole pass.
var ErrMissingOrderID = errors.New("order record has no order id")

// Field alias tables, one entry per observed vendor schema revision.
// First present non-empty alias wins; order matters.
var (
	oidAliases = []string{"OId", "Oid", "oid", "id"}
	pidAliases = []string{"ProductId", "ProductID", "product_id", "ProductNo"}
)

// BuildSlimOrder maps one raw vendor order onto the storage projection.
// Pure; attribution fields are left unset for the upsert path to fill in.
func BuildSlimOrder(raw ueeshop.RawOrder) (models.SlimOrder, error) {
	order := raw.Order

	oid := order.Str(oidAliases...)
	if oid == "" {
		return models.SlimOrder{}, ErrMissingOrderID
	}

	createdSec := order.Sec("OrderTime")
	updatedSec := order.Sec("UpdateTime")
	paySec := order.Sec("PayTime")

	orderDate := ""
	if createdSec > 0 {
		orderDate = time.Unix(createdSec, 0).UTC().Format("2006-01-02")
	}

	currency := order.Str("Currency", "PayCurrency")
	if currency == "" {
		currency = "USD"
	}

	var firstPkg ueeshop.Fields
	if len(raw.Packages) > 0 {
		firstPkg = raw.Packages[0]
	}

	shippingMethod := firstPkg.Str("ShippingExpress")
	if shippingMethod == "" {
		shippingMethod = order.Str("ShippingExpress")
	}
	trackingNumber := firstPkg.Str("TrackingNumber")
	if trackingNumber == "" {
		trackingNumber = order.Str("TrackingNumber")
	}
	packageWeight := firstPkg.Money("Weight")
	if packageWeight.IsZero() {
		packageWeight = order.Money("TotalWeight")
	}

	shippingAddress := joinNonEmpty(" ",
		order.Str("ShippingAddressLine1"),
		order.Str("ShippingAddressLine2"),
		order.Str("ShippingCity"),
		order.Str("ShippingState"),
		order.Str("ShippingZipCode"),
		order.Str("ShippingCountry"),
	)
	customerName := joinNonEmpty(" ",
		order.Str("ShippingFirstName"),
		order.Str("ShippingLastName"),
	)

	items := make([]models.OrderItem, 0, len(raw.Items))
	pidList := make([]string, 0, len(raw.Items))
	seen := make(map[string]bool)
	packageQty := 0
	for _, it := range raw.Items {
		qty := it.Int("Qty")
		packageQty += qty
		items = append(items, models.OrderItem{
			Pic:      it.Str("PicPath"),
			Name:     it.Str("Name"),
			SKU:      it.Str("SKU"),
			Qty:      qty,
			Price:    it.Money("Price"),
			Currency: currency,
		})
		pid := it.Str(pidAliases...)
		if pid == "" || seen[pid] {
			continue
		}
		seen[pid] = true
		pidList = append(pidList, pid)
	}

	return models.SlimOrder{
		OID: oid,

		OrderCreatedAt:  createdSec,
		OrderDate:       orderDate,
		SourceUpdatedAt: updatedSec,
		PayTime:         paySec,

		OrderStatus:    order.Int("OrderStatus"),
		PaymentStatus:  order.Str("PaymentStatus"),
		ShippingStatus: order.Str("ShippingStatus"),

		// The explicit order total wins; PayTotalPrice is the fallback.
		OrderTotalPrice: order.Money("OrderTotalPrice", "PayTotalPrice"),
		ProductAmount:   order.Money("ProductPrice"),
		ShippingPrice:   order.Money("ShippingPrice"),
		TaxPrice:        order.Money("TaxPrice"),
		CouponPrice:     order.Money("CouponPrice"),
		DiscountPrice:   order.Money("DiscountPrice"),
		FeePrice:        order.Money("PayFeePrice").Add(order.Money("PayAdditionalFee")),

		CustomerEmail:   order.Str("Email"),
		CustomerCountry: order.Str("ShippingCountry", "BillCountry"),
		CustomerName:    customerName,
		CustomerIP:      order.Str("UserIp", "Ip", "IP"),
		Currency:        currency,

		ShippingMethod:  shippingMethod,
		TrackingNumber:  trackingNumber,
		ShippingAddress: shippingAddress,
		PackageWeight:   packageWeight,
		PackageQty:      packageQty,

		CustomerNote: order.Str("Comments"),
		AdminNote:    order.Str("Remarks"),

		Items:   mustJSON(items),
		PIDList: datatypes.NewJSONSlice(pidList),
	}, nil
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
