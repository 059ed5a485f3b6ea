package ueeshop

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

type OrdersPage struct {
	Records    []RawOrder
	TotalPages int
}

// FetchOrdersPage pulls one page of orders whose vendor update time falls
// in [fromSec, toSec]. Count is capped at the gateway maximum.
func (c *Client) FetchOrdersPage(ctx context.Context, fromSec, toSec int64, status string, count, page int) (OrdersPage, error) {
	if count <= 0 || count > MaxPageSize {
		count = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if status == "" {
		status = "all"
	}

	env, err := c.call(ctx, ActionSyncGetOrders, map[string]any{
		"UpdateStartTime": strconv.FormatInt(fromSec, 10),
		"UpdateEndTime":   strconv.FormatInt(toSec, 10),
		"OrderStatus":     status,
		"Count":           count,
		"Page":            page,
	})
	if err != nil {
		return OrdersPage{}, err
	}

	var records []RawOrder
	if len(env.Msg) > 0 && string(env.Msg) != "null" {
		if err := json.Unmarshal(env.Msg, &records); err != nil {
			return OrdersPage{}, fmt.Errorf("ueeshop %s: decode records: %w", ActionSyncGetOrders, err)
		}
	}

	total := env.TotalPage
	if total < 1 {
		total = 1
	}
	return OrdersPage{Records: records, TotalPages: total}, nil
}
