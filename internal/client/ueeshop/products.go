package ueeshop

import (
	"context"
	"encoding/json"
	"fmt"
)

type ProductsPage struct {
	Records    []Fields
	TotalPages int
}

// FetchProductsPage pulls one page of the shop's product list.
func (c *Client) FetchProductsPage(ctx context.Context, count, page int) (ProductsPage, error) {
	if count <= 0 || count > MaxPageSize {
		count = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	env, err := c.call(ctx, ActionSyncGetProducts, map[string]any{
		"Count": count,
		"Page":  page,
	})
	if err != nil {
		return ProductsPage{}, err
	}

	var records []Fields
	if len(env.Msg) > 0 && string(env.Msg) != "null" {
		if err := json.Unmarshal(env.Msg, &records); err != nil {
			return ProductsPage{}, fmt.Errorf("ueeshop %s: decode records: %w", ActionSyncGetProducts, err)
		}
	}

	total := env.TotalPage
	if total < 1 {
		total = 1
	}
	return ProductsPage{Records: records, TotalPages: total}, nil
}
