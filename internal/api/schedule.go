package api

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/skatezo/shopflow/internal/domain/catalog"
)

// ScheduleProduct is the product view of the future-purchase flow, which
// carries its variants as a flat list rather than a composite-keyed map.
type ScheduleProduct struct {
	Product  catalog.Product
	Variants []catalog.Variant
}

// GetScheduleProduct fetches a product for scheduling from
// GET /schedule_purchase/api/products/{id}/details/.
func (c *Client) GetScheduleProduct(ctx context.Context, productID string) (*ScheduleProduct, error) {
	var resp struct {
		Product struct {
			productPayload
			Variants []struct {
				ID    ID     `json:"id"`
				Label string `json:"label"`
				Price Money  `json:"price"`
				Stock int    `json:"stock"`
			} `json:"variants"`
		} `json:"product"`
	}
	if err := c.get(ctx, "/schedule_purchase/api/products/"+productID+"/details/", nil, &resp); err != nil {
		return nil, err
	}

	sp := &ScheduleProduct{Product: resp.Product.toDomain()}
	for _, v := range resp.Product.Variants {
		sp.Variants = append(sp.Variants, catalog.Variant{
			ID:      v.ID.String(),
			Price:   v.Price.Decimal,
			Stock:   v.Stock,
			InStock: v.Stock > 0,
		})
	}
	return sp, nil
}

// FuturePurchaseRequest is the full scheduling payload. Only the scheduled
// date and quantity are checked client-side; frequency, action type,
// priority and the price limits are the server's to validate.
type FuturePurchaseRequest struct {
	ProductID          string           `json:"product_id"`
	Title              string           `json:"title"`
	VariantID          string           `json:"variant_id,omitempty"`
	Quantity           int              `json:"quantity"`
	ScheduledDate      string           `json:"scheduled_date"`
	Frequency          string           `json:"frequency"`
	ActionType         string           `json:"action_type"`
	Priority           string           `json:"priority"`
	ReminderDaysBefore int              `json:"reminder_days_before"`
	MaxPrice           *decimal.Decimal `json:"max_price"`
	BudgetLimit        *decimal.Decimal `json:"budget_limit"`
	MaxExecutions      *int             `json:"max_executions"`
	SendReminderEmail  bool             `json:"send_reminder_email"`
	AutoPurchase       bool             `json:"auto_purchase_enabled"`
	CheckStock         bool             `json:"check_stock_availability"`
	UseDefaultAddress  bool             `json:"use_default_address"`
	ShippingAddress    string           `json:"shipping_address"`
	Notes              string           `json:"notes"`
}

// CreateFuturePurchase posts the scheduling payload to
// POST /schedule_purchase/api/future-purchases/create/.
func (c *Client) CreateFuturePurchase(ctx context.Context, req *FuturePurchaseRequest) (message string, err error) {
	var resp envelope
	if err := c.postJSON(ctx, "/schedule_purchase/api/future-purchases/create/", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// FuturePurchase is one scheduled purchase as listed by the user endpoint.
type FuturePurchase struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	ScheduledDate string `json:"scheduled_date"`
	Frequency     string `json:"frequency"`
	Status        string `json:"status"`
	EstimatedCost Money  `json:"estimated_cost"`
}

// ListFuturePurchases fetches the shopper's scheduled purchases from
// GET /schedule_purchase/api/future-purchases/user/.
func (c *Client) ListFuturePurchases(ctx context.Context) ([]FuturePurchase, error) {
	var resp struct {
		Purchases []FuturePurchase `json:"purchases"`
	}
	if err := c.get(ctx, "/schedule_purchase/api/future-purchases/user/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Purchases, nil
}

// UpdateFuturePurchaseStatus applies a status action (pause, resume, cancel)
// to a scheduled purchase via
// POST /schedule_purchase/api/future-purchases/{id}/status/.
func (c *Client) UpdateFuturePurchaseStatus(ctx context.Context, purchaseID, action string) (message string, err error) {
	var resp envelope
	body := struct {
		Action string `json:"action"`
	}{Action: action}
	if err := c.postJSON(ctx, "/schedule_purchase/api/future-purchases/"+purchaseID+"/status/", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
