package api

import (
	"context"
	"net/url"
)

// WishlistProduct is the product summary the wishlist endpoint returns for
// the confirmation popup.
type WishlistProduct struct {
	ID              ID     `json:"id"`
	Name            string `json:"name"`
	Price           Money  `json:"price"`
	DiscountedPrice Money  `json:"discounted_price"`
	ImageURL        string `json:"image_url"`
	VariantLabel    string `json:"variant"`
}

// WishlistResult is the outcome of toggling a product on the wishlist.
// Action is "added" or "removed"; Icon and Color describe the pressed state
// of the toggle control; Count is the shopper's new wishlist size.
type WishlistResult struct {
	Action  string          `json:"action"`
	Icon    string          `json:"icon"`
	Color   string          `json:"color"`
	Count   int             `json:"wishlist_count"`
	Message string          `json:"message"`
	Product WishlistProduct `json:"product"`
}

// ToggleWishlist flips a product's wishlist membership via
// POST /product/wishlist/grab/{id}/. The body is form-encoded; variantID is
// optional and scopes the entry to a specific variant.
func (c *Client) ToggleWishlist(ctx context.Context, productID, variantID string) (*WishlistResult, error) {
	form := url.Values{}
	if variantID != "" {
		form.Set("variant_id", variantID)
	}
	var result WishlistResult
	if err := c.postForm(ctx, "/product/wishlist/grab/"+productID+"/", form, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
