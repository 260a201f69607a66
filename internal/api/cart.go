package api

import (
	"context"

	"github.com/skatezo/shopflow/internal/domain/catalog"
)

// CartSummary describes the cart state after a mutation, for the count
// badge in the page header.
type CartSummary struct {
	ItemsCount int   `json:"items_count"`
	TotalPrice Money `json:"total_price"`
}

// AddCartResult is the outcome of adding a variant to the cart.
type AddCartResult struct {
	Message string
	Cart    CartSummary
}

// AddCartVariant posts a resolved (product, variant, quantity) line to
// POST /cart/cart/add-variant/.
func (c *Client) AddCartVariant(ctx context.Context, productID, variantID string, quantity int) (*AddCartResult, error) {
	req := struct {
		ProductID string `json:"product_id"`
		VariantID string `json:"variant_id"`
		Quantity  int    `json:"quantity"`
	}{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
	}
	var resp struct {
		Message string      `json:"message"`
		Cart    CartSummary `json:"cart"`
	}
	if err := c.postJSON(ctx, "/cart/cart/add-variant/", req, &resp); err != nil {
		return nil, err
	}
	return &AddCartResult{Message: resp.Message, Cart: resp.Cart}, nil
}

// cartVariantPayload mirrors one entry of the fill-product variants list,
// which carries the color/size IDs inline rather than in a composite key.
type cartVariantPayload struct {
	ID              ID    `json:"id"`
	ColorID         ID    `json:"color_id"`
	SizeID          ID    `json:"size_id"`
	Price           Money `json:"price"`
	DiscountedPrice Money `json:"discounted_price"`
	Stock           int   `json:"stock"`
}

// FillProductResult is the outcome of pushing a product at the cart. When
// the product has variants the server answers RequiresVariantSelection with
// the option data needed to run the reduced picker; otherwise the product
// was added directly.
type FillProductResult struct {
	RequiresVariantSelection bool
	Message                  string
	Cart                     CartSummary
	Product                  catalog.Product
	Colors                   []catalog.Color
	Sizes                    []catalog.Size
	Variants                 catalog.VariantMap
}

// FillProductIntoCart posts to /cart/cart/fill-product/{id}/.
func (c *Client) FillProductIntoCart(ctx context.Context, productID string) (*FillProductResult, error) {
	var resp struct {
		RequiresVariantSelection bool           `json:"requires_variant_selection"`
		Message                  string         `json:"message"`
		Cart                     CartSummary    `json:"cart"`
		Product                  productPayload `json:"product"`
		Colors                   []struct {
			ID      ID     `json:"id"`
			Name    string `json:"name"`
			HexCode string `json:"hex_code"`
		} `json:"colors"`
		Sizes []struct {
			ID   ID     `json:"id"`
			Name string `json:"name"`
		} `json:"sizes"`
		Variants []cartVariantPayload `json:"variants"`
	}
	if err := c.postJSON(ctx, "/cart/cart/fill-product/"+productID+"/", nil, &resp); err != nil {
		return nil, err
	}

	result := &FillProductResult{
		RequiresVariantSelection: resp.RequiresVariantSelection,
		Message:                  resp.Message,
		Cart:                     resp.Cart,
		Product:                  resp.Product.toDomain(),
	}
	for _, col := range resp.Colors {
		result.Colors = append(result.Colors, catalog.Color{
			ID:      col.ID.String(),
			Name:    col.Name,
			HexCode: col.HexCode,
		})
	}
	for _, s := range resp.Sizes {
		result.Sizes = append(result.Sizes, catalog.Size{ID: s.ID.String(), Name: s.Name})
	}
	if len(resp.Variants) > 0 {
		result.Variants = make(catalog.VariantMap, len(resp.Variants))
		for _, v := range resp.Variants {
			variant := catalog.Variant{
				ID:              v.ID.String(),
				ColorID:         v.ColorID.String(),
				SizeID:          v.SizeID.String(),
				Price:           v.Price.Decimal,
				DiscountedPrice: v.DiscountedPrice.Decimal,
				Stock:           v.Stock,
				InStock:         v.Stock > 0,
				LowStock:        v.Stock > 0 && v.Stock <= 5,
			}
			result.Variants[catalog.Key(variant.ColorID, variant.SizeID)] = variant
		}
	}
	return result, nil
}
