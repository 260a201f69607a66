package api

import (
	"context"
	"strings"

	"github.com/skatezo/shopflow/internal/domain/catalog"
)

// productPayload mirrors the product object of the details endpoints.
type productPayload struct {
	ID              ID     `json:"id"`
	Name            string `json:"name"`
	BasePrice       Money  `json:"base_price"`
	DiscountedPrice Money  `json:"discounted_price"`
	TotalStock      int    `json:"total_stock"`
	ImageURL        string `json:"image_url"`
	HasVariants     bool   `json:"has_variants"`
	InStock         bool   `json:"is_in_stock"`
}

func (p productPayload) toDomain() catalog.Product {
	return catalog.Product{
		ID:              p.ID.String(),
		Name:            p.Name,
		BasePrice:       p.BasePrice.Decimal,
		DiscountedPrice: p.DiscountedPrice.Decimal,
		TotalStock:      p.TotalStock,
		ImageURL:        p.ImageURL,
		HasVariants:     p.HasVariants,
		InStock:         p.InStock,
	}
}

// variantPayload mirrors one entry of the variants map.
type variantPayload struct {
	ID              ID    `json:"id"`
	Price           Money `json:"price"`
	DiscountedPrice Money `json:"discounted_price"`
	Stock           int   `json:"stock"`
	InStock         bool  `json:"is_in_stock"`
	LowStock        bool  `json:"is_low_stock"`
}

// ProductDetails is the payload the purchase wizard opens with: the product,
// its option dimensions and the variant map keyed "{colorID}_{sizeID}".
type ProductDetails struct {
	Product  catalog.Product
	Colors   []catalog.Color
	Sizes    []catalog.Size
	Variants catalog.VariantMap
}

// GetProductDetails fetches the purchase-wizard view of a product from
// GET /orders/products/{id}/details/.
func (c *Client) GetProductDetails(ctx context.Context, productID string) (*ProductDetails, error) {
	var resp struct {
		Product productPayload `json:"product"`
		Colors  []struct {
			ID      ID     `json:"id"`
			Name    string `json:"name"`
			HexCode string `json:"hex_code"`
		} `json:"colors"`
		Sizes []struct {
			ID   ID     `json:"id"`
			Name string `json:"name"`
		} `json:"sizes"`
		Variants map[string]variantPayload `json:"variants"`
	}
	if err := c.get(ctx, "/orders/products/"+productID+"/details/", nil, &resp); err != nil {
		return nil, err
	}

	details := &ProductDetails{
		Product:  resp.Product.toDomain(),
		Variants: make(catalog.VariantMap, len(resp.Variants)),
	}
	for _, col := range resp.Colors {
		details.Colors = append(details.Colors, catalog.Color{
			ID:      col.ID.String(),
			Name:    col.Name,
			HexCode: col.HexCode,
		})
	}
	for _, s := range resp.Sizes {
		details.Sizes = append(details.Sizes, catalog.Size{ID: s.ID.String(), Name: s.Name})
	}
	for key, v := range resp.Variants {
		colorID, sizeID, _ := strings.Cut(key, "_")
		details.Variants[key] = catalog.Variant{
			ID:              v.ID.String(),
			ColorID:         colorID,
			SizeID:          sizeID,
			Price:           v.Price.Decimal,
			DiscountedPrice: v.DiscountedPrice.Decimal,
			Stock:           v.Stock,
			InStock:         v.InStock,
			LowStock:        v.LowStock,
		}
	}
	return details, nil
}
