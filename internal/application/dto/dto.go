package dto

import "github.com/bivex/webpay-client/internal/domain/entity"

// ProductInfo is the terminal success value of a purchase attempt, and the
// product context delivered alongside legacy-callback failures.
type ProductInfo struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name,omitempty"`
	Description   string  `json:"description,omitempty"`
	SmallImageURL string  `json:"smallImageUrl,omitempty"`
	PricePoint    float64 `json:"pricePoint,omitempty"`
}

// FromProductInfo converts the domain product into its caller-facing form
func FromProductInfo(p *entity.ProductInfo) *ProductInfo {
	if p == nil {
		return nil
	}
	return &ProductInfo{
		ProductID:     p.ProductID,
		Name:          p.Name,
		Description:   p.Description,
		SmallImageURL: p.SmallImageURL,
		PricePoint:    p.PricePoint,
	}
}
