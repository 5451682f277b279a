package entity

// ProductInfo is the normalized product description delivered to the caller
// on a successful purchase, and attached to purchase errors for correlation.
// It merges catalog metadata with fields decoded from the payment token.
type ProductInfo struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name,omitempty"`
	Description   string  `json:"description,omitempty"`
	SmallImageURL string  `json:"smallImageUrl,omitempty"`
	PricePoint    float64 `json:"pricePoint,omitempty"`
}

// NewProductInfo creates product info identified only by its product ID
func NewProductInfo(productID string) *ProductInfo {
	return &ProductInfo{ProductID: productID}
}

// Merge copies non-zero fields from other onto a copy of p. The receiver's
// ProductID always wins; metadata fields are filled only when missing.
func (p *ProductInfo) Merge(other *ProductInfo) *ProductInfo {
	merged := *p
	if other == nil {
		return &merged
	}
	if merged.Name == "" {
		merged.Name = other.Name
	}
	if merged.Description == "" {
		merged.Description = other.Description
	}
	if merged.SmallImageURL == "" {
		merged.SmallImageURL = other.SmallImageURL
	}
	if merged.PricePoint == 0 {
		merged.PricePoint = other.PricePoint
	}
	return &merged
}
