package payapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bivex/webpay-client/internal/domain/entity"
)

// payTokenTyp marks a token as a webpay payment request
const payTokenTyp = "payments/inapp/v1"

// payRequest mirrors the "request" claim of a webpay payment token
type payRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	PricePoint  float64 `json:"pricePoint,omitempty"`
	SmallImage  string  `json:"smallImageUrl,omitempty"`
}

type payClaims struct {
	jwt.RegisteredClaims
	Typ     string     `json:"typ"`
	Request payRequest `json:"request"`
}

// ParsePayRequest decodes product metadata from a payment token without
// verifying its signature. The client holds no signing key; verification is
// the payment provider's job. Decoded fields are advisory only.
func ParsePayRequest(token string) (*entity.ProductInfo, error) {
	var claims payClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode payment token: %w", err)
	}

	return &entity.ProductInfo{
		ProductID:     claims.Request.ID,
		Name:          claims.Request.Name,
		Description:   claims.Request.Description,
		PricePoint:    claims.Request.PricePoint,
		SmallImageURL: claims.Request.SmallImage,
	}, nil
}

// SignFakePayRequest builds an HS256-signed stub token for fake-products
// mode. The secret is throwaway; nothing ever verifies these tokens.
func SignFakePayRequest(product *entity.ProductInfo, secret []byte) (string, error) {
	now := time.Now()
	claims := payClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "webpay-client-fake",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Hour)),
		},
		Typ: payTokenTyp,
		Request: payRequest{
			ID:          product.ProductID,
			Name:        product.Name,
			Description: product.Description,
			PricePoint:  product.PricePoint,
			SmallImage:  product.SmallImageURL,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign fake payment token: %w", err)
	}
	return signed, nil
}
