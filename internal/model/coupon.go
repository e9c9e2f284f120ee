package model

import "time"

// DiscountType identifies how a coupon's discount value is interpreted.
type DiscountType string

const (
	// DiscountPercentage means the value is a percentage of the price (0-100].
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed means the value is an absolute amount off the price.
	DiscountFixed DiscountType = "fixed"
)

// Coupon represents a discount coupon. Codes are stored upper-cased and
// matched case-insensitively.
type Coupon struct {
	Code          string       `json:"code"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`
	ValidFrom     time.Time    `json:"valid_from"`
	ValidUntil    time.Time    `json:"valid_until"`
	UsageLimit    *int         `json:"usage_limit,omitempty"` // nil means unlimited
	UsageCount    int          `json:"usage_count"`
	SpecificEmail string       `json:"specific_email,omitempty"`
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"-"` // Not exposed in API
}

// Discount computes the discount amount for the given price.
// The result is clamped so it can never exceed the price.
func (c *Coupon) Discount(price float64) float64 {
	if price <= 0 {
		return 0
	}
	var discount float64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = price * c.DiscountValue / 100
	case DiscountFixed:
		discount = c.DiscountValue
	}
	if discount > price {
		discount = price
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// FinalPrice returns the price after applying the coupon, floored at zero.
func (c *Coupon) FinalPrice(price float64) float64 {
	final := price - c.Discount(price)
	if final < 0 {
		return 0
	}
	return final
}

// CreateCouponRequest is the DTO for the admin coupon-creation endpoint.
type CreateCouponRequest struct {
	Code          string   `json:"code" validate:"required,notblank,couponcode,max=50"`
	DiscountType  string   `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue *float64 `json:"discount_value" validate:"required,gt=0"`
	ValidFrom     string   `json:"valid_from" validate:"required"`
	ValidUntil    string   `json:"valid_until" validate:"required"`
	UsageLimit    *int     `json:"usage_limit" validate:"omitempty,gte=1"`
	SpecificEmail string   `json:"specific_email" validate:"omitempty,email"`
}

// VerifyCouponRequest is the DTO for POST /api/coupons/verify.
type VerifyCouponRequest struct {
	Code          string   `json:"code" validate:"required,notblank,max=50"`
	UserEmail     string   `json:"userEmail" validate:"required,email"`
	TemplatePrice *float64 `json:"templatePrice" validate:"omitempty,gte=0"`
}

// VerifyCouponResponse reports coupon applicability. Invalid coupons are
// reported with Valid=false and a message, not an error status.
// DiscountAmount and FinalPrice are pointers so a clamped result of zero
// still appears in the body; they are nil only when no price was supplied.
type VerifyCouponResponse struct {
	Valid          bool     `json:"valid"`
	Message        string   `json:"message,omitempty"`
	DiscountAmount *float64 `json:"discountAmount,omitempty"`
	DiscountType   string   `json:"discountType,omitempty"`
	FinalPrice     *float64 `json:"finalPrice,omitempty"`
	Coupon         *Coupon  `json:"coupon,omitempty"`
}
