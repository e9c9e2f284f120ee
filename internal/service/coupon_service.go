package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
	"github.com/gaddamnithinreddy/templatestore/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Delete(ctx context.Context, code string) error
	GetForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	IncrementUsage(ctx context.Context, tx database.TxQuerier, code string) error
}

// CouponService provides business logic for coupon operations.
type CouponService struct {
	repo CouponRepositoryInterface
}

// NewCouponService creates a new CouponService with the given repository.
func NewCouponService(repo CouponRepositoryInterface) *CouponService {
	return &CouponService{repo: repo}
}

// NormalizeCode upper-cases and trims a coupon code. Codes are matched
// case-insensitively everywhere.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create creates a new coupon from the admin request.
// Percentage values outside (0, 100] are rejected here rather than relying
// on the clamp at discount time.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if req == nil || req.DiscountValue == nil {
		return nil, ErrInvalidRequest
	}

	validFrom, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: valid_from must be RFC3339", ErrInvalidRequest)
	}
	validUntil, err := time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("%w: valid_until must be RFC3339", ErrInvalidRequest)
	}
	if validUntil.Before(validFrom) {
		return nil, fmt.Errorf("%w: valid_until precedes valid_from", ErrInvalidRequest)
	}

	discountType := model.DiscountType(req.DiscountType)
	if discountType == model.DiscountPercentage && *req.DiscountValue > 100 {
		return nil, fmt.Errorf("%w: percentage discount exceeds 100", ErrInvalidRequest)
	}

	coupon := &model.Coupon{
		Code:          NormalizeCode(req.Code),
		DiscountType:  discountType,
		DiscountValue: *req.DiscountValue,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		UsageLimit:    req.UsageLimit,
		SpecificEmail: strings.ToLower(strings.TrimSpace(req.SpecificEmail)),
		IsActive:      true,
	}
	if err := s.repo.Insert(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Validate looks up a coupon and checks whether the given purchaser may use
// it right now. The first failing check wins:
// not found, inactive, outside window, usage limit, email restriction.
func (s *CouponService) Validate(ctx context.Context, code, email string) (*model.Coupon, error) {
	coupon, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if err := checkCoupon(coupon, email, time.Now()); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Redeem consumes one usage slot of a coupon inside the caller's transaction.
// The row lock taken by GetForUpdate serializes concurrent redemptions, so a
// coupon with one slot remaining can never be redeemed twice.
func (s *CouponService) Redeem(ctx context.Context, tx database.TxQuerier, code, email string) error {
	normalized := NormalizeCode(code)
	coupon, err := s.repo.GetForUpdate(ctx, tx, normalized)
	if err != nil {
		return err
	}
	if err := checkCoupon(coupon, email, time.Now()); err != nil {
		return err
	}
	if err := s.repo.IncrementUsage(ctx, tx, normalized); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// List returns all coupons for the admin console.
func (s *CouponService) List(ctx context.Context) ([]model.Coupon, error) {
	return s.repo.List(ctx)
}

// Delete removes a coupon by code.
func (s *CouponService) Delete(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, NormalizeCode(code))
}

// checkCoupon applies the validity checks in order; the first failure wins.
func checkCoupon(coupon *model.Coupon, email string, now time.Time) error {
	if !coupon.IsActive {
		return ErrCouponInactive
	}
	if now.Before(coupon.ValidFrom) {
		return ErrCouponNotYetActive
	}
	if now.After(coupon.ValidUntil) {
		return ErrCouponExpired
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return ErrUsageLimitReached
	}
	if coupon.SpecificEmail != "" &&
		!strings.EqualFold(coupon.SpecificEmail, strings.TrimSpace(email)) {
		return ErrEmailRestricted
	}
	return nil
}
