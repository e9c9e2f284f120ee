package service

import "errors"

// Download token errors.
var (
	// ErrInvalidToken is returned for tokens that fail the shape check.
	ErrInvalidToken = errors.New("invalid download token")

	// ErrTokenNotFound is returned when no token record matches.
	ErrTokenNotFound = errors.New("download token not found")

	// ErrTokenExpired is returned for a known token past its expiry.
	// Distinct from not-found so clients can offer a re-issue flow.
	ErrTokenExpired = errors.New("download token expired")

	// ErrTemplateNotFound is returned when a token's template record is
	// missing. Tokens should never outlive their template; this is a
	// data-integrity check, not an expected path.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrFileNotAvailable is returned when a template has no file URL.
	ErrFileNotAvailable = errors.New("template file not available")

	// ErrFileNetwork is returned when the file host is unreachable.
	ErrFileNetwork = errors.New("file host network error")

	// ErrFileFetch is returned when the file host responds non-2xx.
	ErrFileFetch = errors.New("file fetch failed")

	// ErrInvalidFileURL is returned when the file host serves a web page
	// instead of raw data, which means the stored URL is misconfigured.
	ErrInvalidFileURL = errors.New("invalid file url")

	// ErrInvalidFileFormat is returned when the fetched body is not valid
	// workflow JSON.
	ErrInvalidFileFormat = errors.New("invalid file format")
)

// Coupon errors.
var (
	// ErrCouponExists is returned when creating a coupon whose code is taken.
	ErrCouponExists = errors.New("coupon already exists")

	// ErrCouponNotFound is returned when no coupon matches the code.
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponInactive is returned when a coupon's kill-switch is off.
	ErrCouponInactive = errors.New("coupon is not active")

	// ErrCouponNotYetActive is returned before a coupon's validity window.
	ErrCouponNotYetActive = errors.New("coupon is not yet active")

	// ErrCouponExpired is returned after a coupon's validity window.
	ErrCouponExpired = errors.New("coupon has expired")

	// ErrUsageLimitReached is returned when a coupon's redemption cap is hit.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")

	// ErrEmailRestricted is returned when a coupon is reserved for a
	// different purchaser email.
	ErrEmailRestricted = errors.New("coupon restricted to another email")
)

// Order and payment errors.
var (
	// ErrOrderNotFound is returned when no order matches.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderAlreadyPaid is returned when completing an order twice.
	ErrOrderAlreadyPaid = errors.New("order already paid")

	// ErrPaymentVerification is returned when a gateway signature check fails.
	ErrPaymentVerification = errors.New("payment verification failed")

	// ErrUnknownGateway is returned for an unrecognized gateway name.
	ErrUnknownGateway = errors.New("unknown payment gateway")
)

// ErrInvalidRequest is returned when request data is invalid or incomplete.
var ErrInvalidRequest = errors.New("invalid request")
