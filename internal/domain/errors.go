package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidAmount indicates a malformed monetary input.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientStock indicates a requested quantity exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrCouponNotApplicable indicates a coupon failed validation or eligibility checks.
	ErrCouponNotApplicable = errors.New("coupon not applicable")
	// ErrInvalidTransition indicates a status change not reachable from the current state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrMissingAssociation indicates an operation that requires a related entity which is absent.
	ErrMissingAssociation = errors.New("missing association")
	// ErrSellerUnavailable indicates a seller that is not approved or is on vacation.
	ErrSellerUnavailable = errors.New("seller unavailable")
	// ErrEmptyReason indicates a failure was recorded without a reason.
	ErrEmptyReason = errors.New("empty failure reason")
)
