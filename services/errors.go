package services

import "errors"

// ErrorKind classifies a failure for the transport layer.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindInvalidInput ErrorKind = "invalid_input"
	KindRateLimited  ErrorKind = "rate_limited"
)

// AppError is a caller-facing failure. Two AppErrors match under errors.Is
// when their codes are equal, so a sentinel still matches after its message
// has been specialised with WithMessage.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: msg}
}

func newError(kind ErrorKind, code, msg string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: msg}
}

var (
	ErrUnauthorized       = newError(KindUnauthorized, "unauthorized", "invalid or expired token")
	ErrInvalidCredentials = newError(KindUnauthorized, "invalid_credentials", "invalid login or password")
	ErrForbidden          = newError(KindForbidden, "forbidden", "administrator permission required")

	ErrAccountNotFound     = newError(KindNotFound, "account_not_found", "user not found")
	ErrTransactionNotFound = newError(KindNotFound, "transaction_not_found", "transaction not found")
	ErrTierNotFound        = newError(KindNotFound, "tier_not_found", "VIP tier not found")
	ErrOrderNotFound       = newError(KindNotFound, "order_not_found", "order offer not found")

	ErrLoginTaken     = newError(KindConflict, "login_taken", "login already exists")
	ErrDuplicateOrder = newError(KindConflict, "duplicate_order", "order already accepted")
	ErrOfferExpired   = newError(KindConflict, "offer_expired", "order offer is no longer available")
	ErrNotPending     = newError(KindConflict, "not_pending", "transaction is not pending")
	ErrTierExists     = newError(KindConflict, "tier_exists", "VIP tier already exists")

	ErrInvalidInput        = newError(KindInvalidInput, "invalid_input", "invalid input")
	ErrBelowMinimum        = newError(KindInvalidInput, "below_minimum", "amount is below the minimum")
	ErrInsufficientBalance = newError(KindInvalidInput, "insufficient_balance", "insufficient balance")
	ErrInsufficientDeposit = newError(KindInvalidInput, "insufficient_deposit", "deposit is not enough for a higher VIP level")
	ErrDailyLimitReached   = newError(KindInvalidInput, "daily_earnings_cap", "daily earnings limit reached")

	ErrDailyCapReached = newError(KindRateLimited, "mining_cap", "mining limit reached, try again after the 6-hour window")
	ErrAlreadySpun     = newError(KindRateLimited, "already_spun", "daily spin already used today")
	ErrTooManyRequests = newError(KindRateLimited, "too_many_requests", "too many requests")
)

// KindOf reports the AppError kind wrapped in err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}
