package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

func ErrInvalidAmount() *AppError {
	return New("VAL_001", "Amount must be greater than zero", http.StatusBadRequest)
}

// Validation returns a generic validation error with a caller-supplied message.
func Validation(message string) *AppError {
	return New("VAL_002", message, http.StatusBadRequest)
}

func ErrMalformedCipherPayload(err error) *AppError {
	return Wrap("VAL_003", "Malformed cipher payload", http.StatusBadRequest, err)
}

func ErrSelfThread() *AppError {
	return New("VAL_004", "Cannot open a thread with yourself", http.StatusBadRequest)
}

func ErrSelfRequest() *AppError {
	return New("VAL_005", "Cannot request a payment from yourself", http.StatusBadRequest)
}

// ---- Authentication & Authorization (AUTH / AUTHZ) ----

func ErrInvalidToken(err error) *AppError {
	return Wrap("AUTH_001", "Invalid or expired token", http.StatusUnauthorized, err)
}

func ErrNotParticipant() *AppError {
	return New("AUTHZ_001", "Caller is not a participant of this thread", http.StatusForbidden)
}

func ErrNotRequestTarget() *AppError {
	return New("AUTHZ_002", "Only the request target may pay this request", http.StatusForbidden)
}

func ErrNotRequester() *AppError {
	return New("AUTHZ_003", "Only the requester may cancel this request", http.StatusForbidden)
}

func ErrKeyLookupDenied() *AppError {
	return New("AUTHZ_004", "Key lookup requires a mutual contact relation", http.StatusForbidden)
}

// ---- Directory (KEY) ----

func ErrKeyNotPublished() *AppError {
	return New("KEY_001", "User has not published a public key", http.StatusNotFound)
}

// ---- Not found (NF) ----

func ErrNotFound(entity string) *AppError {
	return New("NF_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Conflict (CFT) ----

func ErrRequestConflict() *AppError {
	return New("CFT_001", "Request was modified concurrently, re-read its state", http.StatusConflict)
}

func ErrRequestAlreadyPaid() *AppError {
	return New("CFT_002", "Request has already been paid", http.StatusConflict)
}

func ErrRequestCancelled() *AppError {
	return New("CFT_003", "Request has been cancelled", http.StatusConflict)
}

// ---- Payment (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Insufficient on-chain balance", http.StatusPaymentRequired)
}

func ErrWalletNotLinked(who string) *AppError {
	return New("PAY_002", fmt.Sprintf("%s has no verified wallet address", who), http.StatusUnprocessableEntity)
}

// ---- Verification code gate (CODE) ----

func ErrNoActiveCode() *AppError {
	return New("CODE_001", "No active verification code, request a new one", http.StatusBadRequest)
}

func ErrCodeMismatch() *AppError {
	return New("CODE_002", "Verification code does not match", http.StatusBadRequest)
}

// ---- Dependency failures (DEP) ----

func ErrSettlementFailed(err error) *AppError {
	return Wrap("DEP_001", "Settlement transfer failed", http.StatusBadGateway, err)
}

func ErrNotificationFailed(err error) *AppError {
	return Wrap("DEP_002", "Failed to dispatch verification code", http.StatusBadGateway, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
