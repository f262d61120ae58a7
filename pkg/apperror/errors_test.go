package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("PAY_001", "Insufficient on-chain balance", http.StatusPaymentRequired),
			expected: "[PAY_001] Insufficient on-chain balance",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("DEP_001", "Settlement transfer failed", http.StatusBadGateway, fmt.Errorf("gateway timeout")),
			expected: "[DEP_001] Settlement transfer failed: gateway timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("VAL_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidAmount", ErrInvalidAmount(), "VAL_001", 400},
		{"Validation", Validation("bad payload"), "VAL_002", 400},
		{"MalformedCipherPayload", ErrMalformedCipherPayload(fmt.Errorf("empty iv")), "VAL_003", 400},
		{"SelfThread", ErrSelfThread(), "VAL_004", 400},
		{"SelfRequest", ErrSelfRequest(), "VAL_005", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestAuthorizationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidToken", ErrInvalidToken(nil), "AUTH_001", 401},
		{"NotParticipant", ErrNotParticipant(), "AUTHZ_001", 403},
		{"NotRequestTarget", ErrNotRequestTarget(), "AUTHZ_002", 403},
		{"NotRequester", ErrNotRequester(), "AUTHZ_003", 403},
		{"KeyLookupDenied", ErrKeyLookupDenied(), "AUTHZ_004", 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestConflictErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
	}{
		{"RequestConflict", ErrRequestConflict(), "CFT_001"},
		{"AlreadyPaid", ErrRequestAlreadyPaid(), "CFT_002"},
		{"Cancelled", ErrRequestCancelled(), "CFT_003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, http.StatusConflict, tt.err.HTTPStatus)
		})
	}
}

func TestDependencyErrors(t *testing.T) {
	inner := fmt.Errorf("connection refused")

	settleErr := ErrSettlementFailed(inner)
	assert.Equal(t, "DEP_001", settleErr.Code)
	assert.Equal(t, 502, settleErr.HTTPStatus)
	assert.True(t, errors.Is(settleErr, inner))

	notifyErr := ErrNotificationFailed(inner)
	assert.Equal(t, "DEP_002", notifyErr.Code)
	assert.Equal(t, 502, notifyErr.HTTPStatus)
}

func TestCodeGateErrors(t *testing.T) {
	assert.Equal(t, "CODE_001", ErrNoActiveCode().Code)
	assert.Equal(t, "CODE_002", ErrCodeMismatch().Code)
}

func TestNotFoundEntity(t *testing.T) {
	err := ErrNotFound("Thread")
	assert.Contains(t, err.Message, "Thread")
	assert.Equal(t, "NF_001", err.Code)
	assert.Equal(t, 404, err.HTTPStatus)
}

func TestWalletNotLinked(t *testing.T) {
	err := ErrWalletNotLinked("payer")
	assert.Contains(t, err.Message, "payer")
	assert.Equal(t, "PAY_002", err.Code)
	assert.Equal(t, 422, err.HTTPStatus)
}
