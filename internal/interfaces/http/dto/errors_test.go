package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeReferenceConflict, http.StatusBadRequest},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeNothingToPay, http.StatusUnprocessableEntity},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"INVALID_AMOUNT", http.StatusBadRequest},
		{"INVALID_VAT_TREATMENT", http.StatusBadRequest},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.want, GetHTTPStatus(tc.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("ITEM_NOT_FOUND"))
	assert.Equal(t, ErrCodeConcurrencyConflict, NormalizeErrorCode("CONCURRENT_MODIFICATION"))
	assert.Equal(t, ErrCodeNothingToPay, NormalizeErrorCode("NOTHING_TO_PAY"))
	assert.Equal(t, ErrCodeInvalidInput, NormalizeErrorCode("PROJECT_MISMATCH"))
	assert.Equal(t, ErrCodeValidation, NormalizeErrorCode("NO_ITEMS"))
	assert.Equal(t, ErrCodeBusinessRule, NormalizeErrorCode("ALREADY_REQUESTED"))

	// codes without a mapping pass through untouched
	assert.Equal(t, "INVALID_AMOUNT", NormalizeErrorCode("INVALID_AMOUNT"))
}

func TestNormalizedDomainCodesResolveStatuses(t *testing.T) {
	// domain codes raised by submit and modification guards must not fall
	// through to 500
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(NormalizeErrorCode("NO_ITEMS")))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(NormalizeErrorCode("ALREADY_REQUESTED")))
}

func TestResponseEnvelope(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"id": "1"})
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
	})

	t.Run("success with meta rounds total pages up", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta(nil, 45, 2, 20)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(45), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("error", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "gone", "req-1")
		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "req-1", resp.Error.RequestID)
	})
}
