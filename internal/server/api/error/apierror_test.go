package apierror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/matrixkb/apitypes"
	apierror "github.com/Alia5/matrixkb/internal/server/api/error"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *apitypes.ApiError
	}{
		{name: "nil", err: nil, want: nil},
		{name: "pointer passthrough", err: apierror.ErrNotFound("x"), want: &apitypes.ApiError{Status: 404, Title: "Not Found", Detail: "x"}},
		{name: "value", err: apitypes.ApiError{Status: 409, Title: "Conflict", Detail: "y"}, want: &apitypes.ApiError{Status: 409, Title: "Conflict", Detail: "y"}},
		{name: "wrapped", err: fmt.Errorf("ctx: %w", apierror.ErrBadRequest("z")), want: &apitypes.ApiError{Status: 400, Title: "Bad Request", Detail: "z"}},
		{name: "plain", err: errors.New("boom"), want: &apitypes.ApiError{Status: 500, Title: "Internal Server Error", Detail: "boom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apierror.WrapError(tt.err))
		})
	}
}

func TestApiErrorString(t *testing.T) {
	assert.Equal(t, "401 Unauthorized: invalid password", apierror.ErrUnauthorized("invalid password").Error())
}
