package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesTemplate(t *testing.T) {
	err := Clone(ErrNotFound, "lead not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "lead not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestFromErrorKeepsTyped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrDuplicateAccount, "taken"))
	appErr := FromError(wrapped)
	assert.Equal(t, ErrDuplicateAccount.Code, appErr.Code)
	assert.Equal(t, "taken", appErr.Message)
}

func TestIsWarning(t *testing.T) {
	assert.True(t, IsWarning(Clone(ErrAlreadyConverted, "")))
	assert.False(t, IsWarning(ErrValidation))
	assert.False(t, IsWarning(nil))
}

func TestValidationNamesFields(t *testing.T) {
	type form struct {
		FirstName string `validate:"required"`
		Email     string `validate:"required,email"`
		Notes     string
	}
	raw := validator.New().Struct(form{Email: "nope"})
	require.Error(t, raw)

	appErr := Validation(raw, "invalid lead details")
	assert.Equal(t, ErrValidation.Code, appErr.Code)
	assert.Equal(t, []string{"first name", "email"}, appErr.Fields)
	assert.Equal(t, "invalid lead details (check first name, email)", appErr.Message)
}

func TestValidationWithoutFieldErrors(t *testing.T) {
	appErr := Validation(errors.New("boom"), "invalid interaction")
	assert.Equal(t, "invalid interaction", appErr.Message)
	assert.Empty(t, appErr.Fields)
}
