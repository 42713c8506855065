package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessErrors_WireTokens(t *testing.T) {
	cases := []struct {
		err     error
		message string
		id      string
	}{
		{NewMissingRequiredFields(), "required field(s) missing", ""},
		{NewMissingID(), "missing _id", ""},
		{NewNoUpdateFields("abc"), "no update field(s) sent", "abc"},
		{NewUpdateFailed("abc", nil), "could not update", "abc"},
		{NewDeleteFailed("abc", nil), "could not delete", "abc"},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		assert.Equal(t, tc.message, de.Message)
		assert.Equal(t, tc.id, de.ID)
		assert.Equal(t, http.StatusOK, de.HTTPStatus)
		assert.True(t, de.IsBusiness())
	}
}

func TestErrorsIs_MatchesOnCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("update issue: %w", NewUpdateFailed("abc", cause))

	assert.ErrorIs(t, err, ErrUpdateFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDeleteFailed)
}

func TestToDomainError_WrapsUnknownAsInternal(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	de := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.False(t, de.IsBusiness())
	assert.Equal(t, "internal server error: boom", de.Error())
}
