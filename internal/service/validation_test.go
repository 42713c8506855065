package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

func TestPayloadValue(t *testing.T) {
	p := Payload{
		"s":     "text",
		"empty": "",
		"nil":   nil,
		"b":     false,
		"f":     float64(42),
		"n":     json.Number("7"),
	}

	val, ok := p.Value("s")
	assert.True(t, ok)
	assert.Equal(t, "text", val)

	_, ok = p.Value("empty")
	assert.False(t, ok)
	_, ok = p.Value("nil")
	assert.False(t, ok)
	_, ok = p.Value("missing")
	assert.False(t, ok)

	val, ok = p.Value("b")
	assert.True(t, ok)
	assert.Equal(t, "false", val)

	val, _ = p.Value("f")
	assert.Equal(t, "42", val)
	val, _ = p.Value("n")
	assert.Equal(t, "7", val)
}

func TestValidateCreate(t *testing.T) {
	t.Run("defaults optional fields", func(t *testing.T) {
		issue, err := validateCreate("apitest", Payload{
			FieldTitle:     "Title",
			FieldText:      "Text",
			FieldCreatedBy: "Functional Test",
		})
		require.NoError(t, err)
		assert.Equal(t, "apitest", issue.Project)
		assert.Equal(t, "", issue.AssignedTo)
		assert.Equal(t, "", issue.StatusText)
		assert.True(t, issue.Open)
	})

	t.Run("keeps whitespace as given", func(t *testing.T) {
		issue, err := validateCreate("apitest", Payload{
			FieldTitle:     " Title ",
			FieldText:      "Text",
			FieldCreatedBy: "me",
		})
		require.NoError(t, err)
		assert.Equal(t, " Title ", issue.Title)
	})

	missing := []Payload{
		{FieldText: "Text", FieldCreatedBy: "me"},
		{FieldTitle: "Title", FieldCreatedBy: "me"},
		{FieldTitle: "Title", FieldText: "Text"},
		{FieldTitle: "", FieldText: "Text", FieldCreatedBy: "me"},
		{},
	}
	for _, p := range missing {
		_, err := validateCreate("apitest", p)
		assert.ErrorIs(t, err, apperrors.ErrMissingRequiredFields)
	}

	_, err := validateCreate("", Payload{FieldTitle: "Title", FieldText: "Text", FieldCreatedBy: "me"})
	assert.ErrorIs(t, err, apperrors.ErrMissingRequiredFields)
}

func TestValidateUpdate(t *testing.T) {
	_, _, err := validateUpdate(Payload{FieldTitle: "Updated Title"})
	assert.ErrorIs(t, err, apperrors.ErrMissingID)

	id, _, err := validateUpdate(Payload{FieldID: "abc"})
	assert.ErrorIs(t, err, apperrors.ErrNoUpdateFields)
	assert.Equal(t, "abc", id)
	assert.Equal(t, "abc", apperrors.ToDomainError(err).ID)

	_, _, err = validateUpdate(Payload{FieldID: "abc", FieldTitle: "", FieldText: ""})
	assert.ErrorIs(t, err, apperrors.ErrNoUpdateFields, "empty strings are not update fields")

	_, _, err = validateUpdate(Payload{FieldID: "abc", FieldOpen: "maybe"})
	assert.ErrorIs(t, err, apperrors.ErrUpdateFailed)

	id, patch, err := validateUpdate(Payload{FieldID: "abc", FieldTitle: "Updated Title", FieldOpen: false})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
	require.NotNil(t, patch.Title)
	assert.Equal(t, "Updated Title", *patch.Title)
	require.NotNil(t, patch.Open)
	assert.False(t, *patch.Open)
	assert.Nil(t, patch.Text)
	assert.Nil(t, patch.AssignedTo)

	_, patch, err = validateUpdate(Payload{FieldID: "abc", FieldOpen: "true"})
	require.NoError(t, err)
	assert.True(t, *patch.Open)
}

func TestValidateDelete(t *testing.T) {
	_, err := validateDelete(Payload{})
	assert.ErrorIs(t, err, apperrors.ErrMissingID)

	id, err := validateDelete(Payload{FieldID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestNormalizeFilter(t *testing.T) {
	t.Run("empty query filters by project only", func(t *testing.T) {
		n := NormalizeFilter("apitest", nil)
		assert.True(t, n.Satisfiable)
		assert.Equal(t, "apitest", n.Filter.Project)
		assert.Nil(t, n.Filter.Open)
		assert.Empty(t, n.Ignored)
	})

	t.Run("open is coerced to bool", func(t *testing.T) {
		n := NormalizeFilter("apitest", map[string]string{"open": "true", "created_by": "Functional Test"})
		assert.True(t, n.Satisfiable)
		require.NotNil(t, n.Filter.Open)
		assert.True(t, *n.Filter.Open)
		require.NotNil(t, n.Filter.CreatedBy)
		assert.Equal(t, "Functional Test", *n.Filter.CreatedBy)

		n = NormalizeFilter("apitest", map[string]string{"open": "false"})
		require.NotNil(t, n.Filter.Open)
		assert.False(t, *n.Filter.Open)
	})

	t.Run("non boolean open never matches", func(t *testing.T) {
		n := NormalizeFilter("apitest", map[string]string{"open": "yes"})
		assert.False(t, n.Satisfiable)
	})

	t.Run("every filterable field maps", func(t *testing.T) {
		n := NormalizeFilter("apitest", map[string]string{
			"_id":         "id-1",
			"issue_title": "t",
			"issue_text":  "x",
			"assigned_to": "",
			"status_text": "In QA",
		})
		assert.Equal(t, "id-1", *n.Filter.ID)
		assert.Equal(t, "t", *n.Filter.Title)
		assert.Equal(t, "x", *n.Filter.Text)
		assert.Equal(t, "", *n.Filter.AssignedTo)
		assert.Equal(t, "In QA", *n.Filter.StatusText)
	})

	t.Run("unknown keys match nothing", func(t *testing.T) {
		n := NormalizeFilter("apitest", map[string]string{"password": "x", "open": "true"})
		assert.Equal(t, "apitest", n.Filter.Project)
		assert.Equal(t, []string{"password"}, n.Ignored)
		assert.False(t, n.Satisfiable)
	})

	t.Run("project cannot widen the route", func(t *testing.T) {
		n := NormalizeFilter("apitest", map[string]string{"project": "apitest"})
		assert.True(t, n.Satisfiable)
		assert.Equal(t, "apitest", n.Filter.Project)

		n = NormalizeFilter("apitest", map[string]string{"project": "other"})
		assert.False(t, n.Satisfiable)
		assert.Empty(t, n.Ignored)
	})

	t.Run("timestamps parse as RFC 3339", func(t *testing.T) {
		n := NormalizeFilter("apitest", map[string]string{
			"created_on": "2026-10-18T12:30:00.5+02:00",
			"updated_on": "2026-10-18T10:30:00Z",
		})
		assert.True(t, n.Satisfiable)
		require.NotNil(t, n.Filter.CreatedOn)
		assert.Equal(t, time.Date(2026, 10, 18, 10, 30, 0, 500000000, time.UTC), *n.Filter.CreatedOn)
		require.NotNil(t, n.Filter.UpdatedOn)
		assert.Equal(t, time.Date(2026, 10, 18, 10, 30, 0, 0, time.UTC), *n.Filter.UpdatedOn)

		n = NormalizeFilter("apitest", map[string]string{"updated_on": "nope"})
		assert.False(t, n.Satisfiable)
		assert.Nil(t, n.Filter.UpdatedOn)
	})
}
