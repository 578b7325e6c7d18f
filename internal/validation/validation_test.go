package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	type payload struct {
		ID       string `json:"id" validate:"required"`
		Interval int    `json:"interval" validate:"gte=1"`
	}

	validate, trans, err := New("json")
	require.NoError(t, err)

	err = validate.Struct(payload{Interval: 0})
	require.Error(t, err)
	assert.Equal(t, []string{
		"id is a required field",
		"interval must be 1 or greater",
	}, Messages(err, trans))

	assert.NoError(t, validate.Struct(payload{ID: "a", Interval: 3}))
}

func TestMessages_NonValidationError(t *testing.T) {
	_, trans, err := New("json")
	require.NoError(t, err)

	assert.Equal(t, []string{"boom"}, Messages(errors.New("boom"), trans))
}
