package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMaxLength(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{name: "empty", value: "", max: 3},
		{name: "at limit", value: "abc", max: 3},
		{name: "multibyte at limit", value: "ééé", max: 3},
		{name: "over limit", value: "abcd", max: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMaxLength("file_name", 2, tt.value, tt.max)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, "invalid input: file_name[2]: must not exceed 3 characters", err.Error())
		})
	}
}

func TestValidateFrameSymbol(t *testing.T) {
	assert.NoError(t, ValidateFrameSymbol("class_name", 0, "java.util.HashMap"))
	assert.ErrorIs(t, ValidateFrameSymbol("class_name", 0, "  "), ErrInvalidInput)
	assert.ErrorIs(t, ValidateFrameSymbol("method_name", 1, strings.Repeat("m", 1025)), ErrInvalidInput)
}

func TestInvalidInputError(t *testing.T) {
	err := Invalid("metric_name", "bad")

	var target *InvalidInputError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, -1, target.Index)
	assert.Equal(t, "invalid input: metric_name: bad", err.Error())
}
