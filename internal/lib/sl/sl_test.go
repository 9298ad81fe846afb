package sl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
}

func TestSecret(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "long value is truncated", value: "tok_1234567890", want: "tok_..."},
		{name: "short value is fully masked", value: "tok", want: "***"},
		{name: "empty value is fully masked", value: "", want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := Secret("token", tt.value)
			assert.Equal(t, "token", attr.Key)
			assert.Equal(t, tt.want, attr.Value.String())
		})
	}
}
