package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	// Check digit computed with the published mod-36 scheme.
	body := "27AAPFU0939F1Z"
	valid := body + string(checkDigit(body))

	assert.True(t, Valid(valid))
	assert.Equal(t, "27", StateCode(valid))
	assert.Empty(t, Check(valid))
	assert.Empty(t, Check(""))

	assert.False(t, Valid("27AAPFU0939F1Z"), "too short")
	assert.False(t, Valid("27aapfu0939f1z"+"V"), "lower case")
	wrong := body + "0"
	if wrong == valid {
		wrong = body + "1"
	}
	assert.False(t, Valid(wrong), "bad check digit")
	assert.NotEmpty(t, Check(wrong))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "27AAPFU0939F1ZV", Normalize(" 27aapfu 0939f1zv "))
}
