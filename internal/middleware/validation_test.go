package middleware

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateMessageContent(t *testing.T) {
	assert.NoError(t, ValidateMessageContent("hello"))
	assert.Error(t, ValidateMessageContent(""))
	assert.Error(t, ValidateMessageContent(strings.Repeat("a", 100001)))
	assert.Error(t, ValidateMessageContent(string([]byte{0xff, 0xfe})))
}

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, ValidateIdentifier("research-report"))
	assert.NoError(t, ValidateIdentifier("user_1.test:a"))
	assert.Error(t, ValidateIdentifier(""))
	assert.Error(t, ValidateIdentifier(strings.Repeat("a", 129)))
	assert.Error(t, ValidateIdentifier("bad/id"))
	assert.Error(t, ValidateIdentifier("spaced id"))
}

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, ValidateSessionID(uuid.New().String()))
	assert.Error(t, ValidateSessionID("not-a-uuid"))
}
