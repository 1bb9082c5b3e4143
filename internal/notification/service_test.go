package notification

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPreviewOf(t *testing.T) {
	assert.Equal(t, "Oi", previewOf("Oi"))

	long := previewOf(strings.Repeat("a", 60))
	assert.Equal(t, strings.Repeat("a", 50)+"...", long)

	// Accented content must not be cut mid-rune.
	accented := previewOf("b" + strings.Repeat("ção", 30))
	assert.True(t, utf8.ValidString(accented))
	assert.Equal(t, 53, utf8.RuneCountInString(accented))
}
