package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeForFormulaInjection(t *testing.T) {
	assert.Equal(t, "'=SUM(A1:A9)", SanitizeForFormulaInjection("=SUM(A1:A9)"))
	assert.Equal(t, "'+1+1", SanitizeForFormulaInjection("+1+1"))
	assert.Equal(t, "'-2", SanitizeForFormulaInjection("-2"))
	assert.Equal(t, "'@cmd", SanitizeForFormulaInjection("@cmd"))

	assert.Equal(t, "100 Main St", SanitizeForFormulaInjection("100 Main St"))
	assert.Equal(t, "", SanitizeForFormulaInjection(""))
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "hello world", StripUnprintable("hello\x00 world"))
	assert.Equal(t, "tab\tand\nnewline", StripUnprintable("tab\tand\nnewline"))
}
