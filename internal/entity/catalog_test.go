package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeItemName(t *testing.T) {
	assert.Equal(t, "Blue Towels", NormalizeItemName("  Blue \t  Towels "))
	assert.Equal(t, "", NormalizeItemName("   "))
	assert.Equal(t, "Gloves", NormalizeItemName("Gloves"))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("1001"))
	assert.True(t, IsNumeric(" 1001.5 "))
	assert.True(t, IsNumeric("-3"))
	assert.False(t, IsNumeric("n/a"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("NaN"))
	assert.False(t, IsNumeric("Inf"))
}

func TestCanonicalProductNumber(t *testing.T) {
	assert.Equal(t, "1001", CanonicalProductNumber("1001.0"))
	assert.Equal(t, "1001", CanonicalProductNumber(" 1001 "))
	assert.Equal(t, "1001.5", CanonicalProductNumber("1001.5"))
	assert.Equal(t, "AB-12", CanonicalProductNumber(" AB-12 "))
	assert.Equal(t, "NaN", CanonicalProductNumber("NaN"), "non-finite values pass through as text")
}
