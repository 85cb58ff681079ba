package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntOrZero(t *testing.T) {
	v := 7
	assert.Equal(t, 7, IntOrZero(&v))
	assert.Equal(t, 0, IntOrZero(nil))
}

func TestFloat64OrZero(t *testing.T) {
	v := 2.5
	assert.Equal(t, 2.5, Float64OrZero(&v))
	assert.Equal(t, float64(0), Float64OrZero(nil))
}

func TestStringOrUnknown(t *testing.T) {
	assert.Equal(t, "title", StringOrUnknown("title"))
	assert.Equal(t, DisplayUnknown, StringOrUnknown(""))
}

func TestIntDisplay(t *testing.T) {
	v := 1981
	assert.Equal(t, "1981", IntDisplay(&v))
	assert.Equal(t, DisplayUnknown, IntDisplay(nil))
}
