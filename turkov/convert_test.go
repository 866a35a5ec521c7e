package turkov

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsFloat(t *testing.T) {
	for _, test := range []struct {
		value    any
		expected float64
	}{
		{float64(21.5), 21.5},
		{"215", 215},
		{" 25 ", 25},
	} {
		parsed, err := asFloat(test.value)
		require.NoError(t, err)
		assert.Equal(t, test.expected, parsed)
	}

	_, err := asFloat(true)
	assert.Error(t, err)
	_, err = asFloat("")
	assert.Error(t, err)
}

func TestAsBool(t *testing.T) {
	for _, test := range []struct {
		value    any
		expected bool
	}{
		{true, true},
		{"true", true},
		{"TRUE", true},
		{"on", true},
		{"1", true},
		{"false", false},
		{"off", false},
		{"0", false},
		{float64(0), false},
		{float64(1), true},
	} {
		parsed, err := asBool(test.value)
		require.NoError(t, err)
		assert.Equal(t, test.expected, parsed, "value %v", test.value)
	}

	_, err := asBool("maybe")
	assert.Error(t, err)
}

func TestAsString(t *testing.T) {
	for _, test := range []struct {
		value    any
		expected string
	}{
		{"heating", "heating"},
		{float64(1), "1"},
		{float64(2.5), "2.5"},
		{true, "true"},
	} {
		parsed, err := asString(test.value)
		require.NoError(t, err)
		assert.Equal(t, test.expected, parsed)
	}
}
