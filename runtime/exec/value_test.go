package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueString(t *testing.T) {
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "2.5", Float(2.5).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "hi", String("hi").String())
	assert.Equal(t, "[1, 2, 3]", ListOf([]Value{Int(1), Int(2), Int(3)}).String())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Int(1).Equal(Int(1)))
	assert.False(t, Int(1).Equal(Int(2)))
	assert.False(t, Int(1).Equal(Float(1)), "equality is strict across kinds")
	assert.True(t, ListOf([]Value{Int(1)}).Equal(ListOf([]Value{Int(1)})))
	assert.False(t, ListOf([]Value{Int(1)}).Equal(ListOf([]Value{Int(1), Int(2)})))
	assert.False(t, String("1").Equal(Int(1)))
}

func TestTruthy(t *testing.T) {
	assert.True(t, Int(1).Truthy())
	assert.False(t, Int(0).Truthy())
	assert.True(t, Bool(true).Truthy())
	assert.False(t, Void().Truthy())
}
