package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo(t *testing.T) {
	v := 3
	p := To(v)
	v = 4
	assert.Equal(t, 3, *p)
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "x", Deref(To("x"), "def"))
	assert.Equal(t, "def", Deref[string](nil, "def"))
}

func TestNonZero(t *testing.T) {
	assert.Nil(t, NonZero(""))
	assert.Nil(t, NonZero(0))
	assert.Equal(t, "PGFN", *NonZero("PGFN"))
}
