package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirrorInvolution(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)
		assert.Equal(t, b, Mirror(Mirror(b)), "mirror(mirror(%#02x)) must equal %#02x", b, b)
	}
}

func TestMirrorKnownValues(t *testing.T) {
	assert.Equal(t, byte(0x00), Mirror(0x00))
	assert.Equal(t, byte(0xFF), Mirror(0xFF))
	assert.Equal(t, byte(0x01), Mirror(0x80))
	assert.Equal(t, byte(0xC0), Mirror(0x03))
}

func TestMirrorBytes(t *testing.T) {
	in := []byte{0x80, 0x01, 0x0F}
	out := MirrorBytes(in)
	assert.Equal(t, []byte{0x01, 0x80, 0xF0}, out)
	assert.Equal(t, in, MirrorBytes(out))
}
