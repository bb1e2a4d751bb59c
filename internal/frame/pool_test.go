package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPutBuffer(t *testing.T) {
	buf := GetBuffer()
	assert.GreaterOrEqual(t, cap(buf), MaxFrameDataLength+MinFrameLength)
	PutBuffer(buf)
}

func TestGetPutSmallBuffer(t *testing.T) {
	buf := GetSmallBuffer()
	assert.Equal(t, smallBufferSize, cap(buf))
	PutBuffer(buf)
}

func TestExtractFrameData(t *testing.T) {
	// D4 02 wrapped: 00 00 FF 02 FE D4 02 2A 00
	buf := []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00}
	// off is the index of the LEN byte.
	off := 3
	got := ExtractFrameData(buf, off, 2)
	assert.Equal(t, []byte{0xD4, 0x02}, got)
}
