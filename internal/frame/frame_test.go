package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWrap_S1 covers scenario S1: GetFirmwareVersion wraps to the literal
// wire bytes from spec.md.
func TestWrap_S1(t *testing.T) {
	got, err := Wrap([]byte{0xD4, 0x02})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00}, got)
}

// TestUnwrap_S2 covers scenario S2: an ACK frame followed by the
// GetFirmwareVersion response must be recognized and unwrapped to the bare
// chip-level payload.
func TestUnwrap_S2(t *testing.T) {
	ack := []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	require.True(t, IsAck(ack))

	resp := []byte{0x00, 0x00, 0xFF, 0x06, 0xFA, 0xD5, 0x03, 0x32, 0x01, 0x06, 0x07, 0xE8, 0x00}
	payload, consumed, err := Unwrap(resp)
	require.NoError(t, err)
	assert.Equal(t, len(resp), consumed)
	assert.Equal(t, []byte{0xD5, 0x03, 0x32, 0x01, 0x06, 0x07}, payload)
}

// TestWrapUnwrap_RoundTrip verifies invariant 1: unwrap(wrap(P)) == P and
// len(wrap(P)) == len(P)+7 for every payload up to 255 bytes.
func TestWrapUnwrap_RoundTrip(t *testing.T) {
	cases := [][]byte{
		{0xD4, 0x02},
		{},
		{0xD4},
		make([]byte, 255),
		{0xD4, 0x4A, 0x01, 0x00},
	}
	for _, p := range cases {
		wrapped, err := Wrap(p)
		require.NoError(t, err)
		assert.Len(t, wrapped, len(p)+7)

		got, consumed, err := Unwrap(wrapped)
		require.NoError(t, err)
		assert.Equal(t, len(wrapped), consumed)
		assert.Equal(t, p, got)
	}
}

// TestWrap_PayloadTooLarge verifies the standard-frame size ceiling.
func TestWrap_PayloadTooLarge(t *testing.T) {
	_, err := Wrap(make([]byte, 256))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

// TestChecksumInvariant verifies invariant 2: for every frame Wrap
// produces, (LEN+LCS) mod 256 == 0 and (sum(payload)+DCS) mod 256 == 0.
func TestChecksumInvariant(t *testing.T) {
	for n := 0; n <= 255; n++ {
		p := make([]byte, n)
		for i := range p {
			p[i] = byte(i*7 + 3)
		}
		wrapped, err := Wrap(p)
		require.NoError(t, err)

		ln := wrapped[3]
		lcs := wrapped[4]
		assert.Zero(t, byte(int(ln)+int(lcs)))

		dcs := wrapped[4+1+n]
		assert.Zero(t, byte(int(sumBytes(p))+int(dcs)))
	}
}

func TestUnwrap_Truncated(t *testing.T) {
	full, _ := Wrap([]byte{0xD4, 0x02})
	for i := 0; i < len(full); i++ {
		_, _, err := Unwrap(full[:i])
		assert.Error(t, err)
	}
}

func TestUnwrap_BadChecksum(t *testing.T) {
	full, _ := Wrap([]byte{0xD4, 0x02})
	corrupt := append([]byte(nil), full...)
	corrupt[5] ^= 0xFF // corrupt a payload byte, breaking the DCS
	_, _, err := Unwrap(corrupt)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}
