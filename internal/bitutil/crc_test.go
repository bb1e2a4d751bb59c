package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCRCA_AnticollisionFrame checks CRC_A of the cascade-level-1
// anti-collision frame (SEL=0x93, NVB=0x20) against the textbook CRC_A
// algorithm (poly x^16+x^12+x^5+1, init 0x6363, refin/refout, xorout 0),
// cross-checked against the reveng CRC-16/ISO-IEC-14443-3-A catalog entry.
func TestCRCA_AnticollisionFrame(t *testing.T) {
	lo, hi := CRCA([]byte{0x93, 0x20})
	assert.Equal(t, byte(0x97), lo)
	assert.Equal(t, byte(0x0C), hi)
}

// TestCRCA_Check verifies the algorithm against the standard CRC-A "check"
// vector (ASCII "123456789"), independent of any PN53x-specific framing.
func TestCRCA_Check(t *testing.T) {
	lo, hi := CRCA([]byte("123456789"))
	assert.Equal(t, byte(0x05), lo)
	assert.Equal(t, byte(0xBF), hi)
}

// TestCRCA_Residue verifies invariant 5: appending a buffer's own CRC_A and
// recomputing over the result yields a zero residue.
func TestCRCA_Residue(t *testing.T) {
	cases := [][]byte{
		{0x93, 0x20},
		{0x26},
		{0xD4, 0x02},
		{},
		{0x00, 0x01, 0x02, 0x03, 0x04, 0x05},
	}
	for _, m := range cases {
		withCRC := AppendCRCA(m)
		lo, hi := CRCA(withCRC)
		assert.Equal(t, byte(0), lo, "residue low byte for %x", m)
		assert.Equal(t, byte(0), hi, "residue high byte for %x", m)
	}
}

func TestAppendCRCA(t *testing.T) {
	out := AppendCRCA([]byte{0x93, 0x20})
	assert.Equal(t, []byte{0x93, 0x20, 0x97, 0x0C}, out)
}
