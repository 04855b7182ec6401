package paycode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	// 1+2+3+4+5+6 = 21 -> 2+1 = 3
	assert.Equal(t, 3, Checksum("123456"))
	// 9+9+9+9+9+9 = 54 -> 5+4 = 9
	assert.Equal(t, 9, Checksum("999999"))
	assert.Equal(t, 0, Checksum("000000"))
	// 1+0+0+0+0+1 = 2
	assert.Equal(t, 2, Checksum("100001"))
}

func TestFormat(t *testing.T) {
	code, err := Format("20", 1)
	require.NoError(t, err)
	assert.Equal(t, "2000013", code)
	assert.Len(t, code, CodeLength)

	code, err = Format("31", 9999)
	require.NoError(t, err)
	assert.True(t, Validate(code))
}

func TestFormat_Rejects(t *testing.T) {
	_, err := Format("2", 1)
	assert.Error(t, err)
	_, err = Format("2a", 1)
	assert.Error(t, err)
	_, err = Format("20", 0)
	assert.Error(t, err)
	_, err = Format("20", MaxSequence+1)
	assert.Error(t, err)
}

func TestValidate_RoundTrip(t *testing.T) {
	for _, prefix := range []string{"10", "20", "31", "99"} {
		for _, seq := range []int{1, 7, 42, 500, 9999} {
			code, err := Format(prefix, seq)
			require.NoError(t, err)
			assert.True(t, Validate(code), "code %s", code)
		}
	}
}

func TestValidate_FailsClosed(t *testing.T) {
	assert.False(t, Validate(""))
	assert.False(t, Validate("123456"))   // too short
	assert.False(t, Validate("12345678")) // too long
	assert.False(t, Validate("12345ab"))
	assert.False(t, Validate("2000012")) // checksum should be 3
	assert.False(t, Validate("KAA001A"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "KAA001A", Normalize("  kaa 001 a "))
	assert.Equal(t, "2000013", Normalize("200 0013"))
	assert.Equal(t, "", Normalize("   "))
}

func TestClassify(t *testing.T) {
	code, err := Format("20", 15)
	require.NoError(t, err)

	assert.Equal(t, RefClassRoutingCode, Classify(code))
	assert.Equal(t, RefClassPlate, Classify("KBZ123A"))
	assert.Equal(t, RefClassUnknown, Classify("2000012")) // bad checksum
	assert.Equal(t, RefClassUnknown, Classify("KBZ12A"))
	assert.Equal(t, RefClassUnknown, Classify("hello"))
	assert.Equal(t, RefClassUnknown, Classify(""))
}

func TestLooksNumeric(t *testing.T) {
	assert.True(t, LooksNumeric("2000012"))
	assert.False(t, LooksNumeric("200001"))
	assert.False(t, LooksNumeric("KAA001A"))
}

func TestChecksum_SingleDigitStable(t *testing.T) {
	for seq := 1; seq <= 200; seq++ {
		base := fmt.Sprintf("55%04d", seq)
		d := Checksum(base)
		assert.GreaterOrEqual(t, d, 0)
		assert.LessOrEqual(t, d, 9)
	}
}
