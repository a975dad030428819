package identifier

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/rojo-rbx/rojo-sub001/pkg/encoding"
)

const (
	expectedIdentifierLength = requiredPrefixLength + 1 + targetBase62Length
)

func TestLengthRelationships(t *testing.T) {
	if targetBase62Length != int(math.Ceil(collisionResistantLength*8*math.Log(2)/math.Log(62))) {
		t.Error("target base62 length incorrect for collision resistant length")
	}
}

func TestIdentifierCreation(t *testing.T) {
	identifier, err := New(PrefixSession)
	if err != nil {
		t.Fatal("unable to create identifier:", err)
	}
	if !strings.HasPrefix(identifier, PrefixSession) {
		t.Error("identifier does not have correct prefix")
	}
	if len(identifier) != expectedIdentifierLength {
		t.Error("identifier has unexpected length")
	}
	if !IsValid(identifier) {
		t.Error("generated identifier not classified as valid")
	}
}

func TestPrefixLengthEnforcement(t *testing.T) {
	if _, err := New("xyz"); err == nil {
		t.Error("invalid prefix length accepted")
	}
}

func TestInvalidPrefixCharacter(t *testing.T) {
	if _, err := New("XYZ"); err == nil {
		t.Error("invalid prefix characters accepted")
	}
}

func TestIsValid(t *testing.T) {
	testCases := []struct {
		value       string
		expectValid bool
	}{
		{"", false},
		{"abc", false},
		{"75A0FDC4-5C08-4AA4-99B5-154350DEA3DB", false},
		{"sess_jndACgB0qejgkorhU21q4oA56QvEfqV1p2yBH9N40h+", false},
		{"sess_jndACgB0qejgkorhU21q4oA56QvEfqV1p2yBH9N40hK1", false},
		{"SESS_jndACgB0qejgkorhU21q4oA56QvEfqV1p2yBH9N40hK", false},
		{"sess_jndACgB0qejgkorhU21q4oA56QvEfqV1p2yBH9N40hK", true},
	}

	for _, testCase := range testCases {
		if valid := IsValid(testCase.value); valid != testCase.expectValid {
			t.Errorf("IsValid(%q) = %v, expected %v", testCase.value, valid, testCase.expectValid)
		}
	}
}

func TestLeftPadRemoval(t *testing.T) {
	testCases := [][]byte{
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}

	for _, value := range testCases {
		encoded := encoding.EncodeBase62(value)

		builder := &strings.Builder{}
		for i := 22 - len(encoded); i > 0; i-- {
			builder.WriteByte(encoding.Base62Alphabet[0])
		}
		builder.WriteString(encoded)

		decoded, err := encoding.DecodeBase62(builder.String())
		if err != nil {
			t.Error("unable to decode value:", err)
		} else if !bytes.Equal(decoded[len(decoded)-16:], value) {
			t.Error("decoded and extracted bytes do not match original")
		}
	}
}
