package tagging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum_ExcludesChecksumByte(t *testing.T) {
	tag := make([]byte, TagLength)
	tag[0] = 1
	tag[4] = 0xFF // would blow up the sum if included
	tag[15] = 2
	require.Equal(t, byte(1+2), Checksum(tag))
}

func TestCRC16_KnownVectors(t *testing.T) {
	require.Equal(t, uint16(0), CRC16(nil))
	require.Equal(t, uint16(0x31C3), CRC16([]byte("123456789")))
}

func TestTag_Marshal_LayoutAndLength(t *testing.T) {
	tag := Tag{
		Identifier:   TagIdentifierFileSetDescriptor,
		Version:      2,
		SerialNumber: 1,
		Location:     100,
	}
	body := []byte("some descriptor body")

	out := tag.Marshal(body)
	require.Equal(t, TagLength+len(body), len(out))
	require.Equal(t, body, out[TagLength:])

	require.Equal(t, byte(TagIdentifierFileSetDescriptor&0xFF), out[0])
	require.Equal(t, byte(TagIdentifierFileSetDescriptor>>8), out[1])
	require.Equal(t, byte(2), out[2])

	gotCRC := uint16(out[8]) | uint16(out[9])<<8
	require.Equal(t, CRC16(body), gotCRC)

	gotLen := uint16(out[10]) | uint16(out[11])<<8
	require.Equal(t, uint16(len(body)), gotLen)
}

func TestTag_Marshal_ChecksumVerifiesAgainstOutput(t *testing.T) {
	tag := Tag{Identifier: TagIdentifierPartitionDescriptor, Location: 7}
	out := tag.Marshal([]byte("x"))
	require.Equal(t, Checksum(out[0:TagLength]), out[4])
}

func TestTag_Marshal_EmptyBody(t *testing.T) {
	tag := Tag{Identifier: TagIdentifierTerminatingDescriptor}
	out := tag.Marshal(nil)
	require.Equal(t, TagLength, len(out))
}
