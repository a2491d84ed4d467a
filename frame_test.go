package ld2410

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Frames round-trip through Encode/tryParse regardless of payload
// content or dialect.
func Test_frameRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dialect := Dialect(rapid.IntRange(0, 1).Draw(t, "dialect"))
		payload := rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(t, "payload")

		wire := Frame{Dialect: dialect, Payload: payload}.Encode()

		d := &decodeBuf{buf: wire}
		res := d.tryParse()
		require.True(t, res.ok, "expected a complete frame, got waiting=%v", res.waiting)
		assert.Equal(t, dialect, res.frame.Dialect)
		assert.Equal(t, payload, res.frame.Payload)
		assert.Empty(t, d.buf, "decoder should consume exactly the encoded frame")
	})
}

// Arbitrary garbage prepended to a valid frame is always skipped, never
// causes a panic or dropped frame.
func Test_frameStreamResyncsPastGarbage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		garbage := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "garbage")
		dialect := Dialect(rapid.IntRange(0, 1).Draw(t, "dialect"))
		payload := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "payload")

		wire := Frame{Dialect: dialect, Payload: payload}.Encode()

		// Garbage must not itself contain the target head magic, or the
		// scan may legitimately (and correctly) lock onto it instead.
		head := headFor(dialect)
		for containsSeq(garbage, head[:]) {
			garbage = garbage[:len(garbage)-1]
		}

		d := &decodeBuf{buf: append(append([]byte(nil), garbage...), wire...)}
		res := d.tryParse()
		require.True(t, res.ok)
		assert.Equal(t, payload, res.frame.Payload)
	})
}

// Garbage that happens to begin with a head magic but carries a bad
// trailer is resynchronised one byte at a time, never an infinite loop.
func Test_frameStreamDropsOneByteOnTrailerMismatch(t *testing.T) {
	wire := Frame{Dialect: DialectCommand, Payload: []byte{0xAA, 0xBB}}.Encode()
	corrupt := append([]byte(nil), wire...)
	corrupt[len(corrupt)-1] ^= 0xFF // break the trailer

	valid := Frame{Dialect: DialectCommand, Payload: []byte{0xCC}}.Encode()

	d := &decodeBuf{buf: append(corrupt, valid...)}
	res := d.tryParse()
	require.True(t, res.ok)
	assert.Equal(t, []byte{0xCC}, res.frame.Payload)
	assert.Greater(t, res.skipped, 0)
}

func containsSeq(haystack, needle []byte) bool {
	if len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func Test_encodeCommandDecodeAck(t *testing.T) {
	wire := EncodeCommand(CmdGetFirmwareVersion, nil)
	d := &decodeBuf{buf: wire}
	res := d.tryParse()
	require.True(t, res.ok)

	code, args, err := DecodeCommand(res.frame.Payload)
	require.NoError(t, err)
	assert.Equal(t, CmdGetFirmwareVersion, code)
	assert.Empty(t, args)

	ackWire := EncodeAck(CmdGetFirmwareVersion, 0, []byte{1, 2, 3})
	d2 := &decodeBuf{buf: ackWire}
	res2 := d2.tryParse()
	require.True(t, res2.ok)

	ack, err := DecodeAck(res2.frame.Payload)
	require.NoError(t, err)
	assert.Equal(t, CmdGetFirmwareVersion|ackCodeBit, ack.Code)
	assert.Equal(t, uint16(0), ack.Status)
	assert.Equal(t, []byte{1, 2, 3}, ack.Args)
}
