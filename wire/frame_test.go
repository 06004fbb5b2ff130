package wire

import (
	"testing"

	"github.com/gartfeo/navlink/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec() *Codec {
	return NewCodec(dialect.Navlink())
}

func TestRoundtrip(t *testing.T) {
	codec := testCodec()

	frame, err := codec.Encode(&Message{
		SysID:  252,
		CompID: 1,
		Seq:    7,
		Name:   "CHECK_OUT",
		Fields: map[string]interface{}{
			"boot_id": uint32(123),
			"msg_seq": uint32(1),
			"time_ms": uint32(1000),
			"ttl_ms":  uint32(5000),
			"lat":     float32(40.31),
			"lng":     float32(44.45),
			"alt":     float32(1500),
		},
	})
	require.NoError(t, err)

	msg, err := codec.Decode(frame)
	require.NoError(t, err)

	assert.Equal(t, uint8(252), msg.SysID)
	assert.Equal(t, uint8(1), msg.CompID)
	assert.Equal(t, uint8(7), msg.Seq)
	assert.Equal(t, uint32(25003), msg.ID)
	assert.Equal(t, "CHECK_OUT", msg.Name)
	assert.Equal(t, uint32(123), msg.Fields["boot_id"])
	assert.Equal(t, uint32(5000), msg.Fields["ttl_ms"])
	assert.Equal(t, float32(40.31), msg.Fields["lat"])
	assert.Equal(t, float32(1500), msg.Fields["alt"])
}

func TestRoundtripArrays(t *testing.T) {
	codec := testCodec()

	frame, err := codec.Encode(&Message{
		SysID: 1,
		Name:  "AVAILABLE_TASK_REQUEST",
		Fields: map[string]interface{}{
			"boot_id":   uint32(1),
			"count":     uint8(2),
			"task_id":   []uint16{10, 20},
			"task_type": []uint8{1, 2},
			"lat":       []float32{40.1, 40.2},
		},
	})
	require.NoError(t, err)

	msg, err := codec.Decode(frame)
	require.NoError(t, err)

	assert.Equal(t, []uint16{10, 20, 0, 0, 0, 0, 0, 0}, msg.Fields["task_id"])
	assert.Equal(t, []uint8{1, 2, 0, 0, 0, 0, 0, 0}, msg.Fields["task_type"])
	assert.Equal(t, []float32{40.1, 40.2, 0, 0, 0, 0, 0, 0}, msg.Fields["lat"])
	assert.Equal(t, uint8(2), msg.Fields["count"])
}

func TestTruncation(t *testing.T) {
	codec := testCodec()

	// all-zero payload truncates to a single byte
	frame, err := codec.Encode(&Message{Name: "CHECK_IN", Fields: nil})
	require.NoError(t, err)
	assert.Len(t, frame, 10+1+2)

	msg, err := codec.Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), msg.Fields["boot_id"])

	// trailing zeros go, leading payload stays
	frame, err = codec.Encode(&Message{
		Name:   "CHECK_IN",
		Fields: map[string]interface{}{"boot_id": uint32(0xAABBCCDD)},
	})
	require.NoError(t, err)
	assert.Len(t, frame, 10+4+2)

	msg, err = codec.Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xAABBCCDD), msg.Fields["boot_id"])
	assert.Equal(t, uint32(0), msg.Fields["ttl_ms"])
}

func TestDecodeErrors(t *testing.T) {
	codec := testCodec()

	frame, err := codec.Encode(&Message{
		Name:   "CHECK_IN",
		Fields: map[string]interface{}{"boot_id": uint32(99)},
	})
	require.NoError(t, err)

	_, err = codec.Decode(frame[:5])
	assert.ErrorIs(t, err, ErrShortFrame)

	bad := append([]byte(nil), frame...)
	bad[0] = 0xFE
	_, err = codec.Decode(bad)
	assert.ErrorIs(t, err, ErrMagic)

	bad = append([]byte(nil), frame...)
	bad[10] ^= 0xFF
	_, err = codec.Decode(bad)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestUnknownMessage(t *testing.T) {
	other, err := dialect.NewDialect("other", []*dialect.Message{
		{ID: 25900, Name: "MYSTERY", Fields: []dialect.Field{{Name: "x", Type: "uint8_t"}}},
	})
	require.NoError(t, err)

	frame, err := NewCodec(other).Encode(&Message{
		Name:   "MYSTERY",
		Fields: map[string]interface{}{"x": uint8(1)},
	})
	require.NoError(t, err)

	_, err = testCodec().Decode(frame)
	assert.ErrorIs(t, err, ErrUnknownMessage)

	_, err = testCodec().Encode(&Message{Name: "MYSTERY"})
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestDecodeSignedFrame(t *testing.T) {
	codec := testCodec()

	frame, err := codec.Encode(&Message{
		SysID:  252,
		Name:   "CHECK_IN",
		Fields: map[string]interface{}{"boot_id": uint32(7)},
	})
	require.NoError(t, err)

	// flag the frame as signed and fix up the checksum, which covers the flag byte
	signed := append([]byte(nil), frame[:len(frame)-checksumLen]...)
	signed[2] |= incompatSigned

	def, ok := codec.Dialect().MessageByName("CHECK_IN")
	require.True(t, ok)
	crc := dialect.X25(signed[1:])
	crc = dialect.X25Accumulate(crc, def.CRCExtra())
	signed = append(signed, byte(crc), byte(crc>>8))

	// 13 byte signature trailer, skipped not verified
	signed = append(signed, make([]byte, signatureLen)...)

	msg, err := codec.Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, uint8(252), msg.SysID)
	assert.Equal(t, uint32(7), msg.Fields["boot_id"])

	// signed flag set but trailer missing
	_, err = codec.Decode(signed[:len(signed)-1])
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestCRCMismatchedDefinitions(t *testing.T) {
	// same id and layout, different field name: receiver must drop the frame
	changed, err := dialect.NewDialect("changed", []*dialect.Message{
		{ID: 25002, Name: "CHECK_IN", Fields: []dialect.Field{
			{Name: "boot_id", Type: "uint32_t"},
			{Name: "msg_seq", Type: "uint32_t"},
			{Name: "time_stamp", Type: "uint32_t"},
			{Name: "ttl_ms", Type: "uint32_t"},
		}},
	})
	require.NoError(t, err)

	frame, err := NewCodec(changed).Encode(&Message{
		Name:   "CHECK_IN",
		Fields: map[string]interface{}{"boot_id": uint32(1)},
	})
	require.NoError(t, err)

	_, err = testCodec().Decode(frame)
	assert.ErrorIs(t, err, ErrChecksum)
}
