// Package wire frames dialect messages as MAVLink v2 packets. Message ids
// above 255 do not fit v1 frames, so v2 is the only wire format supported.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gartfeo/navlink/dialect"
)

const (
	magicV2     = 0xFD
	headerLen   = 10
	checksumLen = 2

	// incompatSigned marks a frame carrying a 13 byte signature trailer
	incompatSigned = 0x01
	signatureLen   = 13
)

var (
	ErrShortFrame     = errors.New("frame too short")
	ErrMagic          = errors.New("invalid frame magic")
	ErrUnknownMessage = errors.New("unknown message id")
	ErrChecksum       = errors.New("checksum mismatch")
)

// Message is a decoded frame: routing header plus field values keyed by name
type Message struct {
	SysID  uint8
	CompID uint8
	Seq    uint8
	ID     uint32
	Name   string
	Fields map[string]interface{}
}

// Codec encodes and decodes frames for a fixed dialect
type Codec struct {
	set *dialect.Dialect
}

// NewCodec creates a frame codec for the given dialect
func NewCodec(set *dialect.Dialect) *Codec {
	return &Codec{set: set}
}

// Dialect returns the dialect the codec was created with
func (c *Codec) Dialect() *dialect.Dialect {
	return c.set
}

// Encode packs the message into a v2 frame. Missing fields are zero, the
// payload has trailing zeros truncated down to a single byte minimum.
func (c *Codec) Encode(msg *Message) ([]byte, error) {
	def, ok := c.set.MessageByName(msg.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessage, msg.Name)
	}

	var payload []byte
	for _, f := range def.SortedFields() {
		var err error
		if payload, err = appendField(payload, f, msg.Fields[f.Name]); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
		}
	}

	// v2 trailing zero truncation
	end := len(payload)
	for end > 1 && payload[end-1] == 0 {
		end--
	}
	payload = payload[:end]

	frame := make([]byte, 0, headerLen+len(payload)+checksumLen)
	frame = append(frame,
		magicV2,
		byte(len(payload)),
		0, // incompat_flags
		0, // compat_flags
		msg.Seq,
		msg.SysID,
		msg.CompID,
		byte(def.ID),
		byte(def.ID>>8),
		byte(def.ID>>16),
	)
	frame = append(frame, payload...)

	crc := dialect.X25(frame[1:])
	crc = dialect.X25Accumulate(crc, def.CRCExtra())
	frame = append(frame, byte(crc), byte(crc>>8))

	return frame, nil
}

// Decode validates and unpacks a v2 frame. Truncated payloads are re-padded
// with zeros to the full wire length before unpacking. Signed frames are
// accepted, the signature is not verified.
func (c *Codec) Decode(buf []byte) (*Message, error) {
	if len(buf) < headerLen+1+checksumLen {
		return nil, ErrShortFrame
	}
	if buf[0] != magicV2 {
		return nil, fmt.Errorf("%w: %#02x", ErrMagic, buf[0])
	}

	payloadLen := int(buf[1])
	frameLen := headerLen + payloadLen + checksumLen
	if buf[2]&incompatSigned != 0 {
		frameLen += signatureLen
	}
	if len(buf) < frameLen {
		return nil, ErrShortFrame
	}

	id := uint32(buf[7]) | uint32(buf[8])<<8 | uint32(buf[9])<<16
	def, ok := c.set.Message(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, id)
	}

	crc := dialect.X25(buf[1 : headerLen+payloadLen])
	crc = dialect.X25Accumulate(crc, def.CRCExtra())
	want := binary.LittleEndian.Uint16(buf[headerLen+payloadLen:])
	if crc != want {
		return nil, fmt.Errorf("%w: %s computed %d, frame %d", ErrChecksum, def.Name, crc, want)
	}

	wireLen, err := def.WireLength()
	if err != nil {
		return nil, err
	}
	payload := make([]byte, wireLen)
	copy(payload, buf[headerLen:headerLen+payloadLen])

	fields := make(map[string]interface{})
	for _, f := range def.SortedFields() {
		value, n, err := takeField(payload, f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
		}
		fields[f.Name] = value
		payload = payload[n:]
	}

	return &Message{
		SysID:  buf[5],
		CompID: buf[6],
		Seq:    buf[4],
		ID:     id,
		Name:   def.Name,
		Fields: fields,
	}, nil
}

func appendField(buf []byte, f dialect.Field, value interface{}) ([]byte, error) {
	if f.ArrayLen > 0 {
		return appendArray(buf, f, value)
	}
	return appendScalar(buf, f.Type, value)
}

func appendScalar(buf []byte, typ string, value interface{}) ([]byte, error) {
	switch typ {
	case "float":
		v, err := toFloat(value)
		return append32(buf, math.Float32bits(float32(v))), err
	case "double":
		v, err := toFloat(value)
		return append64(buf, math.Float64bits(v)), err
	case "uint8_t", "int8_t", "char", "uint8_t_mavlink_version":
		v, err := toUint(value)
		return append(buf, byte(v)), err
	case "uint16_t", "int16_t":
		v, err := toUint(value)
		return append(buf, byte(v), byte(v>>8)), err
	case "uint32_t", "int32_t":
		v, err := toUint(value)
		return append32(buf, uint32(v)), err
	case "uint64_t", "int64_t":
		v, err := toUint(value)
		return append64(buf, v), err
	}
	return buf, fmt.Errorf("unknown field type: %s", typ)
}

func appendArray(buf []byte, f dialect.Field, value interface{}) ([]byte, error) {
	if f.Type == "char" {
		s, _ := value.(string)
		if len(s) > f.ArrayLen {
			return buf, fmt.Errorf("string exceeds %d chars", f.ArrayLen)
		}
		buf = append(buf, s...)
		for i := len(s); i < f.ArrayLen; i++ {
			buf = append(buf, 0)
		}
		return buf, nil
	}

	elems, err := arrayElems(value, f.ArrayLen)
	if err != nil {
		return buf, err
	}

	for _, e := range elems {
		if buf, err = appendScalar(buf, f.Type, e); err != nil {
			return buf, err
		}
	}

	return buf, nil
}

func takeField(payload []byte, f dialect.Field) (interface{}, int, error) {
	size, err := f.Size()
	if err != nil {
		return nil, 0, err
	}
	if len(payload) < size {
		return nil, 0, ErrShortFrame
	}

	if f.ArrayLen > 0 {
		return takeArray(payload, f, size)
	}

	return takeScalar(payload, f.Type), size, nil
}

func takeScalar(payload []byte, typ string) interface{} {
	switch typ {
	case "float":
		return math.Float32frombits(binary.LittleEndian.Uint32(payload))
	case "double":
		return math.Float64frombits(binary.LittleEndian.Uint64(payload))
	case "uint8_t", "uint8_t_mavlink_version":
		return payload[0]
	case "int8_t":
		return int8(payload[0])
	case "char":
		return payload[0]
	case "uint16_t":
		return binary.LittleEndian.Uint16(payload)
	case "int16_t":
		return int16(binary.LittleEndian.Uint16(payload))
	case "uint32_t":
		return binary.LittleEndian.Uint32(payload)
	case "int32_t":
		return int32(binary.LittleEndian.Uint32(payload))
	case "uint64_t":
		return binary.LittleEndian.Uint64(payload)
	case "int64_t":
		return int64(binary.LittleEndian.Uint64(payload))
	}
	return nil
}

func takeArray(payload []byte, f dialect.Field, size int) (interface{}, int, error) {
	if f.Type == "char" {
		raw := payload[:f.ArrayLen]
		for i, b := range raw {
			if b == 0 {
				raw = raw[:i]
				break
			}
		}
		return string(raw), size, nil
	}

	elemSize := size / f.ArrayLen
	switch f.Type {
	case "float":
		res := make([]float32, f.ArrayLen)
		for i := range res {
			res[i] = takeScalar(payload[i*elemSize:], f.Type).(float32)
		}
		return res, size, nil
	case "double":
		res := make([]float64, f.ArrayLen)
		for i := range res {
			res[i] = takeScalar(payload[i*elemSize:], f.Type).(float64)
		}
		return res, size, nil
	case "uint8_t", "uint8_t_mavlink_version":
		res := make([]uint8, f.ArrayLen)
		copy(res, payload)
		return res, size, nil
	case "int8_t":
		res := make([]int8, f.ArrayLen)
		for i := range res {
			res[i] = int8(payload[i])
		}
		return res, size, nil
	case "uint16_t":
		res := make([]uint16, f.ArrayLen)
		for i := range res {
			res[i] = takeScalar(payload[i*elemSize:], f.Type).(uint16)
		}
		return res, size, nil
	case "int16_t":
		res := make([]int16, f.ArrayLen)
		for i := range res {
			res[i] = takeScalar(payload[i*elemSize:], f.Type).(int16)
		}
		return res, size, nil
	case "uint32_t":
		res := make([]uint32, f.ArrayLen)
		for i := range res {
			res[i] = takeScalar(payload[i*elemSize:], f.Type).(uint32)
		}
		return res, size, nil
	case "int32_t":
		res := make([]int32, f.ArrayLen)
		for i := range res {
			res[i] = takeScalar(payload[i*elemSize:], f.Type).(int32)
		}
		return res, size, nil
	case "uint64_t":
		res := make([]uint64, f.ArrayLen)
		for i := range res {
			res[i] = takeScalar(payload[i*elemSize:], f.Type).(uint64)
		}
		return res, size, nil
	case "int64_t":
		res := make([]int64, f.ArrayLen)
		for i := range res {
			res[i] = takeScalar(payload[i*elemSize:], f.Type).(int64)
		}
		return res, size, nil
	}

	return nil, 0, fmt.Errorf("unknown field type: %s", f.Type)
}

func append32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func append64(buf []byte, v uint64) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}
