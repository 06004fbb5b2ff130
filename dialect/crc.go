package dialect

// X25 computes the CRC-16/X.25 checksum used for MAVLink frames
func X25(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = X25Accumulate(crc, b)
	}
	return crc
}

// X25Accumulate adds a single byte to a running X.25 checksum
func X25Accumulate(crc uint16, b byte) uint16 {
	tmp := b ^ byte(crc&0xFF)
	tmp ^= tmp << 4
	return (crc >> 8) ^ (uint16(tmp) << 8) ^ (uint16(tmp) << 3) ^ (uint16(tmp) >> 4)
}

func accumulateString(crc uint16, s string) uint16 {
	for i := 0; i < len(s); i++ {
		crc = X25Accumulate(crc, s[i])
	}
	return crc
}

// CRCExtra computes the per-message seed byte appended to the frame checksum.
// It covers the message name and the base fields in wire order, so any change
// to the definition changes the value and receivers drop mismatched frames.
func (m *Message) CRCExtra() uint8 {
	crc := accumulateString(0xFFFF, m.Name+" ")

	for _, f := range m.SortedFields() {
		if f.Extension {
			break
		}

		typ := f.Type
		if typ == "uint8_t_mavlink_version" {
			typ = "uint8_t"
		}

		crc = accumulateString(crc, typ+" ")
		crc = accumulateString(crc, f.Name+" ")

		if f.ArrayLen > 0 {
			crc = X25Accumulate(crc, byte(f.ArrayLen))
		}
	}

	return uint8((crc & 0xFF) ^ (crc >> 8))
}
