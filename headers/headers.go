// Package headers reads the CRC lookup table out of generated MAVLink C
// headers, as installed by the ArduPilot build and mavlink-router.
package headers

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"regexp"
	"strconv"
)

// ErrNoTable means the file exists but carries no MAVLINK_MESSAGE_CRCS define,
// e.g. a per-message header instead of the dialect root header.
var ErrNoTable = errors.New("no MAVLINK_MESSAGE_CRCS table found")

var (
	tableRe = regexp.MustCompile(`#define MAVLINK_MESSAGE_CRCS\s*\{\{`)
	// {msg_id, crc_extra, min_len, max_len, flags, target_sys_ofs, target_comp_ofs}
	entryRe = regexp.MustCompile(`\{(\d+),\s*(\d+),\s*(\d+),\s*(\d+),\s*\d+,\s*\d+,\s*\d+\}`)
)

// Entry is one row of the generated CRC table
type Entry struct {
	ID       uint32
	CRCExtra uint8
	MinLen   uint8
	MaxLen   uint8
}

// ParseFile extracts the CRC table from a generated dialect header
func ParseFile(path string) (map[uint32]Entry, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if !tableRe.Match(content) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTable)
	}

	entries := make(map[uint32]Entry)
	for _, match := range entryRe.FindAllStringSubmatch(string(content), -1) {
		id, _ := strconv.ParseUint(match[1], 10, 32)
		crc, _ := strconv.ParseUint(match[2], 10, 8)
		minLen, _ := strconv.ParseUint(match[3], 10, 8)
		maxLen, _ := strconv.ParseUint(match[4], 10, 8)

		entries[uint32(id)] = Entry{
			ID:       uint32(id),
			CRCExtra: uint8(crc),
			MinLen:   uint8(minLen),
			MaxLen:   uint8(maxLen),
		}
	}

	return entries, nil
}

// ArduPilotHeader returns the dialect root header of an ArduPilot SITL build
func ArduPilotHeader(root string) string {
	return filepath.Join(root, "build", "sitl", "libraries", "GCS_MAVLink",
		"include", "mavlink", "v2.0", "ardupilotmega", "ardupilotmega.h")
}

// RouterHeader returns the dialect root header of a mavlink-router checkout
func RouterHeader(root string) string {
	return filepath.Join(root, "modules", "mavlink_c_library_v2",
		"ardupilotmega", "ardupilotmega.h")
}
