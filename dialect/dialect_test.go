package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedFields(t *testing.T) {
	m := &Message{
		ID:   25500,
		Name: "PROBE",
		Fields: []Field{
			{Name: "small", Type: "uint8_t"},
			{Name: "big", Type: "uint32_t"},
			{Name: "mid", Type: "uint16_t"},
			{Name: "small2", Type: "uint8_t"},
			{Name: "ext", Type: "uint64_t", Extension: true},
		},
	}

	var names []string
	for _, f := range m.SortedFields() {
		names = append(names, f.Name)
	}

	// base fields by descending size, stable; extensions last in definition order
	assert.Equal(t, []string{"big", "mid", "small", "small2", "ext"}, names)
}

func TestWireLength(t *testing.T) {
	set := Navlink()

	m, ok := set.MessageByName("CHECK_OUT")
	require.True(t, ok)

	// 4 header uint32 + lat/lng/alt floats
	length, err := m.WireLength()
	require.NoError(t, err)
	assert.Equal(t, 28, length)
}

func TestNavlinkIndexes(t *testing.T) {
	set := Navlink()

	byID, ok := set.Message(25002)
	require.True(t, ok)
	assert.Equal(t, "CHECK_IN", byID.Name)

	byName, ok := set.MessageByName("check_in")
	require.True(t, ok)
	assert.Equal(t, byID, byName)

	_, ok = set.Message(25001)
	assert.False(t, ok)
}

func TestNavlinkIDsInBlock(t *testing.T) {
	for _, m := range Navlink().Messages {
		if m.Name == "HEARTBEAT" {
			continue
		}

		assert.True(t, InBlock(m.ID), m.Name)

		r, ok := RangeFor(m.ID)
		require.True(t, ok, m.Name)
		assert.NotEqual(t, "unassigned", r.Purpose, m.Name)
	}
}

func TestDuplicateDetection(t *testing.T) {
	_, err := NewDialect("dup", []*Message{
		{ID: 25500, Name: "A", Fields: []Field{{Name: "a", Type: "uint8_t"}}},
		{ID: 25500, Name: "B", Fields: []Field{{Name: "b", Type: "uint8_t"}}},
	})
	assert.Error(t, err)

	_, err = NewDialect("dup", []*Message{
		{ID: 25500, Name: "A", Fields: []Field{{Name: "a", Type: "uint8_t"}}},
		{ID: 25501, Name: "A", Fields: []Field{{Name: "b", Type: "uint8_t"}}},
	})
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	f := Field{Name: "boot_id", Type: "uint32_t"}
	v, err := f.Coerce("123")
	require.NoError(t, err)
	assert.Equal(t, uint32(123), v)

	f = Field{Name: "lat", Type: "float"}
	v, err = f.Coerce("40.31")
	require.NoError(t, err)
	assert.InDelta(t, 40.31, float64(v.(float32)), 1e-5)

	f = Field{Name: "state", Type: "uint8_t"}
	_, err = f.Coerce("256")
	assert.Error(t, err)

	f = Field{Name: "task_id", Type: "uint16_t", ArrayLen: 4}
	v, err = f.Coerce("1,2,3")
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 3, 0}, v)

	_, err = f.Coerce("1,2,3,4,5")
	assert.Error(t, err)

	f = Field{Name: "name", Type: "char", ArrayLen: 8}
	v, err = f.Coerce("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}
