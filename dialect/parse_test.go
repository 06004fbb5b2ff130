package dialect

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commonXML = `<?xml version="1.0"?>
<mavlink>
	<messages>
		<message id="0" name="HEARTBEAT">
			<description>The heartbeat message</description>
			<field type="uint8_t" name="type">Vehicle type</field>
			<field type="uint8_t" name="autopilot">Autopilot type</field>
			<field type="uint8_t" name="base_mode">Bitmap</field>
			<field type="uint32_t" name="custom_mode">Flight mode</field>
			<field type="uint8_t" name="system_status">System status</field>
			<field type="uint8_t_mavlink_version" name="mavlink_version">Protocol version</field>
		</message>
	</messages>
</mavlink>`

const navlinkXML = `<?xml version="1.0"?>
<mavlink>
	<include>common.xml</include>
	<messages>
		<message id="25002" name="CHECK_IN">
			<field type="uint32_t" name="boot_id"/>
			<field type="uint32_t" name="msg_seq"/>
			<field type="uint32_t" name="time_ms"/>
			<field type="uint32_t" name="ttl_ms"/>
		</message>
		<message id="25104" name="AVAILABLE_TASK_REQUEST">
			<field type="uint32_t" name="boot_id"/>
			<field type="uint32_t" name="msg_seq"/>
			<field type="uint32_t" name="time_ms"/>
			<field type="uint32_t" name="ttl_ms"/>
			<field type="uint8_t" name="count"/>
			<field type="uint16_t[8]" name="task_id"/>
			<extensions/>
			<field type="uint8_t" name="flags"/>
		</message>
	</messages>
</mavlink>`

func writeDialect(t *testing.T) string {
	t.Helper()

	dir, err := ioutil.TempDir("", "dialect")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "common.xml"), []byte(commonXML), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "navlink.xml"), []byte(navlinkXML), 0644))

	return dir
}

func TestParseFile(t *testing.T) {
	dir := writeDialect(t)

	set, err := ParseFile(filepath.Join(dir, "navlink.xml"))
	require.NoError(t, err)

	assert.Equal(t, "navlink", set.Name)
	assert.Len(t, set.Messages, 3)

	// included message carries the upstream CRC extra
	hb, ok := set.MessageByName("HEARTBEAT")
	require.True(t, ok)
	assert.Equal(t, uint8(50), hb.CRCExtra())

	checkIn, ok := set.Message(25002)
	require.True(t, ok)
	assert.Equal(t, "CHECK_IN", checkIn.Name)
	assert.Len(t, checkIn.Fields, 4)
}

func TestParseArrayAndExtensions(t *testing.T) {
	dir := writeDialect(t)

	set, err := ParseFile(filepath.Join(dir, "navlink.xml"))
	require.NoError(t, err)

	m, ok := set.MessageByName("AVAILABLE_TASK_REQUEST")
	require.True(t, ok)

	taskID, ok := m.Field("task_id")
	require.True(t, ok)
	assert.Equal(t, "uint16_t", taskID.Type)
	assert.Equal(t, 8, taskID.ArrayLen)
	assert.False(t, taskID.Extension)

	flags, ok := m.Field("flags")
	require.True(t, ok)
	assert.True(t, flags.Extension)

	// extension must not affect the CRC
	withoutExt := &Message{ID: m.ID, Name: m.Name, Fields: m.Fields[:len(m.Fields)-1]}
	assert.Equal(t, withoutExt.CRCExtra(), m.CRCExtra())
}

func TestParseMissingFile(t *testing.T) {
	_, err := ParseFile("does-not-exist.xml")
	assert.Error(t, err)
}

func TestParseInvalidType(t *testing.T) {
	dir := writeDialect(t)

	bad := `<?xml version="1.0"?>
<mavlink>
	<messages>
		<message id="25900" name="BAD">
			<field type="uint24_t" name="x"/>
		</message>
	</messages>
</mavlink>`
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "bad.xml"), []byte(bad), 0644))

	_, err := ParseFile(filepath.Join(dir, "bad.xml"))
	assert.Error(t, err)
}
