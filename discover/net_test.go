package discover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPsFromSubnet(t *testing.T) {
	ips, err := IPsFromSubnet("192.168.1.0/30")
	require.NoError(t, err)
	assert.Contains(t, ips, "192.168.1.1")
	assert.Contains(t, ips, "192.168.1.2")

	_, err = IPsFromSubnet("not-a-subnet")
	assert.Error(t, err)
}
