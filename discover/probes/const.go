package probes

import "time"

// timeout for a single probe round trip
const timeout = 500 * time.Millisecond
