package dialect

// Every navlink message starts with the same bookkeeping fields so receivers
// can deduplicate rebroadcasts and age out stale traffic.
func swarmHeader() []Field {
	return []Field{
		{Name: "boot_id", Type: "uint32_t"},
		{Name: "msg_seq", Type: "uint32_t"},
		{Name: "time_ms", Type: "uint32_t"},
		{Name: "ttl_ms", Type: "uint32_t"},
	}
}

func withHeader(fields ...Field) []Field {
	return append(swarmHeader(), fields...)
}

// Navlink returns the built-in navlink dialect: the swarm messages plus
// HEARTBEAT, which endpoints exchange for liveness before any swarm traffic.
func Navlink() *Dialect {
	messages := []*Message{
		{
			ID:   0,
			Name: "HEARTBEAT",
			Fields: []Field{
				{Name: "type", Type: "uint8_t"},
				{Name: "autopilot", Type: "uint8_t"},
				{Name: "base_mode", Type: "uint8_t"},
				{Name: "custom_mode", Type: "uint32_t"},
				{Name: "system_status", Type: "uint8_t"},
				{Name: "mavlink_version", Type: "uint8_t_mavlink_version"},
			},
		},
		{
			ID:     25002,
			Name:   "CHECK_IN",
			Fields: swarmHeader(),
		},
		{
			ID:   25003,
			Name: "CHECK_OUT",
			Fields: withHeader(
				Field{Name: "lat", Type: "float"},
				Field{Name: "lng", Type: "float"},
				Field{Name: "alt", Type: "float"},
			),
		},
		{
			ID:   25004,
			Name: "SWARM_HEARTBEAT",
			Fields: withHeader(
				Field{Name: "state", Type: "uint8_t"},
			),
		},
		{
			ID:   25104,
			Name: "AVAILABLE_TASK_REQUEST",
			Fields: withHeader(
				Field{Name: "count", Type: "uint8_t"},
				Field{Name: "task_id", Type: "uint16_t", ArrayLen: 8},
				Field{Name: "task_type", Type: "uint8_t", ArrayLen: 8},
				Field{Name: "lat", Type: "float", ArrayLen: 8},
				Field{Name: "lng", Type: "float", ArrayLen: 8},
				Field{Name: "alt", Type: "float", ArrayLen: 8},
			),
		},
		{
			ID:   25105,
			Name: "AVAILABLE_TASK_RESPONSE",
			Fields: withHeader(
				Field{Name: "target_system", Type: "uint8_t"},
				Field{Name: "count", Type: "uint8_t"},
				Field{Name: "task_id", Type: "uint16_t", ArrayLen: 8},
				Field{Name: "time", Type: "uint32_t", ArrayLen: 8},
			),
		},
		{
			ID:   25106,
			Name: "TASK_ASSIGN_REQUEST",
			Fields: withHeader(
				Field{Name: "target_system", Type: "uint8_t"},
				Field{Name: "task_id", Type: "uint16_t"},
				Field{Name: "task_type", Type: "uint8_t"},
				Field{Name: "lat", Type: "float"},
				Field{Name: "lng", Type: "float"},
				Field{Name: "alt", Type: "float"},
			),
		},
		{
			ID:   25107,
			Name: "TASK_ASSIGN_RESPONSE",
			Fields: withHeader(
				Field{Name: "target_system", Type: "uint8_t"},
				Field{Name: "task_id", Type: "uint16_t"},
				Field{Name: "accepted", Type: "uint8_t"},
			),
		},
		{
			ID:   25108,
			Name: "TASK_CONFIRM_REQUEST",
			Fields: withHeader(
				Field{Name: "task_id", Type: "uint16_t"},
				Field{Name: "task_type", Type: "uint8_t"},
				Field{Name: "lat", Type: "float"},
				Field{Name: "lng", Type: "float"},
				Field{Name: "alt", Type: "float"},
			),
		},
		{
			ID:   25109,
			Name: "TASK_CONFIRM_RESPONSE",
			Fields: withHeader(
				Field{Name: "target_system", Type: "uint8_t"},
				Field{Name: "task_id", Type: "uint16_t"},
				Field{Name: "confirmed", Type: "uint8_t"},
			),
		},
		{
			ID:   25200,
			Name: "SLOT_HEARTBEAT",
			Fields: withHeader(
				Field{Name: "slot_id", Type: "uint8_t"},
				Field{Name: "state", Type: "uint8_t"},
			),
		},
		{
			ID:   25201,
			Name: "SLOT_CLAIM",
			Fields: withHeader(
				Field{Name: "slot_id", Type: "uint8_t"},
				Field{Name: "priority", Type: "uint16_t"},
			),
		},
		{
			ID:   25202,
			Name: "VOTE_PHASE",
			Fields: withHeader(
				Field{Name: "phase", Type: "uint8_t"},
				Field{Name: "round_id", Type: "uint32_t"},
				Field{Name: "proposal_id", Type: "uint16_t"},
				Field{Name: "vote", Type: "uint8_t"},
			),
		},
		{
			ID:   25300,
			Name: "SEARCH_STATUS",
			Fields: withHeader(
				Field{Name: "area_id", Type: "uint16_t"},
				Field{Name: "status", Type: "uint8_t"},
				Field{Name: "coverage_pct", Type: "float"},
				Field{Name: "detections", Type: "uint16_t"},
			),
		},
	}

	d, err := NewDialect("navlink", messages)
	if err != nil {
		// built-in definitions are validated by tests
		panic(err)
	}

	return d
}
