package dialect

// The navlink block reserves ids 25001-25999 to stay clear of upstream
// common and ardupilotmega assignments.
const (
	BlockLo uint32 = 25001
	BlockHi uint32 = 25999
)

// IDRange is a reserved sub-range of the navlink id block
type IDRange struct {
	Lo, Hi  uint32
	Purpose string
}

// Ranges lists the agreed sub-range assignments within the navlink block
func Ranges() []IDRange {
	return []IDRange{
		{25001, 25099, "swarm membership and presence"},
		{25100, 25199, "task negotiation"},
		{25200, 25299, "slot allocation and voting"},
		{25300, 25399, "search coordination"},
		{25400, 25999, "unassigned"},
	}
}

// InBlock reports whether the id falls inside the reserved navlink block
func InBlock(id uint32) bool {
	return id >= BlockLo && id <= BlockHi
}

// RangeFor returns the sub-range an id belongs to
func RangeFor(id uint32) (IDRange, bool) {
	if !InBlock(id) {
		return IDRange{}, false
	}

	for _, r := range Ranges() {
		if id >= r.Lo && id <= r.Hi {
			return r, true
		}
	}

	return IDRange{}, false
}
