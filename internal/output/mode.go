package output

// Mode governs how text lines are emitted and paced.
type Mode int

const (
	// ModeType emits text one keystroke at a time with randomized pauses.
	ModeType Mode = iota
	// ModeLine emits whole lines and pauses after each.
	ModeLine
	// ModeSplash emits whole lines without capturing anything afterwards.
	ModeSplash
)

func (m Mode) String() string {
	switch m {
	case ModeType:
		return "type"
	case ModeLine:
		return "line"
	case ModeSplash:
		return "splash"
	}
	return "unknown"
}

// ParseMode maps a directive name to its mode.
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "type":
		return ModeType, true
	case "line":
		return ModeLine, true
	case "splash":
		return ModeSplash, true
	}
	return 0, false
}
