package game

// CommandKind names an action requested by the user interface.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdToggleInput
	CmdResize
	CmdQuit
)

func (k CommandKind) String() string {
	switch k {
	case CmdStart:
		return "start"
	case CmdToggleInput:
		return "toggle-input"
	case CmdResize:
		return "resize"
	case CmdQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is applied on the loop goroutine. Width and Height are the new
// play-area size for CmdResize.
type Command struct {
	Kind          CommandKind
	Width, Height float64
}
