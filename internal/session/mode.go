package session

import "fmt"

// Mode identifies which of the device's two shells is active.
type Mode int

const (
	// ModeUnknown is the state before the first successful login and after
	// the connection is closed.
	ModeUnknown Mode = iota
	// ModeVendor is the rkscli vendor shell.
	ModeVendor
	// ModeGeneral is the underlying POSIX shell.
	ModeGeneral
)

func (m Mode) String() string {
	switch m {
	case ModeVendor:
		return "vendor"
	case ModeGeneral:
		return "general"
	default:
		return "unknown"
	}
}

// ParseMode maps the names accepted in manifests and config files to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "vendor", "rkscli":
		return ModeVendor, nil
	case "general", "shell", "linux":
		return ModeGeneral, nil
	}
	return ModeUnknown, fmt.Errorf("unknown shell mode %q (want vendor or general)", s)
}

// switchStep is the line to send, and the prompt to await, to move between
// shells.
type switchStep struct {
	send  string
	await string
}

// transition returns the step that moves the device from one shell to the
// other. ok is false when no switch is needed.
func (p Prompts) transition(from, to Mode) (step switchStep, ok bool) {
	if from == to {
		return switchStep{}, false
	}
	switch to {
	case ModeGeneral:
		return switchStep{send: p.EnterGeneral, await: p.General}, true
	case ModeVendor:
		return switchStep{send: p.EnterVendor, await: p.Vendor}, true
	}
	return switchStep{}, false
}

// Step is one command bound to the shell it must run in.
type Step struct {
	Mode    Mode
	Command string
}

// Plan returns the lines a freshly logged-in session would send to run
// steps in order, including the shell switches between them.
func Plan(p Prompts, steps []Step) []string {
	p = p.withDefaults()
	cur := ModeVendor
	var lines []string
	for _, st := range steps {
		if sw, ok := p.transition(cur, st.Mode); ok {
			lines = append(lines, sw.send)
			cur = st.Mode
		}
		lines = append(lines, st.Command)
	}
	return lines
}
