// Package input turns key events into editor actions by resolving them
// against the scoped keymap registry.
package input

// ActionSource indicates the origin of an action.
type ActionSource uint8

const (
	// SourceKeyboard indicates the action originated from keyboard input.
	SourceKeyboard ActionSource = iota
	// SourceAPI indicates the action originated from an API call.
	SourceAPI
)

// String returns a string representation of the action source.
func (s ActionSource) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourceAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Action represents a command to be executed by the dispatcher.
type Action struct {
	// Name is the command identifier (e.g. "history.undo",
	// "block.duplicate").
	Name string

	// Args contains command-specific arguments.
	Args map[string]any

	// Source indicates where this action originated.
	Source ActionSource
}

// GetString retrieves a string argument.
func (a Action) GetString(key string) string {
	if v, ok := a.Args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetBool retrieves a bool argument.
func (a Action) GetBool(key string) bool {
	if v, ok := a.Args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// GetInt retrieves an int argument.
func (a Action) GetInt(key string) int {
	if v, ok := a.Args[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}
