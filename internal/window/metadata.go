package window

// Metadata is the resolved description of one window, immutable once
// constructed. A nil *Metadata means no window is focused, which is itself
// a comparable state for change detection.
type Metadata struct {
	Name       *string  `json:"name"`
	ID         uint32   `json:"wid"`
	PID        *int     `json:"pid"`
	Fullscreen bool     `json:"fullscreen"`
	Class      []string `json:"class"`
}

// Equal reports whether two metadata records describe the same state.
// Nil receivers and arguments compare as "no window focused".
func (m *Metadata) Equal(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.ID != other.ID || m.Fullscreen != other.Fullscreen {
		return false
	}
	if !equalStringPtr(m.Name, other.Name) {
		return false
	}
	if !equalIntPtr(m.PID, other.PID) {
		return false
	}
	if len(m.Class) != len(other.Class) {
		return false
	}
	for i := range m.Class {
		if m.Class[i] != other.Class[i] {
			return false
		}
	}
	return true
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
