package event

// Event names on the wire.
const (
	ActiveWindow = "active-window"
	NewPID       = "new-pid"
	Input        = "input"
)

// Version is the event stream format version, carried in every record.
const Version = "a"

// Record is one self-contained line of the event stream.
type Record struct {
	Time  float64     `json:"time"`
	V     string      `json:"v"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// PIDPayload is the data of a new-pid record, emitted once per process id
// per cache lifetime.
type PIDPayload struct {
	PID     int      `json:"pid"`
	Cmdline []string `json:"cmdline"`
}

// InputPayload is the data of an input record. Stats carries only kinds
// with nonzero activity; Interval is present only on timer-driven flushes.
type InputPayload struct {
	Timeout  bool           `json:"timeout"`
	Stats    map[string]int `json:"stats"`
	Interval int            `json:"interval,omitempty"`
}
