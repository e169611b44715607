package event

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStream_Emit_RecordShape(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf)
	s.now = func() time.Time { return time.Unix(1700000000, 500000000) }

	s.Emit(NewPID, PIDPayload{PID: 42, Cmdline: []string{"/usr/bin/editor", "--wait"}})

	line := buf.String()
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("record not newline-terminated: %q", line)
	}
	if !strings.HasPrefix(line, `{"time":`) {
		t.Errorf("record does not lead with time field: %q", line)
	}

	var rec struct {
		Time  float64    `json:"time"`
		V     string     `json:"v"`
		Event string     `json:"event"`
		Data  PIDPayload `json:"data"`
	}
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("invalid JSON record: %v", err)
	}

	if rec.Time != 1700000000.5 {
		t.Errorf("time = %v, want 1700000000.5", rec.Time)
	}
	if rec.V != "a" {
		t.Errorf("v = %q, want %q", rec.V, "a")
	}
	if rec.Event != NewPID {
		t.Errorf("event = %q, want %q", rec.Event, NewPID)
	}
	if rec.Data.PID != 42 || len(rec.Data.Cmdline) != 2 {
		t.Errorf("unexpected data: %+v", rec.Data)
	}
}

func TestStream_Emit_NullPayload(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf)

	s.Emit(ActiveWindow, nil)

	if !strings.Contains(buf.String(), `"data":null`) {
		t.Errorf("nil payload not serialized as null: %q", buf.String())
	}
}

func TestStream_Emit_OneLinePerCall(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf)

	s.Emit(ActiveWindow, nil)
	s.Emit(ActiveWindow, nil)
	s.Emit(ActiveWindow, nil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("line %d is not valid JSON: %q", i, line)
		}
	}
}

func TestStream_SubscribeReceivesRecords(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf)

	ch := s.Subscribe()
	s.Emit(NewPID, PIDPayload{PID: 7})

	select {
	case rec := <-ch:
		if rec.Event != NewPID {
			t.Errorf("event = %q, want %q", rec.Event, NewPID)
		}
	default:
		t.Fatal("subscriber did not receive the record")
	}

	s.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}
}

func TestInputPayload_IntervalOmittedWhenZero(t *testing.T) {
	data, err := json.Marshal(InputPayload{
		Timeout: false,
		Stats:   map[string]int{"press": 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "interval") {
		t.Errorf("boundary flush payload carries interval: %s", data)
	}

	data, err = json.Marshal(InputPayload{
		Timeout:  true,
		Stats:    map[string]int{"press": 3},
		Interval: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"interval":20`) {
		t.Errorf("timeout flush payload missing interval: %s", data)
	}
}
