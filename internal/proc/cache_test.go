package proc

import (
	"fmt"
	"sync"
	"testing"

	"focusd/internal/event"
)

type fakeInspector struct {
	cmdlines map[int][]string
}

func (f *fakeInspector) Cmdline(pid int) ([]string, error) {
	cmdline, ok := f.cmdlines[pid]
	if !ok {
		return nil, fmt.Errorf("no such process: %d", pid)
	}
	return cmdline, nil
}

type pidSink struct {
	mu   sync.Mutex
	pids []int
}

func (s *pidSink) Emit(name string, data interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != event.NewPID {
		return
	}
	s.pids = append(s.pids, data.(event.PIDPayload).PID)
}

func (s *pidSink) count(pid int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.pids {
		if p == pid {
			n++
		}
	}
	return n
}

func TestCache_NewPIDEmittedOncePerFill(t *testing.T) {
	sink := &pidSink{}
	cache, err := NewCache(256, &fakeInspector{cmdlines: map[int][]string{
		100: {"/usr/bin/editor"},
	}}, sink)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		cmdline, err := cache.Resolve(100)
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
		if len(cmdline) != 1 || cmdline[0] != "/usr/bin/editor" {
			t.Errorf("cmdline = %v", cmdline)
		}
	}

	if got := sink.count(100); got != 1 {
		t.Errorf("new-pid emitted %d times, want 1", got)
	}
}

func TestCache_LookupErrorNotCached(t *testing.T) {
	sink := &pidSink{}
	inspector := &fakeInspector{cmdlines: map[int][]string{}}
	cache, err := NewCache(256, inspector, sink)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Resolve(100); err == nil {
		t.Fatal("expected lookup error for unknown pid")
	}
	if len(sink.pids) != 0 {
		t.Errorf("failed lookup emitted new-pid: %v", sink.pids)
	}

	// The process appears later; the miss must retry the table.
	inspector.cmdlines[100] = []string{"/usr/bin/browser"}
	cmdline, err := cache.Resolve(100)
	if err != nil {
		t.Fatalf("resolve after process appeared: %v", err)
	}
	if cmdline[0] != "/usr/bin/browser" {
		t.Errorf("cmdline = %v", cmdline)
	}
	if got := sink.count(100); got != 1 {
		t.Errorf("new-pid emitted %d times, want 1", got)
	}
}

func TestCache_LRUEvictionReemits(t *testing.T) {
	const capacity = 256

	cmdlines := make(map[int][]string, capacity+1)
	for pid := 1; pid <= capacity+1; pid++ {
		cmdlines[pid] = []string{fmt.Sprintf("/proc/%d", pid)}
	}

	sink := &pidSink{}
	cache, err := NewCache(capacity, &fakeInspector{cmdlines: cmdlines}, sink)
	if err != nil {
		t.Fatal(err)
	}

	// Fill to capacity plus one: pid 1 is the least recently used and
	// gets evicted.
	for pid := 1; pid <= capacity+1; pid++ {
		if _, err := cache.Resolve(pid); err != nil {
			t.Fatal(err)
		}
	}
	if cache.Len() != capacity {
		t.Errorf("cache size = %d, want %d", cache.Len(), capacity)
	}

	// pid 2 is still cached: no re-emission.
	if _, err := cache.Resolve(2); err != nil {
		t.Fatal(err)
	}
	if got := sink.count(2); got != 1 {
		t.Errorf("new-pid for cached pid emitted %d times, want 1", got)
	}

	// pid 1 was evicted: re-resolving emits again.
	if _, err := cache.Resolve(1); err != nil {
		t.Fatal(err)
	}
	if got := sink.count(1); got != 2 {
		t.Errorf("new-pid for evicted pid emitted %d times, want 2", got)
	}
}
