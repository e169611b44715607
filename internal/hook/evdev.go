package hook

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"focusd/internal/input"
	"focusd/internal/logger"
)

// Linux input-event codes (linux/input-event-codes.h).
const (
	evKey = 0x01
	evRel = 0x02

	relX           = 0x00
	relY           = 0x01
	relHWheel      = 0x06
	relWheel       = 0x08
	relWheelHiRes  = 0x0b
	relHWheelHiRes = 0x0c

	btnMouseFirst = 0x110 // BTN_LEFT
	btnMouseLast  = 0x117 // BTN_TASK

	keyValueRelease = 0
	keyValuePress   = 1
	keyValueRepeat  = 2
)

// eventSize is sizeof(struct input_event) on 64-bit: 16-byte timeval plus
// type, code and value.
const eventSize = 24

// DeviceClass selects which evdev devices a listener attaches to.
type DeviceClass int

const (
	// KeyboardDevices attaches to devices with a kbd handler.
	KeyboardDevices DeviceClass = iota
	// PointerDevices attaches to devices with a mouse handler.
	PointerDevices
)

// Evdev reads raw input events from /dev/input character devices. One
// reader goroutine per device; classification happens in-line and only the
// event kind is reported.
type Evdev struct {
	class   DeviceClass
	devRoot string
	list    string

	mu  sync.Mutex
	fds []int
	wg  sync.WaitGroup
}

// NewKeyboard creates a listener over keyboard devices.
func NewKeyboard() *Evdev {
	return newEvdev(KeyboardDevices)
}

// NewMouse creates a listener over pointer devices.
func NewMouse() *Evdev {
	return newEvdev(PointerDevices)
}

func newEvdev(class DeviceClass) *Evdev {
	return &Evdev{
		class:   class,
		devRoot: "/dev/input",
		list:    "/proc/bus/input/devices",
	}
}

// Start opens the matching devices and begins delivering kinds to fn.
func (e *Evdev) Start(fn func(input.Kind)) error {
	listFile, err := os.Open(e.list)
	if err != nil {
		return fmt.Errorf("failed to read input device list: %w", err)
	}
	nodes := parseDeviceList(listFile, e.class)
	listFile.Close()

	if len(nodes) == 0 {
		return fmt.Errorf("no input devices of class %d found", e.class)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	log := logger.WithComponent("hook")
	opened := 0
	for _, node := range nodes {
		path := filepath.Join(e.devRoot, node)
		fd, err := unix.Open(path, unix.O_RDONLY, 0)
		if err != nil {
			// Typically a permission problem; keep going with the
			// devices we can read.
			log.Warn().Err(err).Str("device", path).Msg("Cannot open input device")
			continue
		}
		e.fds = append(e.fds, fd)
		opened++

		e.wg.Add(1)
		go e.readLoop(fd, path, fn)
	}

	if opened == 0 {
		return fmt.Errorf("no readable input devices of class %d", e.class)
	}
	log.Debug().Int("devices", opened).Msg("Input listener started")
	return nil
}

// Stop closes the devices, which terminates the reader goroutines.
func (e *Evdev) Stop() error {
	e.mu.Lock()
	for _, fd := range e.fds {
		unix.Close(fd)
	}
	e.fds = nil
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}

func (e *Evdev) readLoop(fd int, path string, fn func(input.Kind)) {
	defer e.wg.Done()

	buf := make([]byte, eventSize*64)
	for {
		n, err := unix.Read(fd, buf)
		if err != nil || n <= 0 {
			if err != unix.EINTR {
				logger.WithComponent("hook").Debug().
					Str("device", path).
					Msg("Input device reader stopped")
				return
			}
			continue
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			typ := binary.LittleEndian.Uint16(buf[off+16 : off+18])
			code := binary.LittleEndian.Uint16(buf[off+18 : off+20])
			value := int32(binary.LittleEndian.Uint32(buf[off+20 : off+24]))
			if kind, ok := classify(typ, code, value); ok {
				fn(kind)
			}
		}
	}
}

// classify maps a raw input event to an activity kind. Key autorepeat
// counts as a press; button press and release each count as a click;
// wheel movement is scroll, other relative motion is move.
func classify(typ, code uint16, value int32) (input.Kind, bool) {
	switch typ {
	case evKey:
		if code >= btnMouseFirst && code <= btnMouseLast {
			return input.Click, true
		}
		switch value {
		case keyValuePress, keyValueRepeat:
			return input.Press, true
		case keyValueRelease:
			return input.Release, true
		}
		return "", false
	case evRel:
		switch code {
		case relWheel, relHWheel, relWheelHiRes, relHWheelHiRes:
			return input.Scroll, true
		case relX, relY:
			return input.Move, true
		}
		return "", false
	}
	return "", false
}

// parseDeviceList extracts event node names (eventN) for the requested
// class from the /proc/bus/input/devices listing. Devices are separated by
// blank lines; the H: line names the attached handlers.
func parseDeviceList(r io.Reader, class DeviceClass) []string {
	want := "kbd"
	if class == PointerDevices {
		want = "mouse"
	}

	var nodes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "H: Handlers=") {
			continue
		}
		handlers := strings.Fields(strings.TrimPrefix(line, "H: Handlers="))
		matched := false
		node := ""
		for _, h := range handlers {
			if h == want || strings.HasPrefix(h, want) {
				matched = true
			}
			if strings.HasPrefix(h, "event") {
				node = h
			}
		}
		if matched && node != "" {
			nodes = append(nodes, node)
		}
	}
	return nodes
}
