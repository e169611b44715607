package hook

import (
	"strings"
	"testing"

	"focusd/internal/input"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		typ   uint16
		code  uint16
		value int32
		kind  input.Kind
		ok    bool
	}{
		{"key press", evKey, 30, keyValuePress, input.Press, true},
		{"key autorepeat counts as press", evKey, 30, keyValueRepeat, input.Press, true},
		{"key release", evKey, 30, keyValueRelease, input.Release, true},
		{"left button press", evKey, btnMouseFirst, keyValuePress, input.Click, true},
		{"left button release", evKey, btnMouseFirst, keyValueRelease, input.Click, true},
		{"task button", evKey, btnMouseLast, keyValuePress, input.Click, true},
		{"pointer x motion", evRel, relX, -3, input.Move, true},
		{"pointer y motion", evRel, relY, 7, input.Move, true},
		{"wheel", evRel, relWheel, 1, input.Scroll, true},
		{"horizontal wheel", evRel, relHWheel, -1, input.Scroll, true},
		{"hi-res wheel", evRel, relWheelHiRes, 120, input.Scroll, true},
		{"other relative axis", evRel, 0x09, 4, "", false},
		{"sync event", 0x00, 0, 0, "", false},
		{"misc event", 0x04, 4, 458756, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := classify(tt.typ, tt.code, tt.value)
			if ok != tt.ok || kind != tt.kind {
				t.Errorf("classify(%#x, %#x, %d) = (%q, %v), want (%q, %v)",
					tt.typ, tt.code, tt.value, kind, ok, tt.kind, tt.ok)
			}
		})
	}
}

// Trimmed from a real /proc/bus/input/devices listing.
const deviceListing = `I: Bus=0019 Vendor=0000 Product=0001 Version=0000
N: Name="Power Button"
H: Handlers=kbd event0
B: EV=3

I: Bus=0011 Vendor=0001 Product=0001 Version=ab41
N: Name="AT Translated Set 2 keyboard"
H: Handlers=sysrq kbd leds event1
B: EV=120013

I: Bus=0003 Vendor=046d Product=c077 Version=0111
N: Name="Logitech USB Optical Mouse"
H: Handlers=mouse0 event2
B: EV=17

I: Bus=0000 Vendor=0000 Product=0000 Version=0000
N: Name="HDA Intel PCH Headphone"
H: Handlers=event3
B: EV=21
`

func TestParseDeviceList(t *testing.T) {
	keyboards := parseDeviceList(strings.NewReader(deviceListing), KeyboardDevices)
	if len(keyboards) != 2 || keyboards[0] != "event0" || keyboards[1] != "event1" {
		t.Errorf("keyboard nodes = %v, want [event0 event1]", keyboards)
	}

	pointers := parseDeviceList(strings.NewReader(deviceListing), PointerDevices)
	if len(pointers) != 1 || pointers[0] != "event2" {
		t.Errorf("pointer nodes = %v, want [event2]", pointers)
	}
}

func TestParseDeviceList_Empty(t *testing.T) {
	if nodes := parseDeviceList(strings.NewReader(""), KeyboardDevices); len(nodes) != 0 {
		t.Errorf("nodes = %v, want none", nodes)
	}
}
