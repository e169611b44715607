// Package x11 is the windowing-system client: active-window lookup,
// per-window PropertyChange subscriptions, and the EWMH property reads the
// metadata resolver needs.
package x11

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// None is the absent window handle.
const None xproto.Window = 0

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// Client wraps an X connection rooted at the default screen.
type Client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// NewClient connects to the X server and interns the atoms used by the
// property getters.
func NewClient() (*Client, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	c := &Client{
		conn:  conn,
		root:  root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		c.atoms[name] = reply.Atom
	}

	return c, nil
}

// Close closes the X connection. A blocked WaitForEvent returns after
// Close.
func (c *Client) Close() {
	c.conn.Close()
}

// WatchRoot subscribes to PropertyChange notifications on the root window,
// which fire whenever the window manager updates _NET_ACTIVE_WINDOW.
func (c *Client) WatchRoot() error {
	if err := xproto.ChangeWindowAttributesChecked(
		c.conn,
		c.root,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange},
	).Check(); err != nil {
		return fmt.Errorf("failed to set root event mask: %w", err)
	}
	return nil
}

// ActiveWindow returns the current foreground window from the root's
// _NET_ACTIVE_WINDOW property, or None when no window is focused.
func (c *Client) ActiveWindow() (xproto.Window, error) {
	data, err := c.property(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil {
		return None, err
	}
	if len(data) < 4 {
		return None, nil
	}
	return xproto.Window(binary.LittleEndian.Uint32(data)), nil
}

// Subscribe directs PropertyChange notifications from win to this client.
// A None handle is a no-op.
func (c *Client) Subscribe(win xproto.Window) error {
	return c.setEventMask(win, xproto.EventMaskPropertyChange)
}

// Unsubscribe stops PropertyChange notifications from win. A None handle
// is a no-op.
func (c *Client) Unsubscribe(win xproto.Window) error {
	return c.setEventMask(win, xproto.EventMaskNoEvent)
}

func (c *Client) setEventMask(win xproto.Window, mask uint32) error {
	if win == None {
		return nil
	}
	return xproto.ChangeWindowAttributesChecked(
		c.conn,
		win,
		xproto.CwEventMask,
		[]uint32{mask},
	).Check()
}

// WaitForEvent blocks until the next event or error arrives from the
// server. Both return values are nil once the connection is closed.
func (c *Client) WaitForEvent() (xgb.Event, xgb.Error) {
	return c.conn.WaitForEvent()
}

// PollForEvent returns a pending event without blocking, or nil, nil when
// the queue is empty.
func (c *Client) PollForEvent() (xgb.Event, xgb.Error) {
	return c.conn.PollForEvent()
}

// WindowName returns the window's display name from _NET_WM_NAME, falling
// back to WM_NAME. An unnamed window yields the empty string.
func (c *Client) WindowName(win xproto.Window) (string, error) {
	data, err := c.property(win, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 256)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		data, err = c.property(win, c.atoms["WM_NAME"], xproto.AtomString, 256)
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(string(data), "\x00"), nil
}

// WindowPID returns the owning process id from _NET_WM_PID. A missing or
// malformed property yields zero, not an error.
func (c *Client) WindowPID(win xproto.Window) (uint32, error) {
	data, err := c.property(win, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil {
		return 0, err
	}
	if len(data) < 4 {
		return 0, nil
	}
	return binary.LittleEndian.Uint32(data), nil
}

// WindowClass returns the WM_CLASS identifiers: a NUL-delimited blob split
// into its non-empty segments, order preserved.
func (c *Client) WindowClass(win xproto.Window) ([]string, error) {
	data, err := c.property(win, c.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil {
		return nil, err
	}

	classes := make([]string, 0, 2)
	for _, part := range strings.Split(string(data), "\x00") {
		if part == "" {
			continue
		}
		classes = append(classes, part)
	}
	return classes, nil
}

// WindowFullscreen reports whether _NET_WM_STATE contains the fullscreen
// marker.
func (c *Client) WindowFullscreen(win xproto.Window) (bool, error) {
	data, err := c.property(win, c.atoms["_NET_WM_STATE"], xproto.AtomAtom, 1024)
	if err != nil {
		return false, err
	}

	fullscreen := c.atoms["_NET_WM_STATE_FULLSCREEN"]
	for i := 0; i+4 <= len(data); i += 4 {
		if xproto.Atom(binary.LittleEndian.Uint32(data[i:i+4])) == fullscreen {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) property(win xproto.Window, atom, typ xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, win, atom, typ, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

// IsWindowGone reports whether err is the protocol error raised when a
// window handle became invalid between the focus check and a property
// fetch.
func IsWindowGone(err error) bool {
	if err == nil {
		return false
	}
	var we xproto.WindowError
	if errors.As(err, &we) {
		return true
	}
	var de xproto.DrawableError
	return errors.As(err, &de)
}
