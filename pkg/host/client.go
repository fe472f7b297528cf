// Package host implements the host side of the protocol: a synchronous
// client with one request outstanding at a time.
package host

import (
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/serialproto/pkg/link"
	"github.com/robotalks/serialproto/pkg/msgs"
	"github.com/robotalks/serialproto/pkg/wire"
)

// DefaultTimeout is the default time to wait for a response.
const DefaultTimeout = time.Second

// Client exchanges commands and responses over a Port.
type Client struct {
	Port    link.Port
	Timeout time.Duration

	lock sync.Mutex
}

// NewClient creates a Client using DefaultTimeout.
func NewClient(port link.Port) *Client {
	return &Client{Port: port, Timeout: DefaultTimeout}
}

// Send writes the frame of cmd.
func (c *Client) Send(cmd msgs.Command) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.send(cmd)
}

// SendRaw writes bytes as they are, for diagnostics.
func (c *Client) SendRaw(b []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.write(b)
}

// WaitForResponse reads one response frame. A zero timeout selects
// c.Timeout.
func (c *Client) WaitForResponse(timeout time.Duration) (msgs.Response, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.waitForResponse(timeout)
}

// Exchange sends cmd and waits for its response.
func (c *Client) Exchange(cmd msgs.Command, timeout time.Duration) (msgs.Response, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.send(cmd); err != nil {
		return nil, err
	}
	return c.waitForResponse(timeout)
}

func (c *Client) send(cmd msgs.Command) error {
	var out wire.CommandFrame
	frame, err := wire.EncodeCommand(cmd, &out)
	if err != nil {
		return err
	}
	glog.V(2).Infof("send %v", cmd)
	return c.write(frame)
}

func (c *Client) write(b []byte) error {
	if glog.V(3) {
		glog.Infof("TX % x", b)
	}
	if err := link.WriteFull(c.Port, b); err != nil {
		return &LinkError{Op: "write", Err: err}
	}
	return nil
}

func (c *Client) waitForResponse(timeout time.Duration) (msgs.Response, error) {
	if timeout <= 0 {
		timeout = c.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)

	var buf wire.ResponseFrame
	var n int
	one := make([]byte, 1)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrTimeout
		}
		if err := c.Port.SetReadTimeout(remaining); err != nil {
			return nil, &LinkError{Op: "set timeout", Err: err}
		}
		count, err := c.Port.Read(one)
		if err != nil && !os.IsTimeout(err) {
			return nil, &LinkError{Op: "read", Err: err}
		}
		if count == 0 {
			continue
		}
		if n >= len(buf) {
			return nil, &ABIError{Frame: append([]byte(nil), buf[:n]...), Err: ErrFrameTooLong}
		}
		buf[n] = one[0]
		n++
		if one[0] == wire.Terminator {
			break
		}
	}
	if glog.V(3) {
		glog.Infof("RX % x", buf[:n])
	}
	frame := append([]byte(nil), buf[:n]...)
	resp, err := wire.DecodeResponse(buf[:n])
	if err != nil {
		return nil, &ABIError{Frame: frame, Err: err}
	}
	glog.V(2).Infof("recv %v", resp)
	return resp, nil
}
