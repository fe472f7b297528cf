// Package websocket carries the link byte stream over binary websocket
// frames, connecting the host to an emulated device.
package websocket

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// DefaultPath is the HTTP path the device serves the link on.
const DefaultPath = "/link"

// Conn adapts websocket.Conn to link.Port.
type Conn struct {
	*websocket.Conn
	readTimeout time.Duration
}

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *Conn {
	conn.PayloadType = websocket.BinaryFrame
	return &Conn{Conn: conn}
}

// Dial connects to a device serving the link at rawURL, e.g. ws://host:8080/link.
func Dial(rawURL string) (*Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	origin := &url.URL{Scheme: "http", Host: u.Host}
	if u.Scheme == "wss" {
		origin.Scheme = "https"
	}
	conn, err := websocket.Dial(u.String(), "", origin.String())
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// SetReadTimeout implements link.Port.
func (c *Conn) SetReadTimeout(d time.Duration) error {
	c.readTimeout = d
	return nil
}

// Read implements io.Reader. A read timing out returns 0, nil.
func (c *Conn) Read(p []byte) (int, error) {
	var deadline time.Time
	if c.readTimeout > 0 {
		deadline = time.Now().Add(c.readTimeout)
	}
	if err := c.Conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}
	n, err := c.Conn.Read(p)
	var netErr net.Error
	if err != nil && errors.As(err, &netErr) && netErr.Timeout() {
		return n, nil
	}
	return n, err
}

// SessionFunc serves one connected peer until it returns.
type SessionFunc func(ctx context.Context, conn *Conn) error

// Server accepts link connections, one session at a time.
// Connections arriving while a session is active are refused.
type Server struct {
	Addr    string
	Path    string
	Session SessionFunc

	busy sync.Mutex
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(func(ws *websocket.Conn) {
		s.serve(ctx, ws)
	}))
	server := &http.Server{Addr: s.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("link listening on %s%s", s.Addr, path)
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		server.Close()
		<-errCh
		return ctx.Err()
	}
}

func (s *Server) serve(ctx context.Context, ws *websocket.Conn) {
	peer := ws.Request().RemoteAddr
	if !s.busy.TryLock() {
		glog.Warningf("link %s refused: session active", peer)
		return
	}
	defer s.busy.Unlock()
	glog.Infof("link %s connected", peer)
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessionCtx.Done()
		ws.Close()
	}()
	err := s.Session(sessionCtx, New(ws))
	glog.Infof("link %s disconnected: %v", peer, err)
}
