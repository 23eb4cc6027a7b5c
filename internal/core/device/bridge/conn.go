package bridge

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
)

// DefaultMaxMessageSize bounds a single frame on the wire. Image fills carry
// whole textures, so the bound is generous.
const DefaultMaxMessageSize = 64 << 20

var (
	ErrClosed          = errors.New("bridge: connection closed")
	ErrMessageTooLarge = errors.New("bridge: message too large")
)

// Conn carries whole messages between a client and a device. Send is safe
// for concurrent use; Receive is called from a single reader.
type Conn interface {
	Send(data []byte) error
	Receive() ([]byte, error)
	Close() error
}

var (
	_ Conn = (*WebsocketConn)(nil)
	_ Conn = (*StreamConn)(nil)
	_ Conn = (*quicConn)(nil)
)

// WebsocketConn sends every message as one binary websocket frame.
type WebsocketConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	closed       atomic.Bool

	// gorilla allows one concurrent writer
	writeMu sync.Mutex
}

func NewWebsocketConn(conn *websocket.Conn, writeTimeout time.Duration) *WebsocketConn {
	return &WebsocketConn{conn: conn, writeTimeout: writeTimeout}
}

func (c *WebsocketConn) Send(data []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return errors.Wrap(err, "failed to write message")
	}
	return nil
}

func (c *WebsocketConn) Receive() ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		if c.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, ErrClosed
		}
		return nil, errors.Wrap(err, "failed to read message")
	}
	if messageType != websocket.BinaryMessage {
		return nil, errors.Errorf("unsupported message type %d", messageType)
	}
	return data, nil
}

func (c *WebsocketConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()

	return c.conn.Close()
}

// StreamConn frames messages on a byte stream with a 4-byte big endian
// length prefix.
type StreamConn struct {
	rw      io.ReadWriteCloser
	maxSize int
	closed  atomic.Bool
	writeMu sync.Mutex
	header  [4]byte
}

func NewStreamConn(rw io.ReadWriteCloser, maxSize int) *StreamConn {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &StreamConn{rw: rw, maxSize: maxSize}
}

func (c *StreamConn) Send(data []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if len(data) > c.maxSize {
		return errors.Wrapf(ErrMessageTooLarge, "%d bytes", len(data))
	}

	frame := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.rw.Write(frame); err != nil {
		return errors.Wrap(err, "failed to write frame")
	}
	return nil
}

func (c *StreamConn) Receive() ([]byte, error) {
	if _, err := io.ReadFull(c.rw, c.header[:]); err != nil {
		return nil, c.readError(err, "failed to read frame header")
	}
	n := binary.BigEndian.Uint32(c.header[:])
	if int(n) > c.maxSize {
		return nil, errors.Wrapf(ErrMessageTooLarge, "%d bytes", n)
	}

	data := make([]byte, n)
	if _, err := io.ReadFull(c.rw, data); err != nil {
		return nil, c.readError(err, "failed to read frame")
	}
	return data, nil
}

func (c *StreamConn) readError(err error, msg string) error {
	if c.closed.Load() || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return ErrClosed
	}
	return errors.Wrap(err, msg)
}

func (c *StreamConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.rw.Close()
}

// quicConn owns the QUIC connection behind its single request stream.
type quicConn struct {
	*StreamConn
	conn *quic.Conn
}

func (c *quicConn) Close() error {
	err := c.StreamConn.Close()
	if cerr := c.conn.CloseWithError(0, "client closed"); err == nil {
		err = cerr
	}
	return err
}
