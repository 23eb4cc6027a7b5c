// Package bridge connects the engine to a remote device over a websocket or
// a QUIC stream. Requests and responses are msgpack encoded and multiplexed
// by request id.
package bridge

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

const DefaultRequestTimeout = 5 * time.Second

var _ device.Service = (*Client)(nil)

// Client implements device.Service on top of a Conn.
type Client struct {
	conn    Conn
	session string
	timeout time.Duration
	writer  texture.Writer
	logger  log.Log

	nextID  atomic.Uint64
	mu      sync.Mutex
	pending map[uint64]chan Response
	err     error
	done    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

type Option func(*Client)

// WithRequestTimeout bounds every call. AwaitFrameData waits for its own
// timeout on top of it.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithWriter uploads filled pixels into textures created by a GPU
// allocator. Without it pixels are copied into Texture.Data.
func WithWriter(w texture.Writer) Option {
	return func(c *Client) {
		c.writer = w
	}
}

func WithLogger(logger log.Log) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient starts the read loop on conn. The client owns conn from now on.
func NewClient(conn Conn, opts ...Option) *Client {
	c := &Client{
		conn:    conn,
		session: uuid.NewString(),
		timeout: DefaultRequestTimeout,
		pending: make(map[uint64]chan Response),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewNop()
	}
	c.logger = c.logger.With(log.String("component", "device_bridge"), log.String("session", c.session))

	go c.readLoop()
	return c
}

func (c *Client) Session() string { return c.session }

func (c *Client) readLoop() {
	for {
		data, err := c.conn.Receive()
		if err != nil {
			c.fail(err)
			return
		}

		var resp Response
		if err := msgpack.Unmarshal(data, &resp); err != nil {
			c.logger.Warn("dropping undecodable response", log.Error(err))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("response for unknown request", log.Uint64("id", resp.ID))
			continue
		}
		ch <- resp
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	c.err = err
	close(c.done)
	if !errors.Is(err, ErrClosed) {
		c.logger.Error("device connection lost", log.Error(err))
	}
}

func (c *Client) unavailable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return errors.Wrap(device.ErrUnavailable, c.err.Error())
}

// call sends op and waits for the matching response. Non-success statuses
// come back as device errors.
func (c *Client) call(ctx context.Context, op Op, in, out any, timeout time.Duration) error {
	payload, err := encodePayload(in)
	if err != nil {
		return err
	}

	id := c.nextID.Add(1)
	ch := make(chan Response, 1)
	c.mu.Lock()
	if cause := c.err; cause != nil {
		c.mu.Unlock()
		return errors.Wrap(device.ErrUnavailable, cause.Error())
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	req := Request{ID: id, Session: c.session, Op: op, Payload: payload}
	if err := send(c.conn, req); err != nil {
		return errors.Wrapf(device.ErrUnavailable, "%s: %v", op, err)
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case resp := <-ch:
		if err := resp.Status.Err(string(op)); err != nil {
			if resp.Message != "" {
				return errors.WithMessage(err, resp.Message)
			}
			return err
		}
		return decodePayload(resp.Payload, out)
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return c.unavailable()
	case <-expired:
		return errors.Wrapf(device.ErrTimeout, "%s after %s", op, timeout)
	}
}

func (c *Client) LoadSchema(ctx context.Context) (*schema.Schema, error) {
	var p schemaPayload
	if err := c.call(ctx, OpLoadSchema, nil, &p, c.timeout); err != nil {
		return nil, err
	}
	return schema.Decode(bytes.NewReader(p.JSON))
}

func (c *Client) SaveSchema(ctx context.Context, s *schema.Schema) error {
	var buf bytes.Buffer
	if err := schema.Encode(&buf, s); err != nil {
		return err
	}
	return c.call(ctx, OpSaveSchema, schemaPayload{JSON: buf.Bytes()}, nil, c.timeout)
}

func (c *Client) GetOutputChannels(ctx context.Context) ([]device.StreamDescription, error) {
	var p channelsPayload
	if err := c.call(ctx, OpGetOutputChannels, nil, &p, c.timeout); err != nil {
		return nil, err
	}
	return p.Streams, nil
}

func (c *Client) AwaitFrameData(ctx context.Context, timeout time.Duration) (device.FrameData, error) {
	var p awaitPayload
	if err := c.call(ctx, OpAwaitFrameData, awaitRequest{Timeout: timeout}, &p, timeout+c.timeout); err != nil {
		return device.FrameData{}, err
	}
	return p.Frame, nil
}

func (c *Client) GetFrameNumericAndText(ctx context.Context, hash uint64, numeric, text int) ([]float32, []string, error) {
	var p parametersPayload
	req := parametersRequest{Hash: hash, Numeric: numeric, Text: text}
	if err := c.call(ctx, OpGetFrameParameters, req, &p, c.timeout); err != nil {
		return nil, nil, err
	}
	if len(p.Numeric) != numeric || len(p.Text) != text {
		return nil, nil, device.StatusInvalidParameters.Err(string(OpGetFrameParameters))
	}
	return p.Numeric, p.Text, nil
}

func (c *Client) GetFrameImageDescriptors(ctx context.Context, hash uint64, n int) ([]device.ImageFrameData, error) {
	var p imagesPayload
	if err := c.call(ctx, OpGetFrameImages, imagesRequest{Hash: hash, Count: n}, &p, c.timeout); err != nil {
		return nil, err
	}
	if len(p.Images) != n {
		return nil, device.StatusInvalidParameters.Err(string(OpGetFrameImages))
	}
	return p.Images, nil
}

// FillImageResource fetches the pixels of imageID and uploads them into dst.
func (c *Client) FillImageResource(ctx context.Context, imageID uint64, dst *texture.Texture) error {
	d := dst.Descriptor
	req := fillRequest{ImageID: imageID, Width: d.Width, Height: d.Height, Format: d.Format, Linear: d.Linear}
	var p fillPayload
	if err := c.call(ctx, OpFillImage, req, &p, c.timeout); err != nil {
		return err
	}
	if len(p.Pixels) == 0 {
		return nil
	}
	if c.writer != nil {
		return c.writer.Write(dst, p.Pixels)
	}
	copy(dst.Data, p.Pixels)
	return nil
}

// Close closes the connection. Calls in flight fail with
// device.ErrUnavailable.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
		c.fail(ErrClosed)
	})
	return c.closeErr
}
