package bridge

import (
	"context"
	"crypto/tls"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
)

// ALPN is the application protocol negotiated on QUIC connections.
const ALPN = "paramsync-device"

var ErrUnsupportedScheme = errors.New("bridge: unsupported address scheme")

// Config selects the device endpoint. Address uses the ws, wss or quic
// scheme.
type Config struct {
	Address        string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	InsecureTLS    bool
	MaxMessageSize int
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: DefaultRequestTimeout,
		MaxMessageSize: DefaultMaxMessageSize,
	}
}

// Dial connects to the device at cfg.Address and starts a Client on the
// connection.
func Dial(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.Address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid device address")
	}
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	var conn Conn
	switch u.Scheme {
	case "ws", "wss":
		conn, err = dialWebsocket(ctx, u, cfg)
	case "quic":
		conn, err = dialQUIC(ctx, u, cfg)
	default:
		return nil, errors.Wrapf(ErrUnsupportedScheme, "%q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestTimeout > 0 {
		opts = append([]Option{WithRequestTimeout(cfg.RequestTimeout)}, opts...)
	}
	return NewClient(conn, opts...), nil
}

func dialWebsocket(ctx context.Context, u *url.URL, cfg Config) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.ConnectTimeout,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: cfg.InsecureTLS},
	}
	ws, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", u.Redacted())
	}
	if cfg.MaxMessageSize > 0 {
		ws.SetReadLimit(int64(cfg.MaxMessageSize))
	}
	return NewWebsocketConn(ws, cfg.RequestTimeout), nil
}

func dialQUIC(ctx context.Context, u *url.URL, cfg Config) (Conn, error) {
	tlsConf := &tls.Config{
		InsecureSkipVerify: cfg.InsecureTLS,
		NextProtos:         []string{ALPN},
		MinVersion:         tls.VersionTLS13,
	}
	qc, err := quic.DialAddr(ctx, u.Host, tlsConf, &quic.Config{KeepAlivePeriod: 15 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", u.Host)
	}
	stream, err := qc.OpenStreamSync(ctx)
	if err != nil {
		_ = qc.CloseWithError(0, "open stream failed")
		return nil, errors.Wrap(err, "failed to open request stream")
	}
	return &quicConn{StreamConn: NewStreamConn(stream, cfg.MaxMessageSize), conn: qc}, nil
}
