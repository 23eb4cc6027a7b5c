package bridge

import (
	"bytes"
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

// Server exposes a device.Service to bridge clients. Device simulators and
// tests use it to stand in for the real device.
type Server struct {
	svc      device.Service
	alloc    texture.Allocator
	logger   log.Log
	upgrader websocket.Upgrader
}

type ServerOption func(*Server)

// WithAllocator sets the allocator backing the temporary textures handed to
// FillImageResource.
func WithAllocator(a texture.Allocator) ServerOption {
	return func(s *Server) {
		s.alloc = a
	}
}

func WithServerLogger(logger log.Log) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(svc device.Service, opts ...ServerOption) *Server {
	s := &Server{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.alloc == nil {
		s.alloc = texture.NewMemoryAllocator()
	}
	if s.logger == nil {
		s.logger = log.NewNop()
	}
	s.logger = s.logger.With(log.String("component", "device_server"))
	return s
}

// Serve answers requests on conn until the peer disconnects or ctx is done.
// Requests are handled concurrently so a pending await does not block
// other calls. Serve closes conn before returning.
func (s *Server) Serve(ctx context.Context, conn Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		_ = conn.Close()
		wg.Wait()
	}()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var session string
	for {
		data, err := conn.Receive()
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		var req Request
		if err := msgpack.Unmarshal(data, &req); err != nil {
			s.logger.Warn("dropping undecodable request", log.Error(err))
			continue
		}
		if req.Session != session {
			session = req.Session
			s.logger.Info("session started", log.String("session", session))
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := send(conn, s.handle(ctx, req)); err != nil {
				s.logger.Debug("failed to send response", log.Uint64("id", req.ID), log.Error(err))
			}
		}()
	}
}

// ServeHTTP upgrades the request to a websocket and serves it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	if err := s.Serve(r.Context(), NewWebsocketConn(ws, 0)); err != nil {
		s.logger.Warn("websocket session failed", log.Error(err))
	}
}

// ServeQUIC accepts connections on ln and serves the first stream each
// client opens.
func (s *Server) ServeQUIC(ctx context.Context, ln *quic.Listener) error {
	for {
		qc, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "failed to accept connection")
		}

		go func() {
			defer func() { _ = qc.CloseWithError(0, "") }()
			stream, err := qc.AcceptStream(ctx)
			if err != nil {
				s.logger.Debug("no request stream", log.Error(err))
				return
			}
			if err := s.Serve(ctx, NewStreamConn(stream, 0)); err != nil {
				s.logger.Warn("quic session failed", log.Error(err))
			}
		}()
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	out, err := s.dispatch(ctx, req)
	resp := Response{ID: req.ID, Status: device.StatusOf(err)}
	if err != nil {
		if resp.Status == device.StatusUnknown {
			resp.Message = err.Error()
		}
		return resp
	}

	payload, err := encodePayload(out)
	if err != nil {
		resp.Status = device.StatusUnknown
		resp.Message = err.Error()
		return resp
	}
	resp.Payload = payload
	return resp
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	invalid := device.StatusInvalidParameters.Err(string(req.Op))

	switch req.Op {
	case OpLoadSchema:
		sc, err := s.svc.LoadSchema(ctx)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := schema.Encode(&buf, sc); err != nil {
			return nil, err
		}
		return schemaPayload{JSON: buf.Bytes()}, nil

	case OpSaveSchema:
		var p schemaPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return nil, invalid
		}
		sc, err := schema.Decode(bytes.NewReader(p.JSON))
		if err != nil {
			return nil, invalid
		}
		return nil, s.svc.SaveSchema(ctx, sc)

	case OpGetOutputChannels:
		streams, err := s.svc.GetOutputChannels(ctx)
		if err != nil {
			return nil, err
		}
		return channelsPayload{Streams: streams}, nil

	case OpAwaitFrameData:
		var r awaitRequest
		if err := decodePayload(req.Payload, &r); err != nil {
			return nil, invalid
		}
		frame, err := s.svc.AwaitFrameData(ctx, r.Timeout)
		if err != nil {
			return nil, err
		}
		return awaitPayload{Frame: frame}, nil

	case OpGetFrameParameters:
		var r parametersRequest
		if err := decodePayload(req.Payload, &r); err != nil {
			return nil, invalid
		}
		numeric, text, err := s.svc.GetFrameNumericAndText(ctx, r.Hash, r.Numeric, r.Text)
		if err != nil {
			return nil, err
		}
		return parametersPayload{Numeric: numeric, Text: text}, nil

	case OpGetFrameImages:
		var r imagesRequest
		if err := decodePayload(req.Payload, &r); err != nil {
			return nil, invalid
		}
		images, err := s.svc.GetFrameImageDescriptors(ctx, r.Hash, r.Count)
		if err != nil {
			return nil, err
		}
		return imagesPayload{Images: images}, nil

	case OpFillImage:
		var r fillRequest
		if err := decodePayload(req.Payload, &r); err != nil {
			return nil, invalid
		}
		tex, err := s.alloc.Create(r.Descriptor())
		if err != nil {
			return nil, invalid
		}
		defer func() {
			if err := s.alloc.Destroy(tex); err != nil {
				s.logger.Warn("failed to destroy fill texture", log.Error(err))
			}
		}()
		if err := s.svc.FillImageResource(ctx, r.ImageID, tex); err != nil {
			return nil, err
		}
		return fillPayload{Pixels: bytes.Clone(tex.Data)}, nil
	}

	s.logger.Warn("unknown operation", log.String("op", string(req.Op)))
	return nil, invalid
}
