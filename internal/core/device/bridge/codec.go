package bridge

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeusync/paramsync/pkg/generic"
)

var buffers = generic.NewPool(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 512)) },
	func(b *bytes.Buffer) *bytes.Buffer {
		b.Reset()
		return b
	},
)

// send encodes v into a pooled buffer and writes it to conn. Conn
// implementations finish with the slice before Send returns.
func send(conn Conn, v any) error {
	buf := buffers.Get()
	defer buffers.Put(buf)

	if err := msgpack.NewEncoder(buf).Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode message")
	}
	return conn.Send(buf.Bytes())
}

func encodePayload(v any) (msgpack.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode payload")
	}
	return data, nil
}

func decodePayload(data msgpack.RawMessage, v any) error {
	if v == nil || len(data) == 0 {
		return nil
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "failed to decode payload")
	}
	return nil
}
