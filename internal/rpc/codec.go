// Package rpc defines the pointfeed.v1.FeedService gRPC contract: messages,
// the service descriptor, and a typed client. Messages travel as JSON through
// a codec registered under the "json" content subtype.
package rpc

import (
	"github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype used by FeedService calls.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
