// Package grpcjson is a gRPC codec that carries plain Go structs as JSON, so
// services and clients can talk without generated protobuf stubs.
package grpcjson

import (
	"bytes"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// Name is the codec's content-subtype on the wire.
const Name = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec implements encoding.Codec with encoding/json.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal keeps numbers inside untyped values as json.Number, the way the
// HTTP handlers decode records.
func (Codec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func (Codec) Name() string {
	return Name
}

// CallOption selects the JSON codec for a client call. Servers pick the
// registered codec from the content-subtype.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(Name)
}
