package rpcpb

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is the content-subtype peer clients must request
// (grpc.CallContentSubtype(codecName)) to use gobCodec instead of grpc's
// default protobuf codec. Aggregation's wire messages are plain structs,
// not protoc-generated types, so a gob codec registered under the
// "ecagg" subtype is the wire encoding for both peer RPCs.
const codecName = "ecagg"

type gobCodec struct{}

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("rpcpb: gob marshal failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("rpcpb: gob unmarshal failed: %w", err)
	}
	return nil
}

func (gobCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(gobCodec{})
}
