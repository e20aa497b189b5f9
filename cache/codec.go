package cache

import (
	"encoding/json"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns cached values into bytes and back.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

type jsonCodec struct{}

// NewJSONCodec returns the default textual codec.
func NewJSONCodec() Codec { return jsonCodec{} }

func (jsonCodec) Name() string                       { return CodecJSON }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type msgpackCodec struct{}

// NewMsgpackCodec returns a compact binary codec. Entries written with it are
// not readable by clients expecting JSON.
func NewMsgpackCodec() Codec { return msgpackCodec{} }

func (msgpackCodec) Name() string { return CodecMsgpack }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// CodecByName resolves a configured codec name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return NewJSONCodec(), nil
	case CodecMsgpack:
		return NewMsgpackCodec(), nil
	default:
		return nil, goerrors.New(fmt.Sprintf("unknown cache codec %q", name), goerrors.CategoryBadInput).
			WithTextCode("UNKNOWN_CODEC")
	}
}
