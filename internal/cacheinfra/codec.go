package cacheinfra

import "github.com/vmihailenco/msgpack/v5"

// Codec encodes and decodes cached values for byte-oriented backends.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Msgpack serializes values with vmihailenco/msgpack/v5. The zero value is
// ready to use. Field names follow struct tags; the domain entities carry no
// msgpack tags, so the default (exported field names) applies consistently
// on both encode and decode.
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
