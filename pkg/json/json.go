// Package json provides high-performance JSON serialization with object pooling
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

// codecPool manages pooled JSON encoders and decoders
type codecPool struct {
	encoderPool sync.Pool
	decoderPool sync.Pool
}

var globalPool = &codecPool{
	encoderPool: sync.Pool{
		New: func() interface{} {
			return &pooledEncoder{
				buffer: bytes.NewBuffer(make([]byte, 0, 4096)),
			}
		},
	},
	decoderPool: sync.Pool{
		New: func() interface{} {
			return &pooledDecoder{}
		},
	},
}

// pooledEncoder wraps a JSON encoder with a reusable buffer
type pooledEncoder struct {
	encoder *gojson.Encoder
	buffer  *bytes.Buffer
}

// pooledDecoder wraps a JSON decoder
type pooledDecoder struct {
	decoder *gojson.Decoder
}

// GetEncoder gets a pooled JSON encoder writing to w
func GetEncoder(w io.Writer) *gojson.Encoder {
	pe := globalPool.encoderPool.Get().(*pooledEncoder)
	pe.buffer.Reset()

	pe.encoder = gojson.NewEncoder(w)
	pe.encoder.SetEscapeHTML(false)

	return pe.encoder
}

// PutEncoder returns an encoder to the pool
func PutEncoder(enc *gojson.Encoder) {
	pe := &pooledEncoder{
		encoder: enc,
		buffer:  bytes.NewBuffer(make([]byte, 0, 4096)),
	}
	globalPool.encoderPool.Put(pe)
}

// GetDecoder gets a pooled JSON decoder reading from r.
// Decoders are configured with UseNumber so numeric coercion stays explicit.
func GetDecoder(r io.Reader) *gojson.Decoder {
	pd := globalPool.decoderPool.Get().(*pooledDecoder)

	pd.decoder = gojson.NewDecoder(r)
	pd.decoder.UseNumber()

	return pd.decoder
}

// PutDecoder returns a decoder to the pool
func PutDecoder(dec *gojson.Decoder) {
	pd := &pooledDecoder{
		decoder: dec,
	}
	globalPool.decoderPool.Put(pd)
}

// Marshal is a high-performance drop-in replacement for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a high-performance drop-in replacement for json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a high-performance replacement for json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}
