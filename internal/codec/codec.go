// Package codec encodes persisted records in the protobuf wire format.
//
// Records are hand-laid field-tagged messages: decoders skip fields they do
// not know and leave missing fields at their zero value, so old and new
// builds can read each other's bytes.
package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// visitor handles one field. It returns the bytes consumed and whether the
// field was recognised; unrecognised fields are skipped.
type visitor func(num protowire.Number, typ protowire.Type, b []byte) (int, bool)

func walk(b []byte, visit visitor) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("codec: tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		m, ok := visit(num, typ, b)
		if !ok {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return fmt.Errorf("codec: field %d: %w", num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, bool) {
	if typ != protowire.BytesType {
		return 0, false
	}
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n, true
}

func consumeBytes(typ protowire.Type, b []byte, dst *[]byte) (int, bool) {
	if typ != protowire.BytesType {
		return 0, false
	}
	v, n := protowire.ConsumeBytes(b)
	if n >= 0 {
		*dst = v
	}
	return n, true
}

func consumeInt(typ protowire.Type, b []byte, dst *int64) (int, bool) {
	if typ != protowire.VarintType {
		return 0, false
	}
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = protowire.DecodeZigZag(v)
	}
	return n, true
}
