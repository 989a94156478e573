// Package value converts between Go values and the ledger's binary Ion
// document encoding.
package value

import (
	"github.com/amazon-ion/ion-go/ion"
)

// Raw is a parameter that is already binary Ion encoded; it is sent on the
// wire as-is.
type Raw []byte

// Marshal encodes one statement parameter to binary Ion.
func Marshal(v interface{}) ([]byte, error) {
	switch vv := v.(type) {
	case Raw:
		return vv, nil
	case []byte:
		return vv, nil
	default:
		return ion.MarshalBinary(v)
	}
}

// MarshalAll encodes all statement parameters to binary Ion.
func MarshalAll(vs ...interface{}) ([][]byte, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([][]byte, 0, len(vs))
	for _, v := range vs {
		b, err := Marshal(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	return out, nil
}

// Unmarshal decodes one binary Ion document into v.
func Unmarshal(data []byte, v interface{}) error {
	return ion.Unmarshal(data, v)
}

// UnmarshalString decodes a binary Ion document holding a single string.
func UnmarshalString(data []byte) (s string, err error) {
	if err = ion.Unmarshal(data, &s); err != nil {
		return "", err
	}

	return s, nil
}
