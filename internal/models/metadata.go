package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MetaKind tags the variant held by a MetaValue.
type MetaKind uint8

const (
	MetaString MetaKind = iota + 1
	MetaNumber
	MetaBool
)

// MetaValue is a string, number or boolean metadata value.
type MetaValue struct {
	kind MetaKind
	str  string
	num  float64
	b    bool
}

func StringValue(v string) MetaValue  { return MetaValue{kind: MetaString, str: v} }
func NumberValue(v float64) MetaValue { return MetaValue{kind: MetaNumber, num: v} }
func BoolValue(v bool) MetaValue      { return MetaValue{kind: MetaBool, b: v} }

func (v MetaValue) Kind() MetaKind { return v.kind }

func (v MetaValue) String() (string, bool) { return v.str, v.kind == MetaString }

func (v MetaValue) Number() (float64, bool) { return v.num, v.kind == MetaNumber }

func (v MetaValue) Bool() (bool, bool) { return v.b, v.kind == MetaBool }

// MarshalJSON writes the bare scalar.
func (v MetaValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case MetaString:
		return json.Marshal(v.str)
	case MetaNumber:
		return json.Marshal(v.num)
	case MetaBool:
		return json.Marshal(v.b)
	}
	return nil, fmt.Errorf("metadata value has no kind")
}

// UnmarshalJSON accepts a JSON string, number or boolean.
func (v *MetaValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty metadata value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case 'n', '{', '[':
		return fmt.Errorf("metadata values must be a string, number or boolean")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("metadata values must be a string, number or boolean")
		}
		*v = NumberValue(n)
	}
	return nil
}

// Metadata holds private item details such as serial numbers.
type Metadata map[string]MetaValue
