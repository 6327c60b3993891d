package metadata

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// ValuesEqual reports whether two metadata values are identical. Values are
// compared by their canonical JSON encoding, so numbers that went through a
// store round trip (int 1 vs float64 1) still compare equal.
func ValuesEqual(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ja, jb)
}

// EncodeValue returns the canonical JSON form of a value as stored by the
// SQL document stores.
func EncodeValue(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func DecodeValue(data string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, err
	}
	return value, nil
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for key, item := range v {
			m[key] = cloneValue(item)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, item := range v {
			l[i] = cloneValue(item)
		}
		return l
	case *Set:
		return v.Clone()
	default:
		return value
	}
}
