package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the set as a JSON object in insertion order.
func (s *Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	var err error
	i := 0
	s.Range(func(key string, value any) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++

		var k, v []byte
		if k, err = json.Marshal(key); err != nil {
			return false
		}
		if v, err = json.Marshal(value); err != nil {
			err = fmt.Errorf("failed to encode metadata key '%s': %w", key, err)
			return false
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return true
	})
	if err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the order of its top level keys.
func (s *Set) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	s.keys = nil
	s.values = make(map[string]any)
	if tok == nil {
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata must be a JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected metadata key %v", tok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode metadata key '%s': %w", key, err)
		}
		s.Set(key, value)
	}

	_, err = dec.Token()
	return err
}
