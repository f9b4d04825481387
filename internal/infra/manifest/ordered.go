// Where: cli/internal/infra/manifest/ordered.go
// What: JSON object key order capture and ordered emission.
// Why: A trimmed manifest is committed back; its diff should only show removed entries.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("expected a JSON object")

// objectKeys returns the member names of a JSON object in document order.
func objectKeys(raw []byte) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}
	var keys []string
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", token)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := decoder.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// arrange orders keys by their position in order. Keys absent from order
// follow in the order produced by sortRest. Duplicates are dropped.
func arrange(order, keys []string, sortRest func([]string)) []string {
	present := make(map[string]bool, len(keys))
	for _, key := range keys {
		present[key] = true
	}
	out := make([]string, 0, len(keys))
	for _, key := range order {
		if present[key] {
			out = append(out, key)
			delete(present, key)
		}
	}
	var rest []string
	for _, key := range keys {
		if present[key] {
			rest = append(rest, key)
			delete(present, key)
		}
	}
	sortRest(rest)
	return append(out, rest...)
}

type member struct {
	key   string
	value any
}

// orderedObject marshals as a JSON object with members in slice order.
type orderedObject []member

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalPlain(m.key)
		if err != nil {
			return nil, err
		}
		value, err := marshalPlain(m.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalPlain is json.Marshal without HTML escaping.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
