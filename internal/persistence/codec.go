package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/revisit/internal/review"
)

// Codec converts a state to and from its stored representation.
type Codec interface {
	Encode(state review.State) ([]byte, error)
	Decode(data []byte) (review.State, error)
}

// NewCodec returns the codec for a configured format name.
func NewCodec(format string) (Codec, error) {
	switch format {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
}

// JSONCodec stores {"categories": [...], "subjects": [...], "items": [...]}.
type JSONCodec struct{}

func (JSONCodec) Encode(state review.State) ([]byte, error) {
	data, err := json.Marshal(withEmptySlices(state))
	if err != nil {
		return nil, fmt.Errorf("json.Marshal() > %w", err)
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) (review.State, error) {
	var state review.State
	if err := json.Unmarshal(data, &state); err != nil {
		return review.State{}, fmt.Errorf("json.Unmarshal() > %w", err)
	}
	return withEmptySlices(state), nil
}

type YAMLCodec struct{}

func (YAMLCodec) Encode(state review.State) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(withEmptySlices(state)); err != nil {
		return nil, fmt.Errorf("encoder.Encode() > %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoder.Close() > %w", err)
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Decode(data []byte) (review.State, error) {
	var state review.State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return review.State{}, fmt.Errorf("yaml.Unmarshal() > %w", err)
	}
	return withEmptySlices(state), nil
}

func withEmptySlices(state review.State) review.State {
	if state.Categories == nil {
		state.Categories = []review.Category{}
	}
	if state.Subjects == nil {
		state.Subjects = []review.Subject{}
	}
	if state.Items == nil {
		state.Items = []review.Item{}
	}
	return state
}
