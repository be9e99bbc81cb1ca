package adapter

import (
	"encoding/json"
)

// JSON is the serialization seam. Tests substitute a mock to inject marshal
// and unmarshal failures into the registry loader and the event publisher.
//
//go:generate mockgen -source=json.go -destination=../mocks/json.go -package=mocks -mock_names=JSON=MockJSON
type JSON interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// StdJSON backs the JSON seam with encoding/json
type StdJSON struct{}

// NewJSON returns the encoding/json-backed implementation
func NewJSON() JSON {
	return &StdJSON{}
}

func (StdJSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (StdJSON) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
