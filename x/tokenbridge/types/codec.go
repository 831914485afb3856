package types

import "encoding/json"

// RecordCodec encodes persisted records. Each runtime keeps state in its
// native serialization.
type RecordCodec interface {
	Name() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(bz []byte, v interface{}) error
}

// JSONCodec stores records as JSON, the way CosmWasm contracts do.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(bz []byte, v interface{}) error {
	return json.Unmarshal(bz, v)
}
