package near

import (
	"reflect"

	"github.com/near/borsh-go"

	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// BorshCodec stores records in borsh, the serialization of NEAR contract state.
type BorshCodec struct{}

var _ types.RecordCodec = BorshCodec{}

func (BorshCodec) Name() string { return "borsh" }

// Marshal encodes the value v points to. borsh would encode the pointer
// itself as an Option.
func (BorshCodec) Marshal(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	return borsh.Serialize(rv.Interface())
}

func (BorshCodec) Unmarshal(bz []byte, v interface{}) error {
	return borsh.Deserialize(v, bz)
}
