package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

func TestTokenIDKeyRoundTrip(t *testing.T) {
	ids := []TokenID{
		BankToken{Denom: "uluna"},
		ContractToken{ContractAddress: "terra1xyz"},
		ForeignToken{ChainID: vaa.ChainIDEthereum, Address: addr(9)},
	}
	for _, id := range ids {
		parsed, err := ParseTokenIDKey(id.Key())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}

	_, err := ParseTokenIDKey([]byte{7, 1})
	assert.ErrorIs(t, err, ErrInvalidAsset)
}

func TestLocalExternalID(t *testing.T) {
	id := NewLocalExternalID(TokenKindBank, 258)
	assert.Equal(t, byte(1), id[0])
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, id[24:])
	assert.Equal(t, "0100000000000000000000000000000000000000000000000000000000000102", id.String())
}

func TestMarshalTokenIDJSON(t *testing.T) {
	b, err := MarshalTokenIDJSON(BankToken{Denom: "uluna"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bank":{"denom":"uluna"}}`, string(b))

	b, err = MarshalTokenIDJSON(ContractToken{ContractAddress: "terra1xyz"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"contract":{"native_c_w20":{"contract_address":"terra1xyz"}}}`, string(b))

	b, err = MarshalTokenIDJSON(ForeignToken{ChainID: 2, Address: addr(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"contract":{"foreign_token":{"chain_id":2,"foreign_address":"0000000000000000000000000000000000000000000000000000000000000001"}}}`, string(b))
}
