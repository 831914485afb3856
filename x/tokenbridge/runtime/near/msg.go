package near

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// Function call arguments. Byte strings are hex encoded and U128 amounts
// are decimal strings, as NEAR contracts take them.
type (
	bootPortalArgs struct {
		Core string `json:"core"`
	}

	vaaArgs struct {
		VAA string `json:"vaa"`
	}

	sendTransferNearArgs struct {
		Receiver string       `json:"receiver"`
		Chain    uint16       `json:"chain"`
		Fee      sdkmath.Uint `json:"fee"`
		Payload  string       `json:"payload"`
		// MessageFee is the part of the deposit paid to the core bridge.
		MessageFee sdkmath.Uint `json:"message_fee"`
	}

	ftOnTransferArgs struct {
		SenderID string       `json:"sender_id"`
		Amount   sdkmath.Uint `json:"amount"`
		Msg      string       `json:"msg"`
	}

	// transferMsg is the msg of an ft_transfer_call to the portal.
	transferMsg struct {
		Receiver string       `json:"receiver"`
		Chain    uint16       `json:"chain"`
		Fee      sdkmath.Uint `json:"fee"`
		Payload  string       `json:"payload"`
	}

	tokenArgs struct {
		Token string `json:"token"`
	}

	wrappedRegistryArgs struct {
		Chain   uint16 `json:"chain"`
		Address string `json:"address"`
	}

	chainArgs struct {
		Chain uint16 `json:"chain"`
	}

	externalIDArgs struct {
		ID string `json:"id"`
	}
)

func decodeArgs(args []byte, v interface{}) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	return json.Unmarshal(args, v)
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// decodeAddress reads a hex wire address, left padding shorter input.
func decodeAddress(s string) (vaa.Address, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return vaa.Address{}, err
	}
	if len(raw) > 32 {
		return vaa.Address{}, fmt.Errorf("address %s is longer than 32 bytes", s)
	}
	var addr vaa.Address
	copy(addr[32-len(raw):], raw)
	return addr, nil
}

func uintOrZero(u sdkmath.Uint) sdkmath.Uint {
	if u.IsNil() {
		return sdkmath.ZeroUint()
	}
	return u
}
