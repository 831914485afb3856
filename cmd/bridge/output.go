package bridge

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramboll-max/wormhole/pkg/devnet"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

type instructionView struct {
	Type string            `json:"type"`
	Msg  types.Instruction `json:"msg"`
	// Payload is the hex payload of a posted message.
	Payload string `json:"payload,omitempty"`
}

type eventView struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

type resultView struct {
	Instructions []instructionView `json:"instructions"`
	Events       []eventView       `json:"events"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Error        string            `json:"error,omitempty"`
}

func attributeMap(attrs []types.Attribute) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Key] = a.Value
	}
	return out
}

func newResultView(r *devnet.Result) resultView {
	v := resultView{Instructions: []instructionView{}, Events: []eventView{}}
	if r == nil {
		return v
	}
	for _, ins := range r.Instructions {
		iv := instructionView{Type: strings.TrimPrefix(fmt.Sprintf("%T", ins), "types."), Msg: ins}
		if post, ok := ins.(types.PostMessageMsg); ok {
			iv.Payload = hex.EncodeToString(post.Payload)
		}
		v.Instructions = append(v.Instructions, iv)
	}
	for _, e := range r.Events {
		v.Events = append(v.Events, eventView{Type: e.Type, Attributes: attributeMap(e.Attributes)})
	}
	if len(r.Attributes) > 0 {
		v.Attributes = attributeMap(r.Attributes)
	}
	return v
}

// execute runs op on the host as the --sender account and prints what it did.
// An aborted continuation is reported, not returned: its state is committed.
func (s *session) execute(cmd *cobra.Command, funds types.Coins, op devnet.Operation) error {
	res, err := s.host.Execute(*sender, funds, op)
	var abort *types.AbortError
	if err != nil && !errors.As(err, &abort) {
		return err
	}
	v := newResultView(res)
	if abort != nil {
		v.Error = abort.Error()
	}
	return printJSON(cmd, v)
}
