package txn

import (
	"fmt"
	"strings"

	"lendingScope/internal/bcs"
	"lendingScope/internal/sui"
)

type ArgumentKind string

const (
	ArgGasCoin      ArgumentKind = "GasCoin"
	ArgInput        ArgumentKind = "Input"
	ArgResult       ArgumentKind = "Result"
	ArgNestedResult ArgumentKind = "NestedResult"
)

// Argument references the gas coin, an input, or the output of an earlier
// command.
type Argument struct {
	Kind        ArgumentKind `json:"kind"`
	Index       uint16       `json:"index,omitempty"`
	ResultIndex uint16       `json:"resultIndex,omitempty"`
}

type InputKind string

const (
	InputPure         InputKind = "Pure"
	InputSharedObject InputKind = "SharedObject"
)

// Input is a pure BCS value or a shared object reference. Shared objects
// need InitialSharedVersion before the request can be serialized.
type Input struct {
	Kind                 InputKind `json:"kind"`
	Value                string    `json:"value,omitempty"`
	Pure                 []byte    `json:"pure,omitempty"`
	ObjectID             string    `json:"objectId,omitempty"`
	InitialSharedVersion uint64    `json:"initialSharedVersion,omitempty"`
	Mutable              bool      `json:"mutable,omitempty"`
}

type CommandKind string

const (
	CommandSplitCoins CommandKind = "SplitCoins"
	CommandMoveCall   CommandKind = "MoveCall"
)

type Command struct {
	Kind      CommandKind `json:"kind"`
	Target    string      `json:"target,omitempty"`
	Coin      *Argument   `json:"coin,omitempty"`
	Amounts   []Argument  `json:"amounts,omitempty"`
	Arguments []Argument  `json:"arguments,omitempty"`
}

// Request is an unsigned programmable transaction. It is built once and
// handed to a signer; nothing in this package mutates it afterwards.
type Request struct {
	Inputs   []Input   `json:"inputs"`
	Commands []Command `json:"commands"`
}

func NewRequest() *Request {
	return &Request{}
}

// GasCoin refers to the coin paying for gas.
func (r *Request) GasCoin() Argument {
	return Argument{Kind: ArgGasCoin}
}

// SharedObject adds a shared object input, reusing an existing one for the
// same id. A mutable use upgrades an earlier immutable one.
func (r *Request) SharedObject(id sui.Address, mutable bool) Argument {
	hex := id.Hex()
	for i := range r.Inputs {
		if r.Inputs[i].Kind == InputSharedObject && r.Inputs[i].ObjectID == hex {
			r.Inputs[i].Mutable = r.Inputs[i].Mutable || mutable
			return Argument{Kind: ArgInput, Index: uint16(i)}
		}
	}
	r.Inputs = append(r.Inputs, Input{Kind: InputSharedObject, ObjectID: hex, Mutable: mutable})
	return Argument{Kind: ArgInput, Index: uint16(len(r.Inputs) - 1)}
}

// PureU64 adds a u64 input.
func (r *Request) PureU64(v uint64) Argument {
	r.Inputs = append(r.Inputs, Input{Kind: InputPure, Value: fmt.Sprintf("%d", v), Pure: bcs.U64(v)})
	return Argument{Kind: ArgInput, Index: uint16(len(r.Inputs) - 1)}
}

// PureAddress adds an address input.
func (r *Request) PureAddress(addr sui.Address) Argument {
	raw := make([]byte, len(addr))
	copy(raw, addr[:])
	r.Inputs = append(r.Inputs, Input{Kind: InputPure, Value: addr.Hex(), Pure: raw})
	return Argument{Kind: ArgInput, Index: uint16(len(r.Inputs) - 1)}
}

// SplitCoins splits one new coin per amount off coin and returns the first.
func (r *Request) SplitCoins(coin Argument, amounts ...uint64) Argument {
	args := make([]Argument, 0, len(amounts))
	for _, amount := range amounts {
		args = append(args, r.PureU64(amount))
	}
	r.Commands = append(r.Commands, Command{Kind: CommandSplitCoins, Coin: &coin, Amounts: args})
	return Argument{Kind: ArgNestedResult, Index: uint16(len(r.Commands) - 1), ResultIndex: 0}
}

// MoveCall appends a call to target ("<package>::<module>::<function>").
func (r *Request) MoveCall(target string, args ...Argument) Argument {
	r.Commands = append(r.Commands, Command{Kind: CommandMoveCall, Target: target, Arguments: args})
	return Argument{Kind: ArgResult, Index: uint16(len(r.Commands) - 1)}
}

// ResolveShared records the initial shared version of an object input.
// It reports whether the request references the object.
func (r *Request) ResolveShared(id sui.Address, initialSharedVersion uint64) bool {
	hex := id.Hex()
	found := false
	for i := range r.Inputs {
		if r.Inputs[i].Kind == InputSharedObject && r.Inputs[i].ObjectID == hex {
			r.Inputs[i].InitialSharedVersion = initialSharedVersion
			found = true
		}
	}
	return found
}

// MoveCallTargets lists the targets of every MoveCall command in order.
func (r *Request) MoveCallTargets() []string {
	var targets []string
	for _, cmd := range r.Commands {
		if cmd.Kind == CommandMoveCall {
			targets = append(targets, cmd.Target)
		}
	}
	return targets
}

// ParseTarget splits "<package>::<module>::<function>".
func ParseTarget(target string) (sui.Address, string, string, error) {
	parts := strings.Split(target, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return sui.Address{}, "", "", fmt.Errorf("invalid move call target: %s", target)
	}
	pkg, err := sui.ParseAddress(parts[0])
	if err != nil {
		return sui.Address{}, "", "", fmt.Errorf("invalid move call target %s: %w", target, err)
	}
	return pkg, parts[1], parts[2], nil
}
