package txn

import (
	"fmt"

	gobcs "github.com/fardream/go-bcs/bcs"

	"lendingScope/internal/sui"
)

// Wire types for the programmable TransactionKind. Enums carry one non-nil
// pointer field; the field position is the variant index.

type transactionKind struct {
	ProgrammableTransaction *programmableTransaction
}

func (transactionKind) IsBcsEnum() {}

type programmableTransaction struct {
	Inputs   []callArg
	Commands []command
}

type callArg struct {
	Pure   *[]byte
	Object *objectArg
}

func (callArg) IsBcsEnum() {}

type objectRef struct {
	ObjectID sui.Address
	Version  uint64
	Digest   []byte
}

type objectArg struct {
	ImmOrOwnedObject *objectRef
	SharedObject     *sharedObjectArg
}

func (objectArg) IsBcsEnum() {}

type sharedObjectArg struct {
	ObjectID             sui.Address
	InitialSharedVersion uint64
	Mutable              bool
}

type command struct {
	MoveCall        *moveCall
	TransferObjects *transferObjects
	SplitCoins      *splitCoins
}

func (command) IsBcsEnum() {}

type moveCall struct {
	Package       sui.Address
	Module        string
	Function      string
	TypeArguments []typeTag
	Arguments     []argument
}

type transferObjects struct {
	Objects []argument
	Address argument
}

type splitCoins struct {
	Coin    argument
	Amounts []argument
}

// typeTag lists the primitive variants only; no call here is generic.
type typeTag struct {
	Bool    *struct{}
	U8      *struct{}
	U64     *struct{}
	U128    *struct{}
	Address *struct{}
}

func (typeTag) IsBcsEnum() {}

type argument struct {
	GasCoin      *struct{}
	Input        *uint16
	Result       *uint16
	NestedResult *nestedResult
}

func (argument) IsBcsEnum() {}

type nestedResult struct {
	Command uint16
	Result  uint16
}

// KindBytes serializes the request as a BCS TransactionKind, the payload of
// sui_devInspectTransactionBlock and the body a wallet wraps into
// TransactionData before signing.
func (r *Request) KindBytes() ([]byte, error) {
	pt := &programmableTransaction{
		Inputs:   make([]callArg, 0, len(r.Inputs)),
		Commands: make([]command, 0, len(r.Commands)),
	}
	for i, input := range r.Inputs {
		arg, err := wireInput(input)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		pt.Inputs = append(pt.Inputs, arg)
	}
	for i, cmd := range r.Commands {
		c, err := wireCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		pt.Commands = append(pt.Commands, c)
	}

	out, err := gobcs.Marshal(transactionKind{ProgrammableTransaction: pt})
	if err != nil {
		return nil, fmt.Errorf("marshal transaction kind: %w", err)
	}
	return out, nil
}

func wireInput(input Input) (callArg, error) {
	switch input.Kind {
	case InputPure:
		pure := input.Pure
		if pure == nil {
			pure = []byte{}
		}
		return callArg{Pure: &pure}, nil
	case InputSharedObject:
		if input.InitialSharedVersion == 0 {
			return callArg{}, fmt.Errorf("shared object %s has no initial shared version", input.ObjectID)
		}
		id, err := sui.ParseAddress(input.ObjectID)
		if err != nil {
			return callArg{}, err
		}
		return callArg{Object: &objectArg{SharedObject: &sharedObjectArg{
			ObjectID:             id,
			InitialSharedVersion: input.InitialSharedVersion,
			Mutable:              input.Mutable,
		}}}, nil
	default:
		return callArg{}, fmt.Errorf("unsupported input kind: %s", input.Kind)
	}
}

func wireCommand(cmd Command) (command, error) {
	switch cmd.Kind {
	case CommandMoveCall:
		pkg, module, function, err := ParseTarget(cmd.Target)
		if err != nil {
			return command{}, err
		}
		args, err := wireArguments(cmd.Arguments)
		if err != nil {
			return command{}, err
		}
		return command{MoveCall: &moveCall{
			Package:       pkg,
			Module:        module,
			Function:      function,
			TypeArguments: []typeTag{},
			Arguments:     args,
		}}, nil
	case CommandSplitCoins:
		if cmd.Coin == nil {
			return command{}, fmt.Errorf("split coins without source coin")
		}
		coin, err := wireArgument(*cmd.Coin)
		if err != nil {
			return command{}, err
		}
		amounts, err := wireArguments(cmd.Amounts)
		if err != nil {
			return command{}, err
		}
		return command{SplitCoins: &splitCoins{Coin: coin, Amounts: amounts}}, nil
	default:
		return command{}, fmt.Errorf("unsupported command kind: %s", cmd.Kind)
	}
}

func wireArguments(args []Argument) ([]argument, error) {
	out := make([]argument, 0, len(args))
	for _, a := range args {
		w, err := wireArgument(a)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func wireArgument(arg Argument) (argument, error) {
	idx := arg.Index
	switch arg.Kind {
	case ArgGasCoin:
		return argument{GasCoin: &struct{}{}}, nil
	case ArgInput:
		return argument{Input: &idx}, nil
	case ArgResult:
		return argument{Result: &idx}, nil
	case ArgNestedResult:
		return argument{NestedResult: &nestedResult{Command: arg.Index, Result: arg.ResultIndex}}, nil
	default:
		return argument{}, fmt.Errorf("unsupported argument kind: %s", arg.Kind)
	}
}
