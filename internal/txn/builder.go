package txn

import (
	"fmt"

	"lendingScope/internal/sui"
	"lendingScope/internal/units"
)

// ModuleName is the Move module exposing the pool entry points.
const ModuleName = "defi"

// Operation is a user-initiated pool action.
type Operation string

const (
	OpDeposit Operation = "deposit"
	OpBorrow  Operation = "borrow"
	OpRepay   Operation = "repay"
)

// ParseOperation maps a CLI or UI name to an Operation.
func ParseOperation(name string) (Operation, error) {
	switch op := Operation(name); op {
	case OpDeposit, OpBorrow, OpRepay:
		return op, nil
	default:
		return "", fmt.Errorf("unsupported operation: %s", name)
	}
}

// TransactionParams describes one action. Amount is in display units.
type TransactionParams struct {
	Amount    string
	PackageID string
	PoolID    string
}

// Target returns "<package>::defi::<function>" with the package id in its
// canonical 64-digit form, so "0x2" renders as "0x00...02".
func Target(pkg sui.Address, function string) string {
	return fmt.Sprintf("%s::%s::%s", pkg.Hex(), ModuleName, function)
}

// Build dispatches to the builder for op.
func Build(op Operation, params TransactionParams) (*Request, error) {
	switch op {
	case OpDeposit:
		return BuildDeposit(params)
	case OpBorrow:
		return BuildBorrow(params)
	case OpRepay:
		return BuildRepay(params)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
}

// BuildDeposit splits amount off the gas coin and deposits it into the pool.
func BuildDeposit(params TransactionParams) (*Request, error) {
	return buildCoinCall(params, string(OpDeposit))
}

// BuildRepay splits amount off the gas coin and repays it.
func BuildRepay(params TransactionParams) (*Request, error) {
	return buildCoinCall(params, string(OpRepay))
}

// BuildBorrow calls borrow(pool, amount) with the amount in base units.
func BuildBorrow(params TransactionParams) (*Request, error) {
	pkg, pool, amount, err := parseParams(params)
	if err != nil {
		return nil, err
	}

	req := NewRequest()
	req.MoveCall(Target(pkg, string(OpBorrow)), req.SharedObject(pool, true), req.PureU64(amount))
	return req, nil
}

// BuildGetDebt builds the read-only get_debt(pool, user) call.
func BuildGetDebt(packageID, poolID, user string) (*Request, error) {
	pkg, err := sui.ParseAddress(packageID)
	if err != nil {
		return nil, fmt.Errorf("package id: %w", err)
	}
	pool, err := sui.ParseAddress(poolID)
	if err != nil {
		return nil, fmt.Errorf("pool id: %w", err)
	}
	owner, err := sui.ParseAddress(user)
	if err != nil {
		return nil, fmt.Errorf("user address: %w", err)
	}

	req := NewRequest()
	req.MoveCall(Target(pkg, "get_debt"), req.SharedObject(pool, false), req.PureAddress(owner))
	return req, nil
}

func buildCoinCall(params TransactionParams, function string) (*Request, error) {
	pkg, pool, amount, err := parseParams(params)
	if err != nil {
		return nil, err
	}

	req := NewRequest()
	coin := req.SplitCoins(req.GasCoin(), amount)
	req.MoveCall(Target(pkg, function), req.SharedObject(pool, true), coin)
	return req, nil
}

func parseParams(params TransactionParams) (sui.Address, sui.Address, uint64, error) {
	pkg, err := sui.ParseAddress(params.PackageID)
	if err != nil {
		return sui.Address{}, sui.Address{}, 0, fmt.Errorf("package id: %w", err)
	}
	pool, err := sui.ParseAddress(params.PoolID)
	if err != nil {
		return sui.Address{}, sui.Address{}, 0, fmt.Errorf("pool id: %w", err)
	}
	amount, err := units.ToBaseUnits(params.Amount)
	if err != nil {
		return sui.Address{}, sui.Address{}, 0, err
	}
	return pkg, pool, amount, nil
}
