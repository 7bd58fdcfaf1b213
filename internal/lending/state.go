package lending

import "lendingScope/internal/txn"

// FormState holds what the user typed and the last transaction digest.
// Transitions return a new value; the receiver is never modified.
type FormState struct {
	DepositAmount string `json:"deposit_amount"`
	BorrowAmount  string `json:"borrow_amount"`
	RepayAmount   string `json:"repay_amount"`
	Loading       bool   `json:"loading"`
	TxDigest      string `json:"tx_digest"`
}

func (s FormState) Amount(op txn.Operation) string {
	switch op {
	case txn.OpDeposit:
		return s.DepositAmount
	case txn.OpBorrow:
		return s.BorrowAmount
	case txn.OpRepay:
		return s.RepayAmount
	default:
		return ""
	}
}

func (s FormState) WithAmount(op txn.Operation, amount string) FormState {
	switch op {
	case txn.OpDeposit:
		s.DepositAmount = amount
	case txn.OpBorrow:
		s.BorrowAmount = amount
	case txn.OpRepay:
		s.RepayAmount = amount
	}
	return s
}

func (s FormState) ClearAmount(op txn.Operation) FormState {
	return s.WithAmount(op, "")
}

func (s FormState) WithLoading(loading bool) FormState {
	s.Loading = loading
	return s
}

func (s FormState) WithDigest(digest string) FormState {
	s.TxDigest = digest
	return s
}
