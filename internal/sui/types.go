package sui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// NativeCoinType is the fully qualified type of the gas coin.
	NativeCoinType = "0x2::sui::SUI"

	DataTypeMoveObject = "moveObject"

	StatusSuccess = "success"
)

// U64 decodes Move u64 values that the node emits either as JSON numbers or
// as decimal strings.
type U64 uint64

func (u U64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(u), 10))
}

func (u *U64) UnmarshalJSON(data []byte) error {
	text := string(bytes.Trim(data, `"`))
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return fmt.Errorf("parse u64 %s: %w", data, err)
	}
	*u = U64(v)
	return nil
}

// ObjectDataOptions selects which parts of an object the node returns.
type ObjectDataOptions struct {
	ShowType    bool `json:"showType,omitempty"`
	ShowOwner   bool `json:"showOwner,omitempty"`
	ShowContent bool `json:"showContent,omitempty"`
}

// ObjectResponse is the sui_getObject result. Exactly one of Data and Error
// is set.
type ObjectResponse struct {
	Data  *ObjectData  `json:"data,omitempty"`
	Error *ObjectError `json:"error,omitempty"`
}

type ObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("object %s: %s", e.ObjectID, e.Code)
}

type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Version  U64            `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type,omitempty"`
	Owner    *ObjectOwner   `json:"owner,omitempty"`
	Content  *ObjectContent `json:"content,omitempty"`
}

// SharedOwner carries the version at which an object became shared.
type SharedOwner struct {
	InitialSharedVersion U64 `json:"initial_shared_version"`
}

// ObjectOwner is one of: an address, a parent object, shared, or immutable.
type ObjectOwner struct {
	AddressOwner string       `json:"AddressOwner,omitempty"`
	ObjectOwner  string       `json:"ObjectOwner,omitempty"`
	Shared       *SharedOwner `json:"Shared,omitempty"`
	Immutable    bool         `json:"-"`
}

func (o ObjectOwner) MarshalJSON() ([]byte, error) {
	if o.Immutable {
		return json.Marshal("Immutable")
	}
	type alias ObjectOwner
	return json.Marshal(alias(o))
}

func (o *ObjectOwner) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if text != "Immutable" {
			return fmt.Errorf("unknown owner kind: %s", text)
		}
		*o = ObjectOwner{Immutable: true}
		return nil
	}
	type alias ObjectOwner
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = ObjectOwner(a)
	return nil
}

// ObjectContent is the parsed Move content of an object.
type ObjectContent struct {
	DataType string                     `json:"dataType"`
	Type     string                     `json:"type,omitempty"`
	Fields   map[string]json.RawMessage `json:"fields,omitempty"`
}

// U64Field reads a numeric field. The second return is false when the field
// is absent or null.
func (c *ObjectContent) U64Field(name string) (uint64, bool, error) {
	if c == nil {
		return 0, false, nil
	}
	raw, ok := c.Fields[name]
	if !ok || string(raw) == "null" {
		return 0, false, nil
	}
	var v U64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false, fmt.Errorf("field %s: %w", name, err)
	}
	return uint64(v), true, nil
}

// Balance is the suix_getBalance result.
type Balance struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    string `json:"totalBalance"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type TransactionEffects struct {
	Status ExecutionStatus `json:"status"`
}

// ReturnValue is one Move return value: its BCS bytes and type tag.
type ReturnValue struct {
	Bytes []byte
	Type  string
}

func (r ReturnValue) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(r.Bytes))
	for i, b := range r.Bytes {
		ints[i] = int(b)
	}
	return json.Marshal([]any{ints, r.Type})
}

func (r *ReturnValue) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("return value: expected [bytes, type], got %d elements", len(tuple))
	}
	var ints []int
	if err := json.Unmarshal(tuple[0], &ints); err != nil {
		return fmt.Errorf("return value bytes: %w", err)
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("return value byte out of range: %d", v)
		}
		out[i] = byte(v)
	}
	var typ string
	if err := json.Unmarshal(tuple[1], &typ); err != nil {
		return fmt.Errorf("return value type: %w", err)
	}
	r.Bytes = out
	r.Type = typ
	return nil
}

type ExecutionResult struct {
	ReturnValues []ReturnValue `json:"returnValues,omitempty"`
}

// DevInspectResults is the sui_devInspectTransactionBlock result.
type DevInspectResults struct {
	Effects *TransactionEffects `json:"effects,omitempty"`
	Error   string              `json:"error,omitempty"`
	Results []ExecutionResult   `json:"results,omitempty"`
}

// FirstReturnValue returns results[0].returnValues[0].
func (r *DevInspectResults) FirstReturnValue() (ReturnValue, error) {
	if r.Error != "" {
		return ReturnValue{}, fmt.Errorf("dev inspect: %s", r.Error)
	}
	if r.Effects != nil && r.Effects.Status.Status != StatusSuccess {
		return ReturnValue{}, fmt.Errorf("dev inspect: execution %s: %s", r.Effects.Status.Status, r.Effects.Status.Error)
	}
	if len(r.Results) == 0 || len(r.Results[0].ReturnValues) == 0 {
		return ReturnValue{}, fmt.Errorf("dev inspect: no return values")
	}
	return r.Results[0].ReturnValues[0], nil
}

type TransactionResponseOptions struct {
	ShowEffects bool `json:"showEffects,omitempty"`
}

// TransactionResponse is the sui_executeTransactionBlock result.
type TransactionResponse struct {
	Digest  string              `json:"digest"`
	Effects *TransactionEffects `json:"effects,omitempty"`
	Errors  []string            `json:"errors,omitempty"`
}
