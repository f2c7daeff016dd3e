package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Optional is a float64 that may be absent
// ⭐ SSOT: "값 없음"과 "0"을 구분하는 유일한 타입 (0/NaN 센티넬 사용 금지)
type Optional struct {
	value float64
	set   bool
}

// Some returns a present value
// NaN/Inf are not valid observations and collapse to None.
func Some(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{value: v, set: true}
}

// None returns an absent value
func None() Optional {
	return Optional{}
}

// FromPtr converts a nullable pointer (provider JSON) into an Optional
func FromPtr(p *float64) Optional {
	if p == nil {
		return None()
	}
	return Some(*p)
}

// Get returns the value and whether it is present
func (o Optional) Get() (float64, bool) {
	return o.value, o.set
}

// IsSet reports whether the value is present
func (o Optional) IsSet() bool {
	return o.set
}

// String renders the value for logs ("n/a" when absent)
func (o Optional) String() string {
	if !o.set {
		return "n/a"
	}
	return strconv.FormatFloat(o.value, 'f', -1, 64)
}

// MarshalJSON encodes an absent value as null
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as absent
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
