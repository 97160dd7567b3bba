package domain

import (
	"bytes"
	"encoding/json"
)

// Optional is a JSON field that distinguishes "absent" from an explicit null.
// An absent field leaves Set false; `null` sets both Set and Null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON is only invoked by encoding/json when the key is present
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// TaskPatch is the body of a partial task update
type TaskPatch struct {
	Text      Optional[string] `json:"text"`
	Completed Optional[bool]   `json:"completed"`
	Priority  Optional[string] `json:"priority"`
	Status    Optional[string] `json:"status"`
}
