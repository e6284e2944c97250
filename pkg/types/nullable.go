package types

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Nullable tracks whether a JSON field was present, and whether it was null.
// It lets partial updates tell "leave alone" apart from "clear".
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	n.Set = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}
	var parsed T
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Value = &parsed
	return nil
}

// NullableUUID is the common case for optional foreign keys.
type NullableUUID = Nullable[uuid.UUID]

// NullableString clears optional text columns such as notes.
type NullableString = Nullable[string]

// NullableTime clears optional timestamps such as due dates.
type NullableTime = Nullable[time.Time]
