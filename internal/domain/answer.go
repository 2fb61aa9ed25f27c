package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AnswerValue is either a single text value or a list of text values.
// On the wire it is a JSON string or a JSON array of strings.
type AnswerValue struct {
	values   []string
	multiple bool
}

// TextAnswer builds a single-valued answer.
func TextAnswer(v string) AnswerValue {
	return AnswerValue{values: []string{v}}
}

// ListAnswer builds a multi-valued answer.
func ListAnswer(v ...string) AnswerValue {
	return AnswerValue{values: append([]string(nil), v...), multiple: true}
}

// IsList reports whether the answer was given as a list.
func (a AnswerValue) IsList() bool { return a.multiple }

// Values returns a copy of the answer values.
func (a AnswerValue) Values() []string {
	return append([]string(nil), a.values...)
}

// String renders the answer for humans; lists are comma separated.
func (a AnswerValue) String() string {
	return strings.Join(a.values, ", ")
}

// IsEmpty reports whether no non-blank value was given.
func (a AnswerValue) IsEmpty() bool {
	for _, v := range a.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.multiple {
		if a.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.values)
	}
	if len(a.values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(a.values[0])
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = AnswerValue{}
		return nil
	}
	if trimmed[0] == '[' {
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("answer list: %w", err)
		}
		*a = AnswerValue{values: list, multiple: true}
		return nil
	}
	var single string
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return fmt.Errorf("answer: %w", err)
	}
	*a = TextAnswer(single)
	return nil
}
