// Package jsonutil provides small helpers for JSON parsing of external
// command output.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// UnmarshalWithContext unmarshals JSON data into v and wraps any error
// with the provided context message.
func UnmarshalWithContext(data []byte, v any, context string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", context, err)
	}
	return nil
}

// UnmarshalArrayAllowEmpty unmarshals JSON data into a slice, allowing
// empty arrays. Entirely empty input is treated as an empty array,
// which some CLIs emit instead of "[]".
func UnmarshalArrayAllowEmpty[T any](data []byte, context string) ([]T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var entries []T
	if err := UnmarshalWithContext(data, &entries, context); err != nil {
		return nil, err
	}
	return entries, nil
}
