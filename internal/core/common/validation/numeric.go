package validation

import (
	"bytes"
	"encoding/json"
)

// NumericString is a numeric field sent as a JSON string. Bare JSON numbers
// are accepted too and kept in their literal form.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumericString(num.String())
	return nil
}

func (n NumericString) String() string {
	return string(n)
}
