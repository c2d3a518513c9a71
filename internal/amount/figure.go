package amount

import "encoding/json"

// Figure is a monetary field exactly as it arrived from the backend: a JSON
// string such as "1234.56", a bare number, or null. It is decoded lazily by
// Parse, ParseOptional and Decimal so a malformed figure never fails the
// surrounding response.
type Figure json.RawMessage

// F builds a Figure from a decimal string. Mostly useful in tests and fixtures.
func F(s string) Figure {
	b, _ := json.Marshal(s)
	return Figure(b)
}

// UnmarshalJSON stores the raw token.
func (f *Figure) UnmarshalJSON(b []byte) error {
	*f = append((*f)[:0], b...)
	return nil
}

// MarshalJSON writes the raw token back, or null when empty.
func (f Figure) MarshalJSON() ([]byte, error) {
	if len(f) == 0 {
		return []byte("null"), nil
	}
	return f, nil
}

// IsNull reports whether the figure was absent or JSON null.
func (f Figure) IsNull() bool {
	_, ok := fromRaw(f)
	return !ok
}
