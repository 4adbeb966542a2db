package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidNumber marks numeric input that could not be parsed and was coerced to zero.
	ErrInvalidNumber = errors.New("invalid numeric input")
	// ErrInvalidShape is returned when a payload is structurally wrong (e.g. lines is not an array).
	ErrInvalidShape = errors.New("invalid input shape")
)

// dutchDecimal is a number with a decimal comma. Dots may only group
// thousands before the comma.
var dutchDecimal = regexp.MustCompile(`^-?(\d{1,3}(\.\d{3})+|\d+),\d+$`)

// ParseDecimal parses user-entered numbers. It accepts "12.5", "12,5" and the
// Dutch grouped form "1.234,56". Empty input is zero. Anything else yields zero
// together with ErrInvalidNumber so callers can choose between tolerance and rejection.
// Mixed forms such as "1,234.56" are rejected rather than guessed.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		if !dutchDecimal.MatchString(s) {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return d, nil
}

// Number is a leniently decoded JSON numeric field. Numbers, numeric strings and
// null decode normally; any other token decodes to zero with Invalid set.
type Number struct {
	Value   decimal.Decimal
	Invalid bool
	Raw     string
}

// NewNumber wraps a valid decimal.
func NewNumber(d decimal.Decimal) Number {
	return Number{Value: d}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{Value: decimal.Zero}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var raw string
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			n.Invalid, n.Raw = true, string(trimmed)
			return nil
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		raw = string(trimmed)
	default:
		n.Invalid, n.Raw = true, string(trimmed)
		return nil
	}

	v, err := ParseDecimal(raw)
	n.Value = v
	if err != nil {
		n.Invalid, n.Raw = true, raw
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return n.Value.MarshalJSON()
}

// InputIssue reports one field that was coerced to zero. Line is 1-based.
type InputIssue struct {
	Line  int    `json:"line"`
	Field string `json:"field"`
	Raw   string `json:"raw"`
}

func (i InputIssue) Error() string {
	return fmt.Sprintf("line %d: %s: %q is not a number", i.Line, i.Field, i.Raw)
}

// LineInput is the wire form of an InvoiceLine as typed by a user.
type LineInput struct {
	Description   string `json:"description"`
	Quantity      Number `json:"quantity"`
	UnitPrice     Number `json:"unit_price"`
	VATPercentage Number `json:"vat_percentage"`
	IsTextLine    bool   `json:"is_text_line"`
}

// Line converts the input at the given 0-based position into an InvoiceLine
// and lists fields that were coerced.
func (in LineInput) Line(index int) (InvoiceLine, []InputIssue) {
	var issues []InputIssue
	check := func(field string, n Number) decimal.Decimal {
		if n.Invalid {
			issues = append(issues, InputIssue{Line: index + 1, Field: field, Raw: n.Raw})
		}
		return n.Value
	}
	line := InvoiceLine{
		Description:   in.Description,
		Quantity:      check("quantity", in.Quantity),
		UnitPrice:     check("unit_price", in.UnitPrice),
		VATPercentage: check("vat_percentage", in.VATPercentage),
		IsTextLine:    in.IsTextLine,
	}
	return line, issues
}

// DecodeLines decodes a JSON array of line objects. A non-array payload (or an
// element that is not an object) fails fast with ErrInvalidShape instead of
// silently producing zero totals. Unparsable numbers are coerced to zero and
// reported as issues.
func DecodeLines(raw []byte) ([]InvoiceLine, []InputIssue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []InvoiceLine{}, nil, nil
	}
	if trimmed[0] != '[' {
		return nil, nil, fmt.Errorf("%w: lines must be an array", ErrInvalidShape)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}

	lines := make([]InvoiceLine, 0, len(elems))
	var issues []InputIssue
	for i, elem := range elems {
		e := bytes.TrimSpace(elem)
		if len(e) == 0 || e[0] != '{' {
			return nil, nil, fmt.Errorf("%w: line %d must be an object", ErrInvalidShape, i+1)
		}
		var in LineInput
		if err := json.Unmarshal(e, &in); err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrInvalidShape, i+1, err)
		}
		line, lineIssues := in.Line(i)
		lines = append(lines, line)
		issues = append(issues, lineIssues...)
	}
	return lines, issues, nil
}

// IssuesError joins input issues into a single error wrapping ErrInvalidNumber.
func IssuesError(issues []InputIssue) error {
	if len(issues) == 0 {
		return nil
	}
	errs := make([]error, len(issues))
	for i, issue := range issues {
		errs[i] = issue
	}
	return fmt.Errorf("%w: %w", ErrInvalidNumber, errors.Join(errs...))
}
