package tournament

import (
	"strings"
)

// Field identifies a draft field editable with "field:value".
type Field int

const (
	FieldUnknown Field = iota
	FieldName
	FieldDate
	FieldBuyIn
	FieldVenue
	FieldType
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldDate:
		return "date"
	case FieldBuyIn:
		return "buyin"
	case FieldVenue:
		return "venue"
	case FieldType:
		return "type"
	default:
		return "unknown"
	}
}

var fieldNames = map[string]Field{
	"name":   FieldName,
	"date":   FieldDate,
	"buyin":  FieldBuyIn,
	"buy-in": FieldBuyIn,
	"buy_in": FieldBuyIn,
	"venue":  FieldVenue,
	"type":   FieldType,
}

// FieldEdit is a parsed "field:value" line.
type FieldEdit struct {
	Field Field
	Value string
}

// ParseFieldEdit parses "field:value". The split happens on the first
// colon so values may contain colons themselves.
func ParseFieldEdit(text string) (FieldEdit, error) {
	key, value, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return FieldEdit{}, &FormatError{Reason: "expected field:value, e.g. buyin:500"}
	}
	field, known := fieldNames[strings.ToLower(strings.TrimSpace(key))]
	if !known {
		return FieldEdit{}, &FormatError{Field: "field", Reason: "use one of name, date, buyin, venue, type"}
	}
	return FieldEdit{Field: field, Value: strings.TrimSpace(value)}, nil
}

// Apply validates the value for its field and writes it into d. On error d
// is left unchanged.
func (e FieldEdit) Apply(d *Draft) error {
	switch e.Field {
	case FieldName:
		if e.Value == "" {
			return &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		d.Name = e.Value
	case FieldDate:
		date, err := ParseDate(e.Value)
		if err != nil {
			return err
		}
		d.Date = date
	case FieldBuyIn:
		buyIn, err := ParseBuyIn(e.Value)
		if err != nil {
			return err
		}
		d.BuyIn = buyIn
	case FieldVenue:
		if e.Value == "" {
			return &ValidationError{Field: "venue", Reason: "must not be empty"}
		}
		d.Venue = e.Value
	case FieldType:
		t, err := ParseType(e.Value)
		if err != nil {
			return err
		}
		d.Type = t
	default:
		return &FormatError{Field: "field", Reason: "use one of name, date, buyin, venue, type"}
	}
	return nil
}
