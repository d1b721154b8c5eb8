package tournament

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// delimiters in priority order. The first one present in the text is used
// even when a later one would give the expected field count.
var delimiters = []string{" | ", "|", " - ", " – ", " — "}

const (
	registrationFields = 4
	resultFields       = 2
)

// SplitFields splits a free-text line into exactly expected trimmed,
// non-empty fields. When no delimiter occurs and allowWhitespace is set,
// the line is split on whitespace runs instead.
func SplitFields(text string, expected int, allowWhitespace bool) ([]string, error) {
	text = strings.TrimSpace(text)

	var parts []string
	for _, d := range delimiters {
		if strings.Contains(text, d) {
			parts = strings.Split(text, d)
			break
		}
	}
	if parts == nil {
		if allowWhitespace {
			parts = strings.Fields(text)
		} else {
			parts = []string{text}
		}
	}

	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}

	if len(fields) != expected {
		return nil, &FormatError{Reason: acceptedFormats(expected, allowWhitespace)}
	}
	return fields, nil
}

func acceptedFormats(expected int, allowWhitespace bool) string {
	s := fmt.Sprintf(`expected %d fields separated by " | ", "|", " - ", " – " or " — "`, expected)
	if allowWhitespace {
		s += " or spaces"
	}
	return s
}

// ParseRegistration parses "name | date | buy-in | venue".
func ParseRegistration(text string) (Draft, error) {
	fields, err := SplitFields(text, registrationFields, false)
	if err != nil {
		return Draft{}, err
	}

	date, err := ParseDate(fields[1])
	if err != nil {
		return Draft{}, err
	}
	buyIn, err := ParseBuyIn(fields[2])
	if err != nil {
		return Draft{}, err
	}

	return Draft{
		Name:  fields[0],
		Date:  date,
		BuyIn: buyIn,
		Venue: fields[3],
		Type:  TypeFreezeout,
	}, nil
}

// ParseResult parses "position | payout". Whitespace is accepted as a
// separator too, so "1 2500" works.
func ParseResult(text string) (ResultInput, error) {
	fields, err := SplitFields(text, resultFields, true)
	if err != nil {
		return ResultInput{}, err
	}

	position, err := ParsePosition(fields[0])
	if err != nil {
		return ResultInput{}, err
	}
	payout, err := ParseAmount("payout", fields[1])
	if err != nil {
		return ResultInput{}, err
	}

	return ResultInput{Position: position, Payout: payout}, nil
}

var datePatterns = []struct {
	re                      *regexp.Regexp
	yearIdx, monIdx, dayIdx int
}{
	{regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`), 3, 2, 1},
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), 3, 2, 1},
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), 1, 2, 3},
}

// ParseDate accepts DD.MM.YYYY, DD/MM/YYYY and YYYY-MM-DD. The date is
// rebuilt and compared component-wise, so 31.02.2024 is rejected instead
// of rolling over into March.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[p.yearIdx])
		month, _ := strconv.Atoi(m[p.monIdx])
		day, _ := strconv.Atoi(m[p.dayIdx])

		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			return time.Time{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a calendar date", s)}
		}
		return t, nil
	}
	return time.Time{}, &FormatError{Field: "date", Reason: "use DD.MM.YYYY, DD/MM/YYYY or YYYY-MM-DD"}
}

var (
	amountRegex      = regexp.MustCompile(`^\d+(\.\d+)?$`)
	groupedAmount    = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)
	currencyReplacer = strings.NewReplacer("$", "", "€", "", "₽", "", " ", "", " ", "")
)

// MaxAmount is the largest money amount accepted from user input.
const MaxAmount = 1e12

// ParseAmount parses a non-negative money amount up to MaxAmount. Currency markers and
// space thousands separators are ignored; a lone comma is a decimal mark.
func ParseAmount(field, s string) (float64, error) {
	s = currencyReplacer.Replace(strings.TrimSpace(s))
	if strings.HasPrefix(s, "-") {
		return 0, &ValidationError{Field: field, Reason: "must not be negative"}
	}

	if groupedAmount.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	} else if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	if !amountRegex.MatchString(s) {
		return 0, &FormatError{Field: field, Reason: "expected a number like 500 or 1250.50"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &FormatError{Field: field, Reason: "expected a finite number"}
	}
	if v > MaxAmount {
		return 0, &ValidationError{Field: field, Reason: "is too large"}
	}
	return v, nil
}

// ParseBuyIn parses a buy-in, which must be greater than zero.
func ParseBuyIn(s string) (float64, error) {
	v, err := ParseAmount("buyin", s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, &ValidationError{Field: "buyin", Reason: "must be greater than zero"}
	}
	return v, nil
}

var positionRegex = regexp.MustCompile(`^#?(\d+)$`)

// ParsePosition parses a finishing place, a positive integer.
func ParsePosition(s string) (int, error) {
	m := positionRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, &FormatError{Field: "position", Reason: "expected a whole number like 1 or 12"}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &FormatError{Field: "position", Reason: "number is too large"}
	}
	if n <= 0 {
		return 0, &ValidationError{Field: "position", Reason: "must be 1 or higher"}
	}
	return n, nil
}

var typeAliases = map[string]Type{
	"freezeout":  TypeFreezeout,
	"freeze-out": TypeFreezeout,
	"freeze out": TypeFreezeout,
	"rebuy":      TypeRebuy,
	"re-buy":     TypeRebuy,
	"addon":      TypeAddon,
	"add-on":     TypeAddon,
	"bounty":     TypeBounty,
	"knockout":   TypeBounty,
	"ko":         TypeBounty,
	"satellite":  TypeSatellite,
	"sat":        TypeSatellite,
}

// ParseType parses a tournament type name.
func ParseType(s string) (Type, error) {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	names := make([]string, len(Types))
	for i, t := range Types {
		names[i] = string(t)
	}
	return "", &ValidationError{Field: "type", Reason: "use one of " + strings.Join(names, ", ")}
}
