// Package extract pulls booking details out of free-form customer messages.
package extract

import (
	"regexp"
	"strings"

	"github.com/wolfman30/barbershop-concierge/internal/business"
)

// Field names a single extractable value.
type Field string

const (
	FieldName    Field = "name"
	FieldPhone   Field = "phone"
	FieldService Field = "service"
	FieldDate    Field = "date"
	FieldTime    Field = "time"
)

// FieldOrder is the canonical order of fields in output.
var FieldOrder = []Field{FieldName, FieldPhone, FieldService, FieldDate, FieldTime}

// Fields is the set of values found in one message. Absent values are empty
// strings and are omitted from JSON.
type Fields struct {
	Name    string `json:"name,omitempty" dynamodbav:"name,omitempty"`
	Phone   string `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Service string `json:"service,omitempty" dynamodbav:"service,omitempty"`
	Date    string `json:"date,omitempty" dynamodbav:"date,omitempty"`
	Time    string `json:"time,omitempty" dynamodbav:"time,omitempty"`
}

// IsEmpty reports whether no field was extracted.
func (f Fields) IsEmpty() bool {
	return f == Fields{}
}

// Get returns the value for field, or "" when absent.
func (f Fields) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldPhone:
		return f.Phone
	case FieldService:
		return f.Service
	case FieldDate:
		return f.Date
	case FieldTime:
		return f.Time
	}
	return ""
}

// Set stores value under field. Unknown fields are ignored.
func (f *Fields) Set(field Field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldPhone:
		f.Phone = value
	case FieldService:
		f.Service = value
	case FieldDate:
		f.Date = value
	case FieldTime:
		f.Time = value
	}
}

// Rule extracts one field. Match receives the raw message.
type Rule struct {
	Field Field
	Match func(message string) (string, bool)
}

var (
	nameRE  = regexp.MustCompile(`(?:my name is|i'm|i am)\s+([a-zA-Z]+(?:\s+[a-zA-Z]+)*)`)
	phoneRE = regexp.MustCompile(`(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`)
	dateRE  = regexp.MustCompile(`(monday|tuesday|wednesday|thursday|friday|saturday|sunday|today|tomorrow)`)
	// Matches the first number-like token anywhere in the message.
	timeRE = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

// KnownServices are checked in order; the first substring hit wins.
var KnownServices = []string{"haircut", "shave", "beard trim", "kids haircut"}

// DefaultRules is the fixed rule list used by Extract.
var DefaultRules = []Rule{
	{Field: FieldName, Match: matchName},
	{Field: FieldPhone, Match: matchPhone},
	{Field: FieldService, Match: matchService},
	{Field: FieldDate, Match: matchDate},
	{Field: FieldTime, Match: matchTime},
}

// Extract runs DefaultRules over message.
func Extract(message string) Fields {
	return Apply(DefaultRules, message)
}

// Apply runs rules over message. A later rule for an already-set field is skipped.
func Apply(rules []Rule, message string) Fields {
	var out Fields
	for _, rule := range rules {
		if out.Get(rule.Field) != "" {
			continue
		}
		if value, ok := rule.Match(message); ok {
			out.Set(rule.Field, value)
		}
	}
	return out
}

func matchName(message string) (string, bool) {
	m := nameRE.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return "", false
	}
	return business.Title(m[1]), true
}

func matchPhone(message string) (string, bool) {
	m := phoneRE.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func matchService(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, svc := range KnownServices {
		if strings.Contains(lower, svc) {
			return svc, true
		}
	}
	return "", false
}

func matchDate(message string) (string, bool) {
	m := dateRE.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return "", false
	}
	return business.Title(m[1]), true
}

func matchTime(message string) (string, bool) {
	m := timeRE.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return "", false
	}
	minute := m[2]
	if minute == "" {
		minute = "00"
	}
	period := m[3]
	if period == "" {
		period = "pm"
	}
	return m[1] + ":" + minute + period, true
}
