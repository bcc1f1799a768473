package conversation

import "strings"

// Intent is the rule-based classification of one chat message.
type Intent string

const (
	IntentHours    Intent = "hours"
	IntentServices Intent = "services"
	IntentLocation Intent = "location"
	IntentContact  Intent = "contact"
	IntentBooking  Intent = "booking"
	IntentFallback Intent = "fallback"
)

type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules are evaluated in order; the first rule with a matching keyword wins.
var intentRules = []intentRule{
	{IntentHours, []string{"hour", "open", "close"}},
	{IntentServices, []string{"service", "price", "cost", "how much", "offer", "do you have"}},
	{IntentLocation, []string{"location", "address"}},
	{IntentContact, []string{"phone", "contact"}},
	{IntentBooking, []string{"book", "appointment", "schedule", "reserve", "want a haircut", "need a cut"}},
}

// ClassifyIntent matches keywords case-insensitively as plain substrings.
func ClassifyIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentFallback
}
