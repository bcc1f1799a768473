package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wolfman30/barbershop-concierge/internal/appointments"
	"github.com/wolfman30/barbershop-concierge/internal/business"
	"github.com/wolfman30/barbershop-concierge/internal/extract"
	"github.com/wolfman30/barbershop-concierge/internal/observability/metrics"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

const bookingChecklist = `📅 **Book an Appointment**!

To schedule your visit, please provide:
1. Your name
2. Phone number
3. Preferred date
4. Preferred time
5. Service you want (haircut, shave, etc.)

What works for you?`

// Composer builds the templated replies for rule-matched intents.
type Composer struct {
	profile business.Profile
	repo    appointments.Repository
	metrics *metrics.ChatMetrics
	logger  *logging.Logger
}

func NewComposer(profile business.Profile, repo appointments.Repository, m *metrics.ChatMetrics, logger *logging.Logger) *Composer {
	if repo == nil {
		panic("conversation: appointment repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Composer{profile: profile, repo: repo, metrics: m, logger: logger}
}

// Compose returns the reply for intent. ok is false for IntentFallback,
// which has no template.
func (c *Composer) Compose(ctx context.Context, intent Intent, message string) (reply string, ok bool) {
	switch intent {
	case IntentHours:
		return c.Hours(), true
	case IntentServices:
		return c.Services(), true
	case IntentLocation:
		return c.Location(), true
	case IntentContact:
		return c.Contact(), true
	case IntentBooking:
		return c.Booking(ctx, message), true
	default:
		return "", false
	}
}

func (c *Composer) Hours() string {
	return fmt.Sprintf("📅 **Hours of Operation**\n\n%s\n\nFeel free to stop by or book an appointment!", c.profile.Hours)
}

func (c *Composer) Services() string {
	var b strings.Builder
	b.WriteString("✂️ **Our Services & Prices**\n\n")
	for _, svc := range c.profile.ServiceList() {
		fmt.Fprintf(&b, "- %s: %s\n", business.Title(svc.Name), svc.Price)
	}
	b.WriteString("\nWould you like to book an appointment?")
	return b.String()
}

func (c *Composer) Location() string {
	return fmt.Sprintf("📍 **Find Us**\n\n%s\n%s\n\nCall us: %s", c.profile.Name, c.profile.Location, c.profile.Phone)
}

func (c *Composer) Contact() string {
	return fmt.Sprintf("📞 **Contact Us**\n\nPhone: %s\nLocation: %s", c.profile.Phone, c.profile.Location)
}

// Booking stores whatever could be extracted and echoes it back. Storage
// failures are logged; the reply is the same either way.
func (c *Composer) Booking(ctx context.Context, message string) string {
	fields := extract.Extract(message)
	if fields.IsEmpty() {
		return bookingChecklist
	}

	if err := c.repo.Append(ctx, fields); err != nil {
		c.metrics.ObserveAppointment("failed")
		c.logger.Error("failed to store appointment", "error", err)
	} else {
		c.metrics.ObserveAppointment("stored")
	}

	return "Great! I'd be happy to help you book an appointment.\n\n" +
		"I have: " + formatCaptured(fields) + "\n\n" +
		"What else should I know? (Any missing info like date/time)"
}

// formatCaptured renders fields as a JSON object with ", " and ": "
// separators, e.g. {"name": "John Smith", "phone": "555-123-4567"}.
func formatCaptured(fields extract.Fields) string {
	parts := make([]string, 0, len(extract.FieldOrder))
	for _, f := range extract.FieldOrder {
		v := fields.Get(f)
		if v == "" {
			continue
		}
		key, _ := json.Marshal(string(f))
		val, _ := json.Marshal(v)
		parts = append(parts, string(key)+": "+string(val))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
