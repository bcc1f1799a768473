// Package business holds the static business record the chat concierge
// answers from.
package business

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Service is a single priced offering.
type Service struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Profile is the read-only business record. Services keep their listing order.
type Profile struct {
	Name     string    `json:"name"`
	Hours    string    `json:"hours"`
	Location string    `json:"location"`
	Phone    string    `json:"phone"`
	Services []Service `json:"services"`
}

// Default returns the Classic Sports Barbershop profile.
func Default() Profile {
	return Profile{
		Name:     "Classic Sports Barbershop",
		Hours:    "Mon-Sat: 9AM-7PM, Sun: 10AM-4PM",
		Location: "123 Main Street, Downtown",
		Phone:    "(555) 123-4567",
		Services: []Service{
			{Name: "haircut", Price: "$25"},
			{Name: "shave", Price: "$20"},
			{Name: "haircut + shave", Price: "$40"},
			{Name: "beard trim", Price: "$15"},
			{Name: "kids haircut", Price: "$20"},
		},
	}
}

// ServiceList returns a copy of the services so callers cannot mutate the profile.
func (p Profile) ServiceList() []Service {
	out := make([]Service, len(p.Services))
	copy(out, p.Services)
	return out
}

// Title upper-cases the first letter of every word and lower-cases the rest
// ("haircut + shave" -> "Haircut + Shave").
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// SystemPrompt renders the persona prompt sent ahead of every fallback completion.
func (p Profile) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly chatbot for %s. Your job is to:\n", p.Name)
	b.WriteString("1. Help customers book appointments\n")
	b.WriteString("2. Answer questions about services, hours, location, and pricing\n\n")
	b.WriteString("Business Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Hours: %s\n", p.Hours)
	fmt.Fprintf(&b, "- Location: %s\n", p.Location)
	fmt.Fprintf(&b, "- Phone: %s\n", p.Phone)
	b.WriteString("- Services & Pricing:\n")
	for _, svc := range p.ServiceList() {
		fmt.Fprintf(&b, "  - %s: %s\n", Title(svc.Name), svc.Price)
	}
	b.WriteString("\nWhen collecting appointment info, ask for:\n")
	b.WriteString("- Name\n- Phone number\n- Preferred date and time\n- Service wanted\n\n")
	b.WriteString("Be concise, friendly, and helpful. If they want to book, summarize the appointment and confirm.\n")
	return b.String()
}
