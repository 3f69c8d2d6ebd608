package models

import "time"

// Attendee is the optional follow-up profile collected after purchase,
// one-to-one with an issued ticket.
type Attendee struct {
	ID           string    `json:"id"`
	UserTicketID string    `json:"user_ticket_id"`
	Organization string    `json:"organization"`
	RoleTitle    string    `json:"role_title"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	Dietary      string    `json:"dietary"`
	TshirtSize   string    `json:"tshirt_size"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

// Event is a conference info page entry.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Published   bool      `json:"published"`
}

// Speaker is a speaker directory entry.
type Speaker struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Bio       string `json:"bio"`
	Topic     string `json:"topic"`
	PhotoURL  string `json:"photo_url"`
	Published bool   `json:"published"`
	SortOrder int    `json:"sort_order"`
}
