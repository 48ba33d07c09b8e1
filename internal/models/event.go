package models

import "time"

type Event struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	TotalSeats     int       `json:"total_seats" db:"total_seats"`
	AvailableSeats int       `json:"available_seats" db:"available_seats"`
	EventDate      time.Time `json:"event_date" db:"event_date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// BookedSeats is the number of seats held by live bookings.
func (e Event) BookedSeats() int {
	return e.TotalSeats - e.AvailableSeats
}
