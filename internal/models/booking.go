package models

import "time"

type Booking struct {
	ID           int64     `json:"id" db:"id"`
	EventID      int64     `json:"event_id" db:"event_id"`
	EventName    string    `json:"event_name,omitempty" db:"event_name"`
	CustomerName string    `json:"customer_name" db:"customer_name"`
	SeatsBooked  int       `json:"seats_booked" db:"seats_booked"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
