package model

import "time"

type BoatStatus string

const (
	BoatStatusActive   BoatStatus = "active"
	BoatStatusInactive BoatStatus = "inactive"
)

func (s BoatStatus) Valid() bool {
	return s == BoatStatusActive || s == BoatStatusInactive
}

type Boat struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Capacity    int        `json:"capacity"`
	Description string     `json:"description,omitempty"`
	Status      BoatStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
