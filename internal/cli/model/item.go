package model

import "time"

// Item: найденная вещь.
type Item struct {
	ID          string    `json:"id"`
	FinderID    int64     `json:"finder_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
