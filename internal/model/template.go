package model

import "time"

// Template is a purchasable automation template. FileURL points at the
// hosted workflow JSON; it is never exposed to clients directly, only
// streamed through the download endpoint.
type Template struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	FileURL     string    `json:"-"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
