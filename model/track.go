package model

import "time"

// Track represents one uploaded piece of media in the catalog.
type Track struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"userId,omitempty"` // owning user, nil when the uploader is unknown
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	ReleaseDate string    `json:"releaseDate"`
	Language    string    `json:"language"`
	Country     string    `json:"country"`
	Genre       string    `json:"genre"`
	Explicit    bool      `json:"explicit"`
	BPM         int       `json:"bpm"`
	AudioPath   string    `json:"audioPath"`           // serve path of the stored audio blob, never empty
	CoverPath   string    `json:"coverPath,omitempty"` // serve path of the stored cover blob, empty when none was uploaded
	Plays       int64     `json:"plays"`
	TopMonday   bool      `json:"topMonday"` // marks the track for the weekly spotlight chart
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
