package portfolio

import "time"

// User is an admin account. Every user has full access.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Image is an uploaded picture usable as a featured image or image block.
type Image struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	URL          string    `json:"url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Size         int       `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
