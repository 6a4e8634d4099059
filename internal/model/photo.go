package model

import "github.com/google/uuid"

// UserPhoto is a photo attached to a user profile.
type UserPhoto struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	URL    string    `json:"url"`
}

// UserSocialLink is a named social-media link on a user profile.
type UserSocialLink struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Link   string    `json:"link"`
}
