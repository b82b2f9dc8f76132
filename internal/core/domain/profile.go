package domain

import "time"

// ProfileEntry is one reader-owned knowledge record (a character sheet, a
// location note, a theory). Values are free-form JSON documents; the engine
// only moves them between the caller and the profile store.
type ProfileEntry struct {
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
