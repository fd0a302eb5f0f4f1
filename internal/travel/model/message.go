package model

import "time"

// ChatMessage is one entry in a conversation's append-only message log.
type ChatMessage struct {
	Text       string    `json:"text"`
	IsFromUser bool      `json:"is_from_user"`
	At         time.Time `json:"at"`
}
