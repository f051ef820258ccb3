package domain

import "time"

// Requester - проверенный пользователь бота-источника
type Requester struct {
	ID             string
	SourceCurrency string
	RequesterID    string
	VerifiedAt     time.Time
}

// UserCounter tracks what one requester has routed into one destination
// currency during the current window.
type UserCounter struct {
	ID                  string
	SourceCurrency      string
	RequesterID         string
	DestinationCurrency string
	Window              Window
}
