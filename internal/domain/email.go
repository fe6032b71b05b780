package domain

import "time"

// EmailTask is a fire-and-forget simulated email delivery
type EmailTask struct {
	ID         string
	Recipient  string
	EnqueuedAt time.Time
}
