// Package ui provides the Bubble Tea TUI for dailycard.
package ui

import "time"

// DayChanged is sent by the coordinator when the local calendar day rolls
// over while the program is running.
type DayChanged struct {
	Now time.Time
}

// EntitlementChanged is sent when the paying-user snapshot flips.
type EntitlementChanged struct {
	Paying bool
}

// springTick drives the spring-back animation of the card offset.
type springTick struct{}

// noticeExpired clears a transient status notice.
type noticeExpired struct {
	id int
}
