package models

import "time"

// Bridge is what we remember about the last bridge we talked to.
type Bridge struct {
	IP       string
	Username string
	ClientID string
	// when the row was last written
	UpdatedAt time.Time
}

// LightRow is one line of the status table
type LightRow struct {
	ID         string
	Name       string
	Reachable  bool
	On         bool
	Brightness int
	Hue        int
	Saturation int
}
