package model

import "time"

// ProfileSnapshot is the free-text slice of a person's career used for stealth scoring.
// Optional fields are empty strings when unknown.
type ProfileSnapshot struct {
	CurrentTitle    string `json:"current_title" yaml:"current_title"`
	CurrentCompany  string `json:"current_company" yaml:"current_company"`
	PreviousTitle   string `json:"previous_title,omitempty" yaml:"previous_title,omitempty"`
	PreviousCompany string `json:"previous_company,omitempty" yaml:"previous_company,omitempty"`
}

// StealthAssessment is the derived stealth verdict for one profile
type StealthAssessment struct {
	Score       int      `json:"score"`             // 0-100
	Indicators  []string `json:"indicators"`        // Unique, first-seen order
	IsCandidate bool     `json:"is_candidate"`      // Score >= 30 and at least two indicators
	Signals     []Signal `json:"signals,omitempty"` // Per-rule breakdown, never affects Score
}

// ScoredProfile pairs a profile with its assessment.
// Index is the profile's position in the input sequence.
type ScoredProfile struct {
	Index      int               `json:"index"`
	Profile    ProfileSnapshot   `json:"profile"`
	Assessment StealthAssessment `json:"assessment"`
}

// Person is a profile record returned by the professional-network source
type Person struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Headline   string    `json:"headline,omitempty"`
	Location   string    `json:"location,omitempty"`
	ProfileURL string    `json:"profile_url,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	UpdatedAt  time.Time `json:"last_updated,omitempty"`

	ProfileSnapshot
}

// Signal is one rule firing with the data that produced it
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType names the stealth rule that fired
type SignalType string

const (
	SignalStealthTitle    SignalType = "stealth_title"    // Current title keyword
	SignalStealthCompany  SignalType = "stealth_company"  // Current company keyword
	SignalLeftNotable     SignalType = "left_notable"     // Previous company on the notable list
	SignalFounderShift    SignalType = "founder_shift"    // Employee title to founder title
	SignalVagueTitle      SignalType = "vague_title"      // Non-committal current title
	SignalSeniorDeparture SignalType = "senior_departure" // Senior leader from notable company
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
