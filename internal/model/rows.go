package model

import (
	"fmt"
	"strings"
)

// ResultRow is one fencer's final placement in one event, as shown in the
// event page's result list. Every field stays the verbatim cell text;
// places like "3T" (tied third) and withdrawn markers are not interpreted.
type ResultRow struct {
	// Place is the final placement cell (e.g. "1", "3T").
	Place string `json:"place"`

	// Fencer is the fencer name cell, typically "LASTNAME Firstname".
	Fencer string `json:"fencer"`

	// Club is the club affiliation cell; multiple clubs arrive as one string.
	Club string `json:"club,omitempty"`

	// Region is the region or division cell.
	Region string `json:"region,omitempty"`

	// Tournament is the tournament name the row belongs to.
	Tournament string `json:"tournament"`

	// Level, Sex, and Weapon are parsed from the event title.
	Level  string `json:"level,omitempty"`
	Sex    string `json:"sex,omitempty"`
	Weapon string `json:"weapon,omitempty"`

	// Event is the full event title.
	Event string `json:"event"`

	// Time is the event's scheduled time text.
	Time string `json:"time,omitempty"`

	// EventURL is the absolute event page URL.
	EventURL string `json:"event_url,omitempty"`
}

// ResultHeader returns the CSV header for final result rows.
func ResultHeader() []string {
	return []string{
		"Place", "Fencer", "Club", "Region",
		"Tournament", "Level", "Sex", "Weapon", "Event", "Time", "Event URL",
	}
}

// Record returns the CSV record for this row, ordered like ResultHeader.
func (r ResultRow) Record() []string {
	return []string{
		r.Place, r.Fencer, r.Club, r.Region,
		r.Tournament, r.Level, r.Sex, r.Weapon, r.Event, r.Time, r.EventURL,
	}
}

// PoolSheetRow is one fencer's line on a pool sheet: the scores against
// each opponent plus the summary columns the site computes (victories,
// victory ratio, touches scored, touches received, indicator).
type PoolSheetRow struct {
	// Tournament is the tournament name.
	Tournament string `json:"tournament"`

	// Level, Sex, and Weapon are parsed from the event title.
	Level  string `json:"level,omitempty"`
	Sex    string `json:"sex,omitempty"`
	Weapon string `json:"weapon,omitempty"`

	// PoolID is the pool GUID from the pool scores page.
	PoolID string `json:"pool_id"`

	// Fencer is the fencer name cell.
	Fencer string `json:"fencer"`

	// Position is the fencer's pool position, 1-based.
	Position string `json:"position"`

	// Bouts holds one score cell per pool position in order. The fencer's
	// own position is blank; others hold marks like "V5" or "D3".
	Bouts []string `json:"bouts"`

	// Victories is the V column.
	Victories string `json:"victories"`

	// VictoriesPerMatch is the V/M column.
	VictoriesPerMatch string `json:"victories_per_match"`

	// TouchesScored is the TS column.
	TouchesScored string `json:"touches_scored"`

	// TouchesReceived is the TR column.
	TouchesReceived string `json:"touches_received"`

	// Indicator is the Ind column (touches scored minus received).
	Indicator string `json:"indicator"`
}

// PoolSize returns the number of fencers in the pool this row belongs to.
func (r PoolSheetRow) PoolSize() int {
	return len(r.Bouts)
}

// PoolSheetHeader returns the CSV header for pool sheet rows, with one
// bout column per pool position up to maxBouts. Sheets from smaller pools
// leave their trailing bout columns empty.
func PoolSheetHeader(maxBouts int) []string {
	header := []string{
		"Tournament", "Level", "Sex", "Weapon", "Pool ID", "Fencer", "Pool Position",
	}
	for i := 1; i <= maxBouts; i++ {
		header = append(header, fmt.Sprintf("Bout %d", i))
	}
	return append(header,
		"Victories", "Victories / Matches", "Touches Scored", "Touches Received", "Indicators",
	)
}

// Record returns the CSV record for this row, padded to maxBouts bout
// columns so all rows in a file share one header.
func (r PoolSheetRow) Record(maxBouts int) []string {
	record := []string{
		r.Tournament, r.Level, r.Sex, r.Weapon, r.PoolID, r.Fencer, r.Position,
	}
	for i := 0; i < maxBouts; i++ {
		if i < len(r.Bouts) {
			record = append(record, r.Bouts[i])
		} else {
			record = append(record, "")
		}
	}
	return append(record,
		r.Victories, r.VictoriesPerMatch, r.TouchesScored, r.TouchesReceived, r.Indicator,
	)
}

// PoolBout is one line of a pool's bout order: who fences whom, in which
// order, and the touches each side scored once the bout is complete.
type PoolBout struct {
	// Event is the full event title the pool belongs to.
	Event string `json:"event"`

	// PoolID is the pool GUID from the pool scores page.
	PoolID string `json:"pool_id"`

	// RightPosition and LeftPosition are the pool positions of each side.
	RightPosition string `json:"right_position"`
	LeftPosition  string `json:"left_position"`

	// RightFencer and LeftFencer are the fencer name cells.
	RightFencer string `json:"right_fencer"`
	LeftFencer  string `json:"left_fencer"`

	// RightScore and LeftScore are the touches scored by each side,
	// empty until the bout has been fenced.
	RightScore string `json:"right_score,omitempty"`
	LeftScore  string `json:"left_score,omitempty"`
}

// PoolBoutHeader returns the CSV header for bout order rows.
func PoolBoutHeader() []string {
	return []string{
		"Event", "Pool ID",
		"Fencer Right Pool Position", "Fencer Right", "Fencer Right Touches Scored",
		"Fencer Left Touches Scored", "Fencer Left", "Fencer Left Pool Position",
	}
}

// Record returns the CSV record for this bout, ordered like PoolBoutHeader.
func (b PoolBout) Record() []string {
	return []string{
		b.Event, b.PoolID,
		b.RightPosition, b.RightFencer, b.RightScore,
		b.LeftScore, b.LeftFencer, b.LeftPosition,
	}
}

// TableauEntry is one fencer appearance in a direct elimination bracket.
// A fencer who advances appears once per round. The score and referee
// belong to the bout fenced FROM this bracket slot.
type TableauEntry struct {
	// Event is the full event title (falls back to the event ID when the
	// title is unavailable).
	Event string `json:"event"`

	// Round is the bracket column label (e.g. "Table of 64", "Semi-Finals").
	Round string `json:"round"`

	// Seed is the fencer's seed number without decoration.
	Seed string `json:"seed,omitempty"`

	// LastName and FirstName are the fencer name parts. Byes render as a
	// LastName of "- BYE -" with no first name.
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name,omitempty"`

	// Club, Region, and Country come from the affiliation cell,
	// which renders as "CLUB / Region / CAN".
	Club    string `json:"club,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`

	// Score is the bout score (e.g. "15 - 10"), empty for byes and for
	// slots whose bout has not been fenced.
	Score string `json:"score,omitempty"`

	// Referee is the referee line attached to the score, with the "Ref"
	// prefix stripped.
	Referee string `json:"referee,omitempty"`
}

// Name joins the name parts the way FencingTimeLive renders them.
func (e TableauEntry) Name() string {
	if e.FirstName == "" {
		return e.LastName
	}
	return strings.TrimSpace(e.LastName + " " + e.FirstName)
}

// IsBye reports whether this bracket slot is a bye rather than a fencer.
func (e TableauEntry) IsBye() bool {
	return strings.Contains(e.LastName, "BYE")
}

// TableauHeader returns the CSV header for tableau rows.
func TableauHeader() []string {
	return []string{
		"Event", "Round", "Seed", "Last Name", "First Name",
		"Club", "Region", "Country", "Score", "Referee",
	}
}

// Record returns the CSV record for this entry, ordered like TableauHeader.
func (e TableauEntry) Record() []string {
	return []string{
		e.Event, e.Round, e.Seed, e.LastName, e.FirstName,
		e.Club, e.Region, e.Country, e.Score, e.Referee,
	}
}
