package model

import "strings"

// Event represents a single competition within a tournament, such as
// "Senior Men's Épée". Every report row produced by the exporter belongs
// to exactly one event.
type Event struct {
	// ID is the FencingTimeLive event identifier, the last path segment
	// of the event URL (a 32 character hex GUID).
	ID string `json:"id"`

	// Name is the full event title as rendered on the event page.
	Name string `json:"name"`

	// Time is the scheduled start time text as rendered on the event page,
	// kept verbatim (the site formats it for humans, not machines).
	Time string `json:"time,omitempty"`

	// URL is the absolute event page URL.
	URL string `json:"url"`

	// Level is the age or rating bracket parsed from the title
	// (e.g. "Senior", "Y14", "Division 1A").
	Level string `json:"level,omitempty"`

	// Sex is the gender category parsed from the title with the possessive
	// stripped ("Men's" becomes "Men"). Mixed events repeat the level word.
	Sex string `json:"sex,omitempty"`

	// Weapon is the weapon word parsed from the title with French spellings
	// normalized to English ("Épée" becomes "Epee").
	Weapon string `json:"weapon,omitempty"`
}

// Discipline returns the typed weapon for this event.
func (e *Event) Discipline() Weapon {
	return ParseWeapon(e.Weapon)
}

// ParseEventTitle splits an event title into level, sex, and weapon.
//
// Titles are usually three words ("Senior Men's Épée"), but levels can span
// multiple words ("Division 1A Men's Épée") and mixed events drop the sex
// word ("Mixed Épée"). The last word is always the weapon; the second to
// last is the sex unless the title only has two words, in which case the
// level doubles as the sex.
func ParseEventTitle(title string) (level, sex, weapon string) {
	fields := strings.Fields(title)
	switch {
	case len(fields) == 0:
		return "", "", ""
	case len(fields) == 1:
		if w := ParseWeapon(fields[0]); w != WeaponUnknown {
			return "", "", EnglishWeaponName(fields[0])
		}
		return fields[0], "", ""
	case len(fields) == 2:
		return fields[0], fields[0], EnglishWeaponName(fields[1])
	default:
		level = strings.Join(fields[:len(fields)-2], " ")
		sex = stripPossessive(fields[len(fields)-2])
		weapon = EnglishWeaponName(fields[len(fields)-1])
		return level, sex, weapon
	}
}

// stripPossessive removes the possessive suffix from a sex word,
// turning "Men's" into "Men" and "Women's" into "Women".
func stripPossessive(s string) string {
	if idx := strings.IndexAny(s, "'’"); idx != -1 {
		return s[:idx]
	}
	return s
}
