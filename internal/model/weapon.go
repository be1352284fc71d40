package model

import "strings"

// weaponUnknownStr is the string representation for unknown weapon values.
const weaponUnknownStr = "unknown"

// Weapon represents a fencing weapon discipline.
type Weapon string

// Weapon constants.
const (
	// WeaponUnknown represents an unrecognized weapon.
	WeaponUnknown Weapon = ""
	// WeaponEpee represents the epee discipline.
	WeaponEpee Weapon = "epee"
	// WeaponFoil represents the foil discipline.
	WeaponFoil Weapon = "foil"
	// WeaponSaber represents the saber discipline.
	WeaponSaber Weapon = "saber"
)

// String returns the string representation of the Weapon.
func (w Weapon) String() string {
	if w == WeaponUnknown {
		return weaponUnknownStr
	}
	return string(w)
}

// IsValid returns true if this is a known weapon.
func (w Weapon) IsValid() bool {
	switch w {
	case WeaponEpee, WeaponFoil, WeaponSaber:
		return true
	default:
		return false
	}
}

// ParseWeapon converts a string to a Weapon. It accepts the French spellings
// FencingTimeLive uses for Canadian events (epee appears as "épée" or "Épée",
// saber as "sabre") in addition to the English forms.
func ParseWeapon(s string) Weapon {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "epee", "épée", "epée", "épee":
		return WeaponEpee
	case "foil", "fleuret":
		return WeaponFoil
	case "saber", "sabre":
		return WeaponSaber
	default:
		return WeaponUnknown
	}
}

// DetectWeapon scans an event name for a weapon word.
// Event names look like "Senior Men's Épée" or "Y14 Mixed Foil".
func DetectWeapon(eventName string) Weapon {
	for _, field := range strings.Fields(eventName) {
		if w := ParseWeapon(field); w != WeaponUnknown {
			return w
		}
	}
	return WeaponUnknown
}

// EnglishWeaponName normalizes the French weapon spellings that appear in
// event titles to their English equivalents, preserving the original
// capitalization style. Unrecognized words pass through unchanged.
func EnglishWeaponName(word string) string {
	switch word {
	case "épée", "epée", "épee":
		return "epee"
	case "Épée", "Epée", "Épee":
		return "Epee"
	case "sabre":
		return "saber"
	case "Sabre":
		return "Saber"
	default:
		return word
	}
}
