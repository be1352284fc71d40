package model

import "testing"

// TestParseEventTitle tests splitting event titles into level, sex, and weapon.
func TestParseEventTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		title      string
		wantLevel  string
		wantSex    string
		wantWeapon string
	}{
		{
			name:       "standard three word title",
			title:      "Senior Men's Épée",
			wantLevel:  "Senior",
			wantSex:    "Men",
			wantWeapon: "Epee",
		},
		{
			name:       "womens foil",
			title:      "Cadet Women's Foil",
			wantLevel:  "Cadet",
			wantSex:    "Women",
			wantWeapon: "Foil",
		},
		{
			name:       "two word mixed event repeats level as sex",
			title:      "Mixed Épée",
			wantLevel:  "Mixed",
			wantSex:    "Mixed",
			wantWeapon: "Epee",
		},
		{
			name:       "multi word level",
			title:      "Division 1A Men's Sabre",
			wantLevel:  "Division 1A",
			wantSex:    "Men",
			wantWeapon: "Saber",
		},
		{
			name:       "curly apostrophe",
			title:      "Junior Women’s Foil",
			wantLevel:  "Junior",
			wantSex:    "Women",
			wantWeapon: "Foil",
		},
		{
			name:       "single weapon word",
			title:      "Épée",
			wantLevel:  "",
			wantSex:    "",
			wantWeapon: "Epee",
		},
		{
			name:       "single non weapon word",
			title:      "Veterans",
			wantLevel:  "Veterans",
			wantSex:    "",
			wantWeapon: "",
		},
		{
			name:       "empty title",
			title:      "",
			wantLevel:  "",
			wantSex:    "",
			wantWeapon: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			level, sex, weapon := ParseEventTitle(tt.title)
			if level != tt.wantLevel {
				t.Errorf("level = %q, want %q", level, tt.wantLevel)
			}
			if sex != tt.wantSex {
				t.Errorf("sex = %q, want %q", sex, tt.wantSex)
			}
			if weapon != tt.wantWeapon {
				t.Errorf("weapon = %q, want %q", weapon, tt.wantWeapon)
			}
		})
	}
}

// TestEventDiscipline tests the typed weapon accessor.
func TestEventDiscipline(t *testing.T) {
	t.Parallel()

	e := Event{Weapon: "Epee"}
	if got := e.Discipline(); got != WeaponEpee {
		t.Errorf("Discipline() = %v, want %v", got, WeaponEpee)
	}

	e = Event{Weapon: ""}
	if got := e.Discipline(); got != WeaponUnknown {
		t.Errorf("Discipline() = %v, want %v", got, WeaponUnknown)
	}
}

// TestTournamentEventByID tests event lookup on a tournament.
func TestTournamentEventByID(t *testing.T) {
	t.Parallel()

	tour := Tournament{
		Events: []Event{
			{ID: "AAA", Name: "Senior Men's Épée"},
			{ID: "BBB", Name: "Senior Women's Foil"},
		},
	}

	if got := tour.EventByID("BBB"); got == nil || got.Name != "Senior Women's Foil" {
		t.Errorf("EventByID(BBB) = %+v, want the foil event", got)
	}
	if got := tour.EventByID("ZZZ"); got != nil {
		t.Errorf("EventByID(ZZZ) = %+v, want nil", got)
	}
}
