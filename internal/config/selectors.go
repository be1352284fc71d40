package config

// SelectorSet holds the CSS selectors used to locate data in rendered
// FencingTimeLive pages. The site ships markup changes without notice;
// overriding a selector in the config file beats waiting for a release.
type SelectorSet struct {
	// TournamentName selects the tournament title on the schedule page.
	TournamentName string `yaml:"tournamentName,omitempty"`

	// EventRow selects one schedule row per event. The event URL lives in
	// the row's data-href attribute.
	EventRow string `yaml:"eventRow,omitempty"`

	// EventName selects the event title on an event page.
	EventName string `yaml:"eventName,omitempty"`

	// EventTime selects the scheduled start time on an event page.
	EventTime string `yaml:"eventTime,omitempty"`

	// ResultRow selects final classification rows on an event page.
	ResultRow string `yaml:"resultRow,omitempty"`

	// PoolLink selects the link to an event's pool round.
	PoolLink string `yaml:"poolLink,omitempty"`

	// PoolRow selects table rows on a pool detail page. Row kind is
	// decided by cell count, not by selector.
	PoolRow string `yaml:"poolRow,omitempty"`

	// TableauLink selects the link to an event's direct elimination round.
	TableauLink string `yaml:"tableauLink,omitempty"`

	// TableauTable selects the bracket table on tableau pages and in the
	// table fragments served by the tableau endpoints.
	TableauTable string `yaml:"tableauTable,omitempty"`
}

// DefaultSelectors returns the selectors matching the live site markup.
func DefaultSelectors() SelectorSet {
	return SelectorSet{
		TournamentName: ".desktop.tournName",
		EventRow:       "tr.clickable-row",
		EventName:      ".desktop.eventName",
		EventTime:      ".desktop.eventTime",
		ResultRow:      "table#resultList > tbody > tr",
		PoolLink:       "a[href*='/pools/scores/']",
		PoolRow:        "table tbody tr",
		TableauLink:    "a[href*='/tableaus/scores/']",
		TableauTable:   "table.elimTableau",
	}
}

// File represents the structure of the ftlexport.yml configuration file.
// Every field is optional; unset fields keep their built-in defaults.
type File struct {
	// BaseURL overrides the FencingTimeLive origin.
	BaseURL string `yaml:"baseUrl,omitempty"`

	// OutputDir overrides where CSV files are written.
	OutputDir string `yaml:"outputDir,omitempty"`

	// UserAgent overrides the User-Agent for plain HTTP requests.
	UserAgent string `yaml:"userAgent,omitempty"`

	// PostgresDSN enables the Postgres history mirror. The
	// FTLEXPORT_PG_DSN environment variable takes precedence.
	PostgresDSN string `yaml:"postgresDsn,omitempty"`

	// Selectors overrides individual CSS selectors.
	Selectors SelectorSet `yaml:"selectors,omitempty"`
}

// EffectiveSelectors merges the file's selector overrides over the
// defaults. Only non-empty overrides take effect.
func (f *File) EffectiveSelectors() SelectorSet {
	result := DefaultSelectors()

	if f.Selectors.TournamentName != "" {
		result.TournamentName = f.Selectors.TournamentName
	}
	if f.Selectors.EventRow != "" {
		result.EventRow = f.Selectors.EventRow
	}
	if f.Selectors.EventName != "" {
		result.EventName = f.Selectors.EventName
	}
	if f.Selectors.EventTime != "" {
		result.EventTime = f.Selectors.EventTime
	}
	if f.Selectors.ResultRow != "" {
		result.ResultRow = f.Selectors.ResultRow
	}
	if f.Selectors.PoolLink != "" {
		result.PoolLink = f.Selectors.PoolLink
	}
	if f.Selectors.PoolRow != "" {
		result.PoolRow = f.Selectors.PoolRow
	}
	if f.Selectors.TableauLink != "" {
		result.TableauLink = f.Selectors.TableauLink
	}
	if f.Selectors.TableauTable != "" {
		result.TableauTable = f.Selectors.TableauTable
	}

	return result
}
