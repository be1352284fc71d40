package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pistekit/ftlexport/internal/config"
	"github.com/pistekit/ftlexport/internal/database"
	"github.com/pistekit/ftlexport/internal/ftl"
	"github.com/pistekit/ftlexport/internal/model"
	"github.com/pistekit/ftlexport/internal/report"
	"github.com/pistekit/ftlexport/internal/scraper"
)

// poolIDsExpr is the JavaScript global the pool scores page fills with
// pool GUIDs once its client-side rendering settles.
const poolIDsExpr = "window.ids"

// PageFetcher renders pages in a headless browser and evaluates
// JavaScript on them. *browser.Browser implements it.
//
// Design decision: Steps depend on this interface rather than the
// browser type because:
// 1. Fixture-driven tests can feed canned HTML without Chrome
// 2. The browser session is shared across pipelines in batch mode
// 3. Steps state exactly which browser capabilities they use
type PageFetcher interface {
	// FetchHTML navigates to pageURL and returns the rendered HTML.
	FetchHTML(ctx context.Context, pageURL string) (string, error)

	// FetchHTMLWide does the same with the wide bracket viewport, so
	// deep tableau columns render instead of collapsing.
	FetchHTMLWide(ctx context.Context, pageURL string) (string, error)

	// PollStringSlice navigates to pageURL and polls a JavaScript
	// expression until it yields a non-empty string slice.
	PollStringSlice(ctx context.Context, pageURL, expr string, attempts int, interval time.Duration) ([]string, error)
}

// FragmentClient fetches the pool and bracket fragments the site serves
// as plain HTML and JSON, which need no browser. *ftl.Client implements it.
type FragmentClient interface {
	// FetchPoolHTML fetches one pool's detail fragment.
	FetchPoolHTML(ctx context.Context, eventID, roundID, poolGUID string) (string, error)

	// FetchTrees lists the bracket trees of a direct elimination round.
	FetchTrees(ctx context.Context, eventID, roundID string) ([]ftl.Tree, error)

	// FetchTableHTML fetches the rendered table fragment of one tree.
	FetchTableHTML(ctx context.Context, eventID, roundID string, tree ftl.Tree) (string, error)
}

// eventPageHTML returns the rendered HTML of a page, reusing the snapshot
// an earlier step cached on the report when one exists.
func eventPageHTML(ctx context.Context, fetcher PageFetcher, rep *model.ExportReport, pageURL string) (string, error) {
	if page := rep.GetPage(pageURL); page != nil {
		return string(page.Raw), nil
	}

	pageHTML, err := fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", pageURL, err)
	}
	rep.AddPage(model.NewPage(pageURL, pageHTML))
	return pageHTML, nil
}

// TournamentStep renders the tournament schedule page and extracts the
// tournament name and its event links.
//
// Design decision: This is the first step and every other step depends
// on it because:
// 1. The tournament name keys the CSV filenames and history records
// 2. The event list drives every later extraction loop
// 3. A schedule that fails to render means nothing else can work
type TournamentStep struct {
	// fetcher renders pages in the shared browser session.
	fetcher PageFetcher

	// scraper extracts data from rendered HTML.
	scraper *scraper.Scraper

	// logger for structured logging.
	logger *slog.Logger
}

// TournamentStepOption configures a TournamentStep.
type TournamentStepOption func(*TournamentStep)

// WithTournamentLogger sets a custom logger for the tournament step.
func WithTournamentLogger(logger *slog.Logger) TournamentStepOption {
	return func(s *TournamentStep) {
		s.logger = logger
	}
}

// NewTournamentStep creates a new schedule extraction step.
func NewTournamentStep(fetcher PageFetcher, sc *scraper.Scraper, opts ...TournamentStepOption) *TournamentStep {
	s := &TournamentStep{
		fetcher: fetcher,
		scraper: sc,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *TournamentStep) Name() string {
	return "tournament"
}

// Do executes the schedule extraction step.
func (s *TournamentStep) Do(ctx context.Context, rep *model.ExportReport) error {
	id, err := ftl.ParseTournamentURL(rep.Tournament.URL)
	if err != nil {
		return err
	}

	pageHTML, err := s.fetcher.FetchHTML(ctx, rep.Tournament.URL)
	if err != nil {
		return fmt.Errorf("failed to render schedule page: %w", err)
	}
	rep.AddPage(model.NewPage(rep.Tournament.URL, pageHTML))

	name, events, err := s.scraper.ParseSchedule(pageHTML)
	if err != nil {
		return err
	}

	rep.Tournament.ID = id
	rep.Tournament.Name = name
	rep.Tournament.FetchedAt = time.Now()
	rep.Tournament.Events = events

	if len(events) == 0 {
		s.logger.Warn("schedule page lists no events", "tournament", name)
	}

	s.logger.Info("schedule parsed",
		"tournament", name,
		"events", len(events),
	)

	return nil
}

// ScheduleStep renders every event page and fills in each event's title,
// scheduled time, and the level/sex/weapon split of the title.
//
// Design decision: Event pages are rendered once here and cached on the
// report, because three different exporters (results, pools, tableau)
// read the same pages and a browser render is the slowest operation in
// the whole export.
type ScheduleStep struct {
	// fetcher renders pages in the shared browser session.
	fetcher PageFetcher

	// scraper extracts data from rendered HTML.
	scraper *scraper.Scraper

	// logger for structured logging.
	logger *slog.Logger
}

// ScheduleStepOption configures a ScheduleStep.
type ScheduleStepOption func(*ScheduleStep)

// WithScheduleLogger sets a custom logger for the schedule step.
func WithScheduleLogger(logger *slog.Logger) ScheduleStepOption {
	return func(s *ScheduleStep) {
		s.logger = logger
	}
}

// NewScheduleStep creates a new event page rendering step.
func NewScheduleStep(fetcher PageFetcher, sc *scraper.Scraper, opts ...ScheduleStepOption) *ScheduleStep {
	s := &ScheduleStep{
		fetcher: fetcher,
		scraper: sc,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ScheduleStep) Name() string {
	return "events"
}

// Do executes the event page rendering step.
func (s *ScheduleStep) Do(ctx context.Context, rep *model.ExportReport) error {
	for i := range rep.Tournament.Events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event := &rep.Tournament.Events[i]

		pageHTML, err := s.fetcher.FetchHTML(ctx, event.URL)
		if err != nil {
			return fmt.Errorf("failed to render event %s: %w", event.ID, err)
		}
		rep.AddPage(model.NewPage(event.URL, pageHTML))

		page, err := s.scraper.ParseEventPage(pageHTML)
		if err != nil {
			return fmt.Errorf("failed to parse event %s: %w", event.ID, err)
		}

		event.Name = page.Name
		event.Time = page.Time
		event.Level, event.Sex, event.Weapon = model.ParseEventTitle(page.Name)

		s.logger.Debug("event page rendered",
			"event", event.Name,
			"time", event.Time,
		)
	}

	s.logger.Info("event pages rendered", "events", len(rep.Tournament.Events))

	return nil
}

// ResultsStep extracts final classification rows from the event pages.
type ResultsStep struct {
	// fetcher renders pages the schedule step did not cache.
	fetcher PageFetcher

	// scraper extracts data from rendered HTML.
	scraper *scraper.Scraper

	// logger for structured logging.
	logger *slog.Logger
}

// ResultsStepOption configures a ResultsStep.
type ResultsStepOption func(*ResultsStep)

// WithResultsLogger sets a custom logger for the results step.
func WithResultsLogger(logger *slog.Logger) ResultsStepOption {
	return func(s *ResultsStep) {
		s.logger = logger
	}
}

// NewResultsStep creates a new final classification extraction step.
func NewResultsStep(fetcher PageFetcher, sc *scraper.Scraper, opts ...ResultsStepOption) *ResultsStep {
	s := &ResultsStep{
		fetcher: fetcher,
		scraper: sc,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ResultsStep) Name() string {
	return "results"
}

// Do executes the final classification extraction step.
func (s *ResultsStep) Do(ctx context.Context, rep *model.ExportReport) error {
	for i := range rep.Tournament.Events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event := rep.Tournament.Events[i]

		pageHTML, err := eventPageHTML(ctx, s.fetcher, rep, event.URL)
		if err != nil {
			return err
		}

		page, err := s.scraper.ParseEventPage(pageHTML)
		if err != nil {
			return fmt.Errorf("failed to parse event %s: %w", event.ID, err)
		}

		if len(page.Placements) == 0 {
			s.logger.Debug("event has no published results", "event", event.Name)
			continue
		}

		for _, placement := range page.Placements {
			rep.Results = append(rep.Results, model.ResultRow{
				Place:      placement.Place,
				Fencer:     placement.Fencer,
				Club:       placement.Club,
				Region:     placement.Region,
				Tournament: rep.Tournament.Name,
				Level:      event.Level,
				Sex:        event.Sex,
				Weapon:     event.Weapon,
				Event:      event.Name,
				Time:       event.Time,
				EventURL:   event.URL,
			})
		}
	}

	s.logger.Info("results extracted", "rows", len(rep.Results))

	return nil
}

// PoolsStep extracts pool sheets and bout orders. For each event with a
// pool round it polls the pool scores page for the pool GUID list, then
// fetches and parses each pool's detail fragment.
//
// Design decision: Pool GUIDs come from polling window.ids in the
// rendered page rather than an API call because the site exposes no
// listing endpoint; the page script assembles the list client side.
// The detail fragments themselves are plain HTML, so they bypass the
// browser entirely.
type PoolsStep struct {
	// fetcher renders the pool scores page and polls its pool list.
	fetcher PageFetcher

	// client fetches pool detail fragments over plain HTTP.
	client FragmentClient

	// scraper extracts data from fragment HTML.
	scraper *scraper.Scraper

	// pollAttempts and pollInterval bound the pool list polling.
	pollAttempts int
	pollInterval time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// PoolsStepOption configures a PoolsStep.
type PoolsStepOption func(*PoolsStep)

// WithPoolPolling sets how often and how long to poll the pool scores
// page for its pool list.
func WithPoolPolling(attempts int, interval time.Duration) PoolsStepOption {
	return func(s *PoolsStep) {
		if attempts > 0 {
			s.pollAttempts = attempts
		}
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// WithPoolsLogger sets a custom logger for the pools step.
func WithPoolsLogger(logger *slog.Logger) PoolsStepOption {
	return func(s *PoolsStep) {
		s.logger = logger
	}
}

// NewPoolsStep creates a new pool extraction step.
func NewPoolsStep(fetcher PageFetcher, client FragmentClient, sc *scraper.Scraper, opts ...PoolsStepOption) *PoolsStep {
	s := &PoolsStep{
		fetcher:      fetcher,
		client:       client,
		scraper:      sc,
		pollAttempts: config.DefaultPoolPollAttempts,
		pollInterval: config.DefaultPoolPollInterval,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PoolsStep) Name() string {
	return "pools"
}

// Do executes the pool extraction step.
func (s *PoolsStep) Do(ctx context.Context, rep *model.ExportReport) error {
	for i := range rep.Tournament.Events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event := rep.Tournament.Events[i]

		pageHTML, err := eventPageHTML(ctx, s.fetcher, rep, event.URL)
		if err != nil {
			return err
		}

		page, err := s.scraper.ParseEventPage(pageHTML)
		if err != nil {
			return fmt.Errorf("failed to parse event %s: %w", event.ID, err)
		}

		if page.PoolsURL == "" {
			s.logger.Debug("event has no pool round", "event", event.Name)
			continue
		}
		roundID := ftl.LastPathSegment(page.PoolsURL)

		poolIDs, err := s.fetcher.PollStringSlice(ctx, page.PoolsURL, poolIDsExpr, s.pollAttempts, s.pollInterval)
		if err != nil {
			return fmt.Errorf("failed to list pools for event %s: %w", event.Name, err)
		}

		for _, poolID := range poolIDs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			fragment, err := s.client.FetchPoolHTML(ctx, event.ID, roundID, poolID)
			if err != nil {
				return fmt.Errorf("failed to fetch pool %s of event %s: %w", poolID, event.Name, err)
			}

			sheets, bouts, err := s.scraper.ParsePool(fragment, scraper.PoolContext{
				Tournament: rep.Tournament.Name,
				Level:      event.Level,
				Sex:        event.Sex,
				Weapon:     event.Weapon,
				Event:      event.Name,
				PoolID:     poolID,
			})
			if err != nil {
				return fmt.Errorf("failed to parse pool %s of event %s: %w", poolID, event.Name, err)
			}

			rep.PoolSheets = append(rep.PoolSheets, sheets...)
			rep.PoolBouts = append(rep.PoolBouts, bouts...)
		}

		s.logger.Debug("pools extracted",
			"event", event.Name,
			"pools", len(poolIDs),
		)
	}

	s.logger.Info("pool rounds extracted",
		"sheet_rows", len(rep.PoolSheets),
		"bout_rows", len(rep.PoolBouts),
	)

	return nil
}

// TableauStep extracts direct elimination brackets. For each event with
// a bracket it lists the round's trees through the JSON endpoint and
// parses each tree's table fragment; when the endpoint lists nothing it
// falls back to rendering the bracket page in a wide viewport.
//
// Design decision: The fallback render exists because some older
// tournaments predate the trees endpoint. The wide viewport matters:
// at desktop width the site collapses deep bracket columns and their
// rows never enter the DOM.
type TableauStep struct {
	// fetcher renders bracket pages when the trees endpoint is empty.
	fetcher PageFetcher

	// client fetches tree lists and table fragments over plain HTTP.
	client FragmentClient

	// scraper extracts data from bracket HTML.
	scraper *scraper.Scraper

	// logger for structured logging.
	logger *slog.Logger
}

// TableauStepOption configures a TableauStep.
type TableauStepOption func(*TableauStep)

// WithTableauLogger sets a custom logger for the tableau step.
func WithTableauLogger(logger *slog.Logger) TableauStepOption {
	return func(s *TableauStep) {
		s.logger = logger
	}
}

// NewTableauStep creates a new bracket extraction step.
func NewTableauStep(fetcher PageFetcher, client FragmentClient, sc *scraper.Scraper, opts ...TableauStepOption) *TableauStep {
	s := &TableauStep{
		fetcher: fetcher,
		client:  client,
		scraper: sc,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *TableauStep) Name() string {
	return "tableau"
}

// Do executes the bracket extraction step.
func (s *TableauStep) Do(ctx context.Context, rep *model.ExportReport) error {
	for i := range rep.Tournament.Events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event := rep.Tournament.Events[i]

		pageHTML, err := eventPageHTML(ctx, s.fetcher, rep, event.URL)
		if err != nil {
			return err
		}

		page, err := s.scraper.ParseEventPage(pageHTML)
		if err != nil {
			return fmt.Errorf("failed to parse event %s: %w", event.ID, err)
		}

		if page.TableauURL == "" {
			s.logger.Debug("event has no bracket", "event", event.Name)
			continue
		}
		roundID := ftl.LastPathSegment(page.TableauURL)

		trees, err := s.client.FetchTrees(ctx, event.ID, roundID)
		if err != nil {
			return fmt.Errorf("failed to list bracket trees for event %s: %w", event.Name, err)
		}

		if len(trees) == 0 {
			if err := s.renderFallback(ctx, rep, event, page.TableauURL); err != nil {
				return err
			}
			continue
		}

		entries := 0
		for _, tree := range trees {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			fragment, err := s.client.FetchTableHTML(ctx, event.ID, roundID, tree)
			if err != nil {
				return fmt.Errorf("failed to fetch bracket tree %s of event %s: %w", tree.GUID, event.Name, err)
			}

			parsed, err := s.scraper.ParseTableau(fragment, event.Name)
			if err != nil {
				// A tree without a table holds rounds still being fenced.
				if errors.Is(err, scraper.ErrNoTableauTable) {
					s.logger.Debug("bracket tree has no table yet",
						"event", event.Name,
						"tree", tree.GUID,
					)
					continue
				}
				return fmt.Errorf("failed to parse bracket tree %s of event %s: %w", tree.GUID, event.Name, err)
			}

			rep.TableauEntries = append(rep.TableauEntries, parsed...)
			entries += len(parsed)
		}

		s.logger.Debug("bracket extracted",
			"event", event.Name,
			"trees", len(trees),
			"entries", entries,
		)
	}

	s.logger.Info("brackets extracted", "entries", len(rep.TableauEntries))

	return nil
}

// renderFallback renders the bracket page in a wide viewport and parses
// the whole table out of the rendered DOM.
func (s *TableauStep) renderFallback(ctx context.Context, rep *model.ExportReport, event model.Event, tableauURL string) error {
	pageHTML, err := s.fetcher.FetchHTMLWide(ctx, tableauURL)
	if err != nil {
		return fmt.Errorf("failed to render bracket page for event %s: %w", event.Name, err)
	}
	rep.AddPage(model.NewPage(tableauURL, pageHTML))

	parsed, err := s.scraper.ParseTableau(pageHTML, event.Name)
	if err != nil {
		if errors.Is(err, scraper.ErrNoTableauTable) {
			s.logger.Warn("bracket page rendered without a table", "event", event.Name)
			return nil
		}
		return fmt.Errorf("failed to parse bracket page for event %s: %w", event.Name, err)
	}

	rep.TableauEntries = append(rep.TableauEntries, parsed...)
	return nil
}

// WriteStep writes the extracted rows as CSV files named after the
// tournament.
type WriteStep struct {
	// dir is the directory the CSV files are written into.
	dir string

	// logger for structured logging.
	logger *slog.Logger
}

// WriteStepOption configures a WriteStep.
type WriteStepOption func(*WriteStep)

// WithWriteLogger sets a custom logger for the write step.
func WithWriteLogger(logger *slog.Logger) WriteStepOption {
	return func(s *WriteStep) {
		s.logger = logger
	}
}

// NewWriteStep creates a new CSV writing step.
func NewWriteStep(dir string, opts ...WriteStepOption) *WriteStep {
	s := &WriteStep{
		dir:    dir,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do executes the CSV writing step.
func (s *WriteStep) Do(_ context.Context, rep *model.ExportReport) error {
	if !rep.HasRows() {
		s.logger.Warn("no rows extracted, nothing to write",
			"tournament", rep.Tournament.Name,
		)
		return nil
	}

	stem := scraper.SanitizeFilename(rep.Tournament.Name)
	if stem == "" {
		stem = "tournament"
	}

	files, err := report.NewCSVWriter(s.dir, stem).WriteFiles(rep)
	if err != nil {
		return fmt.Errorf("failed to write CSV files: %w", err)
	}
	rep.OutputFiles = append(rep.OutputFiles, files...)

	s.logger.Info("CSV files written",
		"dir", s.dir,
		"files", len(files),
	)

	return nil
}

// PersistStep records the finished export in the local SQLite history
// and, when configured, mirrors a summary into PostgreSQL.
//
// Design decision: The mirror write is best effort. The history insert
// failing is an error because losing local history silently defeats its
// purpose, but an unreachable team database should never fail an export
// whose CSV files are already on disk.
type PersistStep struct {
	// history is the local SQLite export history, or nil to skip.
	history *database.HistoryDB

	// mirror is the optional PostgreSQL summary mirror, or nil to skip.
	mirror *database.Mirror

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new history persistence step.
func NewPersistStep(history *database.HistoryDB, mirror *database.Mirror, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		history: history,
		mirror:  mirror,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the history persistence step.
func (s *PersistStep) Do(ctx context.Context, rep *model.ExportReport) error {
	if s.history == nil && s.mirror == nil {
		s.logger.Debug("history disabled, skipping persistence")
		return nil
	}

	if s.history != nil {
		id, err := s.history.SaveExport(ctx, rep)
		if err != nil {
			return fmt.Errorf("failed to record export history: %w", err)
		}
		s.logger.Debug("export recorded", "export_id", id)
	}

	if s.mirror != nil {
		if err := s.mirror.SaveSummary(ctx, model.NewSummaryReport(rep)); err != nil {
			s.logger.Warn("failed to mirror export summary", "error", err)
		}
	}

	return nil
}

// ExportDeps bundles the shared clients the export steps draw on. The
// browser session and fragment client are created once per process and
// shared across pipelines; see cmd/ftlexport.
type ExportDeps struct {
	// Fetcher renders pages in the shared browser session.
	Fetcher PageFetcher

	// Client fetches pool and bracket fragments over plain HTTP.
	Client FragmentClient

	// Scraper extracts data from rendered HTML.
	Scraper *scraper.Scraper

	// History is the local SQLite export history, or nil to skip.
	History *database.HistoryDB

	// Mirror is the optional PostgreSQL summary mirror, or nil to skip.
	Mirror *database.Mirror
}

// ExportPipeline creates a pipeline with the stages the configuration
// selects, in extraction order.
//
// Design decision: Stage selection lives here rather than in each
// command because:
// 1. Every command builds the same ordering with different toggles
// 2. Schedule and event rendering always run; they feed every exporter
// 3. Writing precedes persisting so history records the output files
func ExportPipeline(deps ExportDeps, cfg *config.Config, pipelineOpts ...Option) *Pipeline {
	p := New(pipelineOpts...)

	p.AddSteps(
		NewTournamentStep(deps.Fetcher, deps.Scraper),
		NewScheduleStep(deps.Fetcher, deps.Scraper),
	)

	if cfg.ExportResults {
		p.AddStep(NewResultsStep(deps.Fetcher, deps.Scraper))
	}
	if cfg.ExportPools {
		p.AddStep(NewPoolsStep(deps.Fetcher, deps.Client, deps.Scraper,
			WithPoolPolling(cfg.PoolPollAttempts, cfg.PoolPollInterval),
		))
	}
	if cfg.ExportTableau {
		p.AddStep(NewTableauStep(deps.Fetcher, deps.Client, deps.Scraper))
	}

	p.AddStep(NewWriteStep(cfg.OutputDir))

	if deps.History != nil || deps.Mirror != nil {
		p.AddStep(NewPersistStep(deps.History, deps.Mirror))
	}

	return p
}
