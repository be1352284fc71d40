package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pistekit/ftlexport/internal/config"
	"github.com/pistekit/ftlexport/internal/ftl"
	"github.com/pistekit/ftlexport/internal/model"
)

// Scraper extracts tournament, event, pool, and bracket data from
// FencingTimeLive HTML. It holds the CSS selectors to use and the base
// URL for resolving the relative links the site puts in data-href and
// href attributes.
type Scraper struct {
	base      *url.URL
	selectors config.SelectorSet
}

// NewScraper creates a Scraper that resolves relative links against baseURL.
func NewScraper(baseURL string, selectors config.SelectorSet) (*Scraper, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL %q: %w", baseURL, err)
	}
	return &Scraper{base: base, selectors: selectors}, nil
}

// ParseSchedule extracts the tournament name and its event list from a
// rendered schedule page. Rows without a usable data-href are skipped.
// A missing name element yields model.UnknownTournamentName.
func (s *Scraper) ParseSchedule(pageHTML string) (string, []model.Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse schedule page: %w", err)
	}

	name := CleanText(doc.Find(s.selectors.TournamentName).First().Text())
	if name == "" {
		name = model.UnknownTournamentName
	}

	var events []model.Event
	doc.Find(s.selectors.EventRow).Each(func(_ int, row *goquery.Selection) {
		href, ok := row.Attr("data-href")
		if !ok {
			return
		}
		eventURL := s.resolve(href)
		if eventURL == "" {
			return
		}
		events = append(events, model.Event{
			ID:  ftl.LastPathSegment(eventURL),
			URL: eventURL,
		})
	})

	return name, events, nil
}

// resolve turns a possibly relative href into an absolute URL.
// Empty and unparseable hrefs resolve to "".
func (s *Scraper) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return s.base.ResolveReference(ref).String()
}

// cellTexts returns the cleaned text of every td cell in a row.
func cellTexts(row *goquery.Selection) []string {
	var texts []string
	row.Find("td").Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, CleanText(cell.Text()))
	})
	return texts
}
