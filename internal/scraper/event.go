package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minResultCells is the number of leading cells a classification row must
// carry: place, fencer, club, region.
const minResultCells = 4

// EventPage holds everything one rendered event page yields: the title
// block, the final classification, and the links to the event's pool and
// direct elimination rounds.
type EventPage struct {
	// Name is the event title, empty when the page renders none.
	Name string

	// Time is the scheduled start time text.
	Time string

	// PoolsURL is the absolute URL of the pool scores page, empty when
	// the event has no pool round.
	PoolsURL string

	// TableauURL is the absolute URL of the direct elimination page,
	// empty when the event has no bracket.
	TableauURL string

	// Placements is the final classification in page order.
	Placements []Placement
}

// Placement is one row of an event's final classification.
type Placement struct {
	Place  string
	Fencer string
	Club   string
	Region string
}

// ParseEventPage extracts the title block, final classification, and
// round links from a rendered event page. Classification rows narrower
// than four cells are skipped.
func (s *Scraper) ParseEventPage(pageHTML string) (*EventPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse event page: %w", err)
	}

	page := &EventPage{
		Name: CleanText(doc.Find(s.selectors.EventName).First().Text()),
		Time: CleanText(doc.Find(s.selectors.EventTime).First().Text()),
	}

	if href, ok := doc.Find(s.selectors.PoolLink).First().Attr("href"); ok {
		page.PoolsURL = s.resolve(href)
	}
	if href, ok := doc.Find(s.selectors.TableauLink).First().Attr("href"); ok {
		page.TableauURL = s.resolve(href)
	}

	doc.Find(s.selectors.ResultRow).Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) < minResultCells {
			return
		}
		page.Placements = append(page.Placements, Placement{
			Place:  cells[0],
			Fencer: cells[1],
			Club:   cells[2],
			Region: cells[3],
		})
	})

	return page, nil
}
