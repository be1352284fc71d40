package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pistekit/ftlexport/internal/model"
)

// Bracket cell class markers. The site renders fencer cells with several
// class variants that all share the tbb prefix, and score cells with
// tscoref, so both are matched by substring.
const (
	fencerCellClass = "tbb"
	scoreCellClass  = "tscoref"
)

// ParseTableau extracts one row per fencer appearance from bracket markup,
// either a full rendered tableau page or a table fragment from the tree
// endpoints. eventTitle is stamped onto every entry. A score cell belongs
// to the bout fenced from the nearest preceding fencer cell, so scores and
// referees attach to the most recent entry.
func (s *Scraper) ParseTableau(pageHTML, eventTitle string) ([]model.TableauEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tableau: %w", err)
	}

	tables := doc.Find(s.selectors.TableauTable)
	if tables.Length() == 0 {
		return nil, ErrNoTableauTable
	}

	var entries []model.TableauEntry
	tables.Each(func(_ int, table *goquery.Selection) {
		entries = appendTableEntries(entries, table, eventTitle)
	})

	return entries, nil
}

// appendTableEntries parses one bracket table. The header row names the
// round of each column; the cells below map to rounds by position.
func appendTableEntries(entries []model.TableauEntry, table *goquery.Selection, eventTitle string) []model.TableauEntry {
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return entries
	}

	var rounds []string
	rows.First().Find("th").Each(func(_ int, th *goquery.Selection) {
		rounds = append(rounds, CleanText(th.Text()))
	})

	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		row.Find("td").Each(func(col int, cell *goquery.Selection) {
			class, _ := cell.Attr("class")
			switch {
			case strings.Contains(class, fencerCellClass):
				round := ""
				if col < len(rounds) {
					round = rounds[col]
				}
				entries = append(entries, parseFencerCell(cell, eventTitle, round))
			case strings.Contains(class, scoreCellClass):
				if len(entries) == 0 {
					return
				}
				score, referee := parseScoreCell(cell)
				if score != "" {
					entries[len(entries)-1].Score = score
				}
				if referee != "" {
					entries[len(entries)-1].Referee = referee
				}
			}
		})
	})

	return entries
}

// parseFencerCell reads one fencer appearance. Seeds render as "(62) "
// beside the name; the affiliation renders as "CLUB / Region / CAN" and
// may carry fewer parts for foreign or unattached fencers.
func parseFencerCell(cell *goquery.Selection, eventTitle, round string) model.TableauEntry {
	entry := model.TableauEntry{
		Event:     eventTitle,
		Round:     round,
		Seed:      strings.Trim(CleanText(cell.Find(".tseed").First().Text()), "()"),
		LastName:  CleanText(cell.Find(".tcln").First().Text()),
		FirstName: CleanText(cell.Find(".tcfn").First().Text()),
	}

	if aff := CleanText(cell.Find(".tcaff").First().Text()); aff != "" {
		parts := strings.Split(aff, "/")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		entry.Club = parts[0]
		if len(parts) > 1 {
			entry.Region = parts[1]
		}
		if len(parts) > 2 {
			entry.Country = parts[2]
		}
	}

	return entry
}

// parseScoreCell splits a score cell into the bout score and the referee
// line. The referee renders inside a .tref child prefixed with "Ref";
// removing it from a detached copy leaves the bare score text.
func parseScoreCell(cell *goquery.Selection) (score, referee string) {
	sco := cell.Find(".tsco").First()
	if sco.Length() == 0 {
		return "", ""
	}

	referee = strings.TrimPrefix(CleanText(sco.Find(".tref").First().Text()), "Ref ")

	own := sco.Clone()
	own.Find(".tref").Remove()
	score = CleanText(own.Text())
	return score, referee
}
