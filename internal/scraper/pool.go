package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pistekit/ftlexport/internal/model"
)

// Pool detail rows are told apart by td count. A bout order line has
// exactly six cells. A pool sheet line has the fencer and position cells
// in front, one score cell per pool position, and a six cell summary
// block behind, so its pool size is the cell count minus eight.
const (
	boutOrderCells     = 6
	sheetOverheadCells = 8
)

// PoolContext carries the identity stamped onto every row parsed from one
// pool detail fragment. The fragment names neither its event nor its
// pool, so the caller supplies both.
type PoolContext struct {
	// Tournament, Level, Sex, and Weapon describe the event the pool
	// belongs to, parsed from the schedule and event pages.
	Tournament string
	Level      string
	Sex        string
	Weapon     string

	// Event is the full event title.
	Event string

	// PoolID is the pool GUID the fragment was fetched for.
	PoolID string
}

// ParsePool extracts pool sheet lines and bout order lines from one pool
// detail fragment. Rows are classified by cell count; anything narrower
// than a bout order line is layout noise and is dropped.
func (s *Scraper) ParsePool(fragmentHTML string, pc PoolContext) ([]model.PoolSheetRow, []model.PoolBout, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragmentHTML))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse pool %s: %w", pc.PoolID, err)
	}

	var (
		sheets []model.PoolSheetRow
		bouts  []model.PoolBout
	)

	doc.Find(s.selectors.PoolRow).Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		switch {
		case len(cells) == boutOrderCells:
			bouts = append(bouts, model.PoolBout{
				Event:         pc.Event,
				PoolID:        pc.PoolID,
				RightPosition: cells[0],
				RightFencer:   cells[1],
				RightScore:    cells[2],
				LeftScore:     cells[3],
				LeftFencer:    cells[4],
				LeftPosition:  cells[5],
			})
		case len(cells) > boutOrderCells:
			if sheet, ok := parseSheetLine(cells, pc); ok {
				sheets = append(sheets, sheet)
			}
		}
	})

	return sheets, bouts, nil
}

// parseSheetLine builds a pool sheet row from its cell texts. The cell at
// the fencer's own pool position sits on the sheet diagonal and is always
// blanked. Lines too narrow to hold a bout score are rejected.
func parseSheetLine(cells []string, pc PoolContext) (model.PoolSheetRow, bool) {
	poolSize := len(cells) - sheetOverheadCells
	if poolSize < 1 {
		return model.PoolSheetRow{}, false
	}

	bouts := make([]string, poolSize)
	copy(bouts, cells[2:2+poolSize])
	if pos, err := strconv.Atoi(cells[1]); err == nil && pos >= 1 && pos <= poolSize {
		bouts[pos-1] = ""
	}

	n := len(cells)
	return model.PoolSheetRow{
		Tournament:        pc.Tournament,
		Level:             pc.Level,
		Sex:               pc.Sex,
		Weapon:            pc.Weapon,
		PoolID:            pc.PoolID,
		Fencer:            cells[0],
		Position:          cells[1],
		Bouts:             bouts,
		Victories:         cells[n-5],
		VictoriesPerMatch: cells[n-4],
		TouchesScored:     cells[n-3],
		TouchesReceived:   cells[n-2],
		Indicator:         cells[n-1],
	}, true
}
