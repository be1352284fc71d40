package scraper

import "testing"

// TestParseEventPage tests extraction of the title block, round links, and
// final classification from a rendered event page.
func TestParseEventPage(t *testing.T) {
	t.Parallel()

	t.Run("full event page", func(t *testing.T) {
		t.Parallel()

		pageHTML := `<!DOCTYPE html>
<html><body>
<div class="desktop eventName">Senior Men's Épée</div>
<div class="desktop eventTime">Saturday, March 22, 2025 @ 9:00 AM</div>
<ul class="nav">
<li><a href="/pools/scores/AAA111/RID123">Pools</a></li>
<li><a href="/tableaus/scores/AAA111/TID456">Tableau</a></li>
</ul>
<table id="resultList">
<tbody>
<tr><td>1</td><td>BUDOVSKYI Borys</td><td>DYN</td><td>British Columbia</td></tr>
<tr><td>2</td><td>HU Ben</td><td>CFA</td><td>Ontario</td><td>extra cell</td></tr>
<tr><td>3T</td><td>NARROW Row</td><td>club</td></tr>
</tbody>
</table>
</body></html>`

		s := newTestScraper(t)
		page, err := s.ParseEventPage(pageHTML)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.Name != "Senior Men's Épée" {
			t.Errorf("expected event name, got %q", page.Name)
		}
		if page.Time != "Saturday, March 22, 2025 @ 9:00 AM" {
			t.Errorf("unexpected event time: %q", page.Time)
		}
		if page.PoolsURL != testBaseURL+"/pools/scores/AAA111/RID123" {
			t.Errorf("unexpected pools URL: %q", page.PoolsURL)
		}
		if page.TableauURL != testBaseURL+"/tableaus/scores/AAA111/TID456" {
			t.Errorf("unexpected tableau URL: %q", page.TableauURL)
		}

		if len(page.Placements) != 2 {
			t.Fatalf("expected 2 placements, got %d", len(page.Placements))
		}
		first := page.Placements[0]
		if first.Place != "1" || first.Fencer != "BUDOVSKYI Borys" || first.Club != "DYN" || first.Region != "British Columbia" {
			t.Errorf("unexpected first placement: %+v", first)
		}
		if page.Placements[1].Place != "2" {
			t.Errorf("expected second place row, got %+v", page.Placements[1])
		}
	})

	t.Run("event without rounds or results", func(t *testing.T) {
		t.Parallel()

		pageHTML := `<html><body>
<div class="desktop eventName">Y12 Mixed Foil</div>
</body></html>`

		s := newTestScraper(t)
		page, err := s.ParseEventPage(pageHTML)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.Name != "Y12 Mixed Foil" {
			t.Errorf("unexpected event name: %q", page.Name)
		}
		if page.Time != "" {
			t.Errorf("expected empty time, got %q", page.Time)
		}
		if page.PoolsURL != "" {
			t.Errorf("expected no pools URL, got %q", page.PoolsURL)
		}
		if page.TableauURL != "" {
			t.Errorf("expected no tableau URL, got %q", page.TableauURL)
		}
		if len(page.Placements) != 0 {
			t.Errorf("expected no placements, got %d", len(page.Placements))
		}
	})
}
