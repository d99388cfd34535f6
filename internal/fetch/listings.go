package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// listingSelectors match the class and data-attribute conventions of
// common career page templates, checked in order.
var listingSelectors = []string{
	".job-title",
	".job-listing",
	".position-title",
	".opening-title",
	".career-title",
	"[data-job-title]",
	"[data-testid='job-title']",
	"[data-qa='posting-name']",
}

const (
	minTitleLength = 5
	maxTitleLength = 100
)

// ExtractJobListings harvests likely job titles straight from the DOM
// using common career page markup. It is a heuristic complement to LLM
// analysis, not a replacement: the output is raw candidate strings.
func ExtractJobListings(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var titles []string
	seen := make(map[string]bool)
	add := func(raw string) {
		title := strings.Join(strings.Fields(raw), " ")
		if len(title) < minTitleLength || len(title) > maxTitleLength {
			return
		}
		key := strings.ToLower(title)
		if seen[key] {
			return
		}
		seen[key] = true
		titles = append(titles, title)
	}

	for _, selector := range listingSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if attr, ok := sel.Attr("data-job-title"); ok && strings.TrimSpace(attr) != "" {
				add(attr)
				return
			}
			add(sel.Text())
		})
	}
	return titles
}
