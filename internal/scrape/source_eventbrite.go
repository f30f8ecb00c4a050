package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

const eventbriteBase = "https://www.eventbrite.sg"

// EventbriteParser prefers the JSON-LD blocks Eventbrite embeds in its
// search pages, falling back to card markup when none are present.
type EventbriteParser struct{}

func (p *EventbriteParser) Name() string { return "eventbrite" }

func (p *EventbriteParser) Pages() []string {
	search := eventbriteBase + "/d/singapore--singapore/events/"
	return []string{
		search,
		search + "?q=music",
		search + "?q=business",
		search + "?q=food+drink",
		search + "?q=arts",
		search + "?q=sports",
		search + "?q=family",
	}
}

func (p *EventbriteParser) Parse(body []byte, pageURL string) ([]Candidate, int, error) {
	root, err := parseHTML(body)
	if err != nil {
		return nil, 0, &ParseError{Source: p.Name(), Reason: err.Error()}
	}

	var out []Candidate
	skipped := 0

	for _, ev := range extractJSONLDEvents(root) {
		if len(ev.Name) < 3 || ev.StartDate == "" {
			skipped++
			continue
		}
		c := ev.candidate()
		c.CategoryHint = queryHint(pageURL)
		c.PriceInfo = jsonldPrice(ev.Offers)
		out = append(out, c)
	}
	if len(out) > 0 {
		return out, skipped, nil
	}

	// HTML fallback for pages without structured data.
	cards := findAll(root, func(n *html.Node) bool {
		return classContains(n, "event-card") || classContains(n, "eventcard") ||
			attrVal(n, "data-testid") == "event-card"
	})
	for _, card := range cards {
		title := headingText(card)
		if len(title) < 3 {
			skipped++
			continue
		}
		out = append(out, Candidate{
			Title:        title,
			Description:  classText(card, "description", "summary"),
			DateText:     classText(card, "date"),
			Location:     classText(card, "location", "venue"),
			Venue:        classText(card, "venue"),
			CategoryHint: queryHint(pageURL),
			PriceInfo:    classText(card, "price"),
			ExternalURL:  absoluteURL(eventbriteBase, firstLinkHref(card)),
			ImageURL:     absoluteURL(eventbriteBase, firstImageSrc(card)),
		})
	}
	return out, skipped, nil
}

func queryHint(pageURL string) string {
	for _, q := range []string{"music", "business", "arts", "sports", "family"} {
		if strings.Contains(pageURL, "?q="+q) {
			return q
		}
	}
	if strings.Contains(pageURL, "food") {
		return "dining"
	}
	return ""
}
