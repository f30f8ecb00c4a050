package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

const visitSingaporeBase = "https://www.visitsingapore.com"

// VisitSingaporeParser covers the tourism board's listing pages. The
// markup varies between sections, so it matches cards by class keywords.
type VisitSingaporeParser struct{}

func (p *VisitSingaporeParser) Name() string { return "visitsingapore" }

func (p *VisitSingaporeParser) Pages() []string {
	return []string{
		visitSingaporeBase + "/see-do-singapore/events/",
		visitSingaporeBase + "/festivals-events-singapore/",
		visitSingaporeBase + "/see-do-singapore/entertainment/concerts-gigs/",
		visitSingaporeBase + "/see-do-singapore/nightlife/",
		visitSingaporeBase + "/see-do-singapore/food-drink/",
	}
}

func (p *VisitSingaporeParser) Parse(body []byte, pageURL string) ([]Candidate, int, error) {
	root, err := parseHTML(body)
	if err != nil {
		return nil, 0, &ParseError{Source: p.Name(), Reason: err.Error()}
	}

	cards := findAll(root, func(n *html.Node) bool {
		return classContains(n, "event") || classContains(n, "listing") ||
			classContains(n, "card") || classContains(n, "attraction")
	})

	var out []Candidate
	skipped := 0
	for _, card := range cards {
		title := headingText(card)
		if len(title) < 3 {
			skipped++
			continue
		}
		c := Candidate{
			Title:            title,
			Description:      classText(card, "description", "summary", "text"),
			ShortDescription: truncate(classText(card, "description", "summary", "text"), 200),
			DateText:         classText(card, "date", "when"),
			TimeText:         classText(card, "time"),
			Location:         classText(card, "location", "venue", "where"),
			Venue:            classText(card, "venue"),
			CategoryHint:     categoryHintFromPath(pageURL),
			PriceInfo:        classText(card, "price"),
			ExternalURL:      absoluteURL(visitSingaporeBase, firstLinkHref(card)),
			ImageURL:         absoluteURL(visitSingaporeBase, firstImageSrc(card)),
		}
		if c.Location == "" {
			c.Location = "Singapore"
		}
		out = append(out, c)
	}
	return out, skipped, nil
}

// categoryHintFromPath maps listing sections onto category hints the
// normalizer understands.
func categoryHintFromPath(pageURL string) string {
	switch {
	case strings.Contains(pageURL, "concerts"):
		return "music"
	case strings.Contains(pageURL, "nightlife"):
		return "nightlife"
	case strings.Contains(pageURL, "food"):
		return "dining"
	case strings.Contains(pageURL, "festivals"):
		return "festivals"
	case strings.Contains(pageURL, "arts"):
		return "arts"
	default:
		return ""
	}
}
