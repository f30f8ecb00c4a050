package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

const onePABase = "https://www.onepa.gov.sg"

// CommunityCentresParser covers the People's Association listing of
// community centre programmes, which skew towards workshops and family
// activities.
type CommunityCentresParser struct{}

func (p *CommunityCentresParser) Name() string { return "community_centers" }

func (p *CommunityCentresParser) Pages() []string {
	return []string{
		onePABase + "/events",
		onePABase + "/circles/events",
	}
}

func (p *CommunityCentresParser) Parse(body []byte, pageURL string) ([]Candidate, int, error) {
	root, err := parseHTML(body)
	if err != nil {
		return nil, 0, &ParseError{Source: p.Name(), Reason: err.Error()}
	}

	cards := findAll(root, func(n *html.Node) bool {
		return classContains(n, "event") || classContains(n, "programme") ||
			classContains(n, "activity")
	})

	var out []Candidate
	skipped := 0
	for _, card := range cards {
		title := headingText(card)
		if len(title) < 3 {
			skipped++
			continue
		}
		venue := classText(card, "venue", "centre", "location")
		out = append(out, Candidate{
			Title:        title,
			Description:  classText(card, "description", "details"),
			DateText:     classText(card, "date", "when"),
			TimeText:     classText(card, "time"),
			Location:     ccLocation(venue),
			Venue:        venue,
			CategoryHint: ccHint(title),
			Tags:         []string{"community-center"},
			PriceInfo:    classText(card, "price", "fee"),
			ExternalURL:  absoluteURL(onePABase, firstLinkHref(card)),
			ImageURL:     absoluteURL(onePABase, firstImageSrc(card)),
		})
	}
	return out, skipped, nil
}

func ccLocation(venue string) string {
	if venue == "" {
		return "Singapore"
	}
	if strings.Contains(strings.ToLower(venue), "singapore") {
		return venue
	}
	return venue + ", Singapore"
}

// Community centre programmes rarely label categories; infer from title.
func ccHint(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "workshop") || strings.Contains(lower, "class") || strings.Contains(lower, "course"):
		return "education"
	case strings.Contains(lower, "fitness") || strings.Contains(lower, "zumba") || strings.Contains(lower, "yoga"):
		return "fitness"
	case strings.Contains(lower, "kids") || strings.Contains(lower, "family"):
		return "family"
	default:
		return ""
	}
}
