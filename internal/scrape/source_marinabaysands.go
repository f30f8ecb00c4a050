package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

const marinaBaySandsBase = "https://www.marinabaysands.com"

// Coordinates of the resort itself; every listing shares the venue.
var mbsLat, mbsLng = 1.2834, 103.8607

type MarinaBaySandsParser struct{}

func (p *MarinaBaySandsParser) Name() string { return "marinabaysands" }

func (p *MarinaBaySandsParser) Pages() []string {
	return []string{
		marinaBaySandsBase + "/entertainment/events.html",
		marinaBaySandsBase + "/entertainment/concerts-shows.html",
		marinaBaySandsBase + "/museums-exhibitions.html",
		marinaBaySandsBase + "/dining/events.html",
		marinaBaySandsBase + "/sands-expo-convention-centre/events.html",
	}
}

func (p *MarinaBaySandsParser) Parse(body []byte, pageURL string) ([]Candidate, int, error) {
	root, err := parseHTML(body)
	if err != nil {
		return nil, 0, &ParseError{Source: p.Name(), Reason: err.Error()}
	}

	cards := findAll(root, func(n *html.Node) bool {
		return classContains(n, "event") || classContains(n, "show") ||
			attrVal(n, "data-component") == "event"
	})

	var out []Candidate
	skipped := 0
	for _, card := range cards {
		title := headingText(card)
		if len(title) < 3 {
			skipped++
			continue
		}
		lat, lng := mbsLat, mbsLng
		out = append(out, Candidate{
			Title:           title,
			Description:     classText(card, "description", "summary", "copy"),
			DateText:        classText(card, "date", "when"),
			TimeText:        classText(card, "time"),
			Location:        "Marina Bay, Singapore",
			Venue:           mbsVenue(card),
			Address:         "10 Bayfront Avenue, Singapore 018956",
			Latitude:        &lat,
			Longitude:       &lng,
			CategoryHint:    mbsCategoryHint(pageURL),
			PriceInfo:       classText(card, "price", "ticket"),
			AgeRestrictions: classText(card, "age", "rating"),
			ExternalURL:     absoluteURL(marinaBaySandsBase, firstLinkHref(card)),
			ImageURL:        absoluteURL(marinaBaySandsBase, firstImageSrc(card)),
		})
	}
	return out, skipped, nil
}

func mbsVenue(card *html.Node) string {
	if v := classText(card, "venue", "theatre", "hall"); v != "" {
		return v + ", Marina Bay Sands"
	}
	return "Marina Bay Sands"
}

func mbsCategoryHint(pageURL string) string {
	switch {
	case strings.Contains(pageURL, "concerts"):
		return "music"
	case strings.Contains(pageURL, "museums"):
		return "arts"
	case strings.Contains(pageURL, "dining"):
		return "dining"
	case strings.Contains(pageURL, "convention"):
		return "conference"
	default:
		return "entertainment"
	}
}
