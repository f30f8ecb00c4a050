package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

const suntecCityBase = "https://www.sunteccity.com.sg"

var suntecLat, suntecLng = 1.2947, 103.8590

type SuntecCityParser struct{}

func (p *SuntecCityParser) Name() string { return "sunteccity" }

func (p *SuntecCityParser) Pages() []string {
	return []string{
		suntecCityBase + "/events/",
		suntecCityBase + "/whats-on/",
		suntecCityBase + "/happenings/",
		suntecCityBase + "/suntec-convention/events/",
	}
}

func (p *SuntecCityParser) Parse(body []byte, pageURL string) ([]Candidate, int, error) {
	root, err := parseHTML(body)
	if err != nil {
		return nil, 0, &ParseError{Source: p.Name(), Reason: err.Error()}
	}

	cards := findAll(root, func(n *html.Node) bool {
		return classContains(n, "event") || classContains(n, "happening") ||
			classContains(n, "promo") || classContains(n, "card")
	})

	var out []Candidate
	skipped := 0
	for _, card := range cards {
		title := headingText(card)
		if len(title) < 3 {
			skipped++
			continue
		}
		lat, lng := suntecLat, suntecLng
		out = append(out, Candidate{
			Title:        title,
			Description:  classText(card, "description", "summary"),
			DateText:     classText(card, "date", "period", "when"),
			TimeText:     classText(card, "time"),
			Location:     "City Hall, Singapore",
			Venue:        suntecVenue(card, pageURL),
			Address:      "3 Temasek Boulevard, Singapore 038983",
			Latitude:     &lat,
			Longitude:    &lng,
			CategoryHint: suntecHint(pageURL),
			PriceInfo:    classText(card, "price"),
			ExternalURL:  absoluteURL(suntecCityBase, firstLinkHref(card)),
			ImageURL:     absoluteURL(suntecCityBase, firstImageSrc(card)),
		})
	}
	return out, skipped, nil
}

func suntecVenue(card *html.Node, pageURL string) string {
	if v := classText(card, "venue", "hall", "level"); v != "" {
		return v + ", Suntec City"
	}
	if strings.Contains(pageURL, "convention") {
		return "Suntec Convention Centre"
	}
	return "Suntec City"
}

func suntecHint(pageURL string) string {
	if strings.Contains(pageURL, "convention") {
		return "conference"
	}
	return "shopping"
}
