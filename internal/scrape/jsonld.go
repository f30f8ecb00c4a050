package scrape

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
)

// jsonldEvent mirrors the schema.org Event fields the sources publish.
// Structured data is preferred over HTML scraping wherever present.
type jsonldEvent struct {
	Type        string          `json:"@type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	URL         string          `json:"url"`
	Image       json.RawMessage `json:"image"`
	Location    jsonldLocation  `json:"location"`
	Offers      json.RawMessage `json:"offers"`
}

type jsonldLocation struct {
	Name    string          `json:"name"`
	Address json.RawMessage `json:"address"`
	Geo     struct {
		Latitude  json.Number `json:"latitude"`
		Longitude json.Number `json:"longitude"`
	} `json:"geo"`
}

// extractJSONLDEvents collects Event objects from every
// application/ld+json script, including lists and EventSeries wrappers.
func extractJSONLDEvents(root *html.Node) []jsonldEvent {
	var events []jsonldEvent

	scripts := findAll(root, func(n *html.Node) bool {
		return isTag(n, "script") && attrVal(n, "type") == "application/ld+json"
	})

	for _, script := range scripts {
		if script.FirstChild == nil {
			continue
		}
		raw := script.FirstChild.Data
		events = append(events, decodeJSONLD([]byte(raw))...)
	}
	return events
}

func decodeJSONLD(raw []byte) []jsonldEvent {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return nil
	}

	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil
		}
		var out []jsonldEvent
		for _, item := range list {
			out = append(out, decodeJSONLD(item)...)
		}
		return out
	}

	var ev jsonldEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil
	}
	switch ev.Type {
	case "Event":
		return []jsonldEvent{ev}
	case "EventSeries":
		var series struct {
			Event json.RawMessage `json:"event"`
		}
		if err := json.Unmarshal(raw, &series); err != nil || len(series.Event) == 0 {
			return nil
		}
		return decodeJSONLD(series.Event)
	}
	return nil
}

// candidate converts a structured event to a raw Candidate; the
// normalizer still owns date parsing and category mapping.
func (ev jsonldEvent) candidate() Candidate {
	c := Candidate{
		Title:       ev.Name,
		Description: ev.Description,
		DateText:    ev.StartDate,
		EndDateText: ev.EndDate,
		Venue:       ev.Location.Name,
		Location:    ev.Location.Name,
		Address:     jsonldAddress(ev.Location.Address),
		ExternalURL: ev.URL,
		ImageURL:    jsonldImage(ev.Image),
	}
	if lat, err := ev.Location.Geo.Latitude.Float64(); err == nil && lat != 0 {
		if lng, err := ev.Location.Geo.Longitude.Float64(); err == nil && lng != 0 {
			c.Latitude, c.Longitude = &lat, &lng
		}
	}
	return c
}

// jsonldAddress accepts either a plain string or a PostalAddress object.
func jsonldAddress(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var addr struct {
		StreetAddress   string `json:"streetAddress"`
		AddressLocality string `json:"addressLocality"`
		PostalCode      string `json:"postalCode"`
	}
	if err := json.Unmarshal(raw, &addr); err != nil {
		return ""
	}
	parts := []string{}
	for _, p := range []string{addr.StreetAddress, addr.AddressLocality, addr.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// jsonldImage accepts a string, a list of strings, or an ImageObject.
func jsonldImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.URL
	}
	return ""
}

// jsonldPrice pulls a display price out of an offers block when present.
func jsonldPrice(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var offer struct {
		Price         json.Number `json:"price"`
		PriceCurrency string      `json:"priceCurrency"`
	}
	if err := json.Unmarshal(raw, &offer); err != nil {
		var offers []json.RawMessage
		if err := json.Unmarshal(raw, &offers); err != nil || len(offers) == 0 {
			return ""
		}
		return jsonldPrice(offers[0])
	}
	if offer.Price == "" {
		return ""
	}
	if f, err := offer.Price.Float64(); err == nil && f == 0 {
		return "Free"
	}
	cur := offer.PriceCurrency
	if cur == "" {
		cur = "SGD"
	}
	return cur + " " + offer.Price.String()
}
