package scrape

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Normalizer turns raw candidates into canonical Event-shaped records:
// Singapore-format dates and times, the fixed category set, bounded
// string lengths. Anything it cannot repair fails with a
// *ValidationError naming the offending fields.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	loc, err := time.LoadLocation("Asia/Singapore")
	if err != nil {
		loc = time.FixedZone("SGT", 8*3600)
	}
	return &Normalizer{loc: loc, now: time.Now}
}

const (
	maxTitleLen = 255
	maxDescLen  = 2000
	maxShortLen = 500
)

var validCategories = map[string]bool{
	"concerts": true, "sports": true, "festivals": true, "exhibitions": true,
	"workshops": true, "family": true, "food": true, "nightlife": true,
	"theatre": true, "business": true, "general": true,
}

var categoryAliases = map[string]string{
	"music":         "concerts",
	"art":           "exhibitions",
	"arts":          "exhibitions",
	"dining":        "food",
	"entertainment": "general",
	"shopping":      "general",
	"fitness":       "sports",
	"health":        "workshops",
	"education":     "workshops",
	"networking":    "business",
	"conference":    "business",
}

// Default start times by category when the source gives none.
var defaultTimes = map[string]string{
	"concerts":  "20:00:00",
	"nightlife": "22:00:00",
	"theatre":   "20:00:00",
	"business":  "09:00:00",
	"workshops": "14:00:00",
	"family":    "10:00:00",
	"sports":    "18:00:00",
	"food":      "19:00:00",
}

var singaporeIndicators = []string{
	"singapore", "orchard", "marina bay", "sentosa", "jurong", "tampines",
	"woodlands", "yishun", "bedok", "clementi", "bukit", "toa payoh",
	"ang mo kio", "hougang", "sengkang", "pasir ris", "changi",
	"harbourfront", "bugis", "chinatown", "little india", "clarke quay",
	"raffles", "city hall", "suntec",
}

var tagPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Normalize validates and enriches one candidate. The returned error,
// when non-nil, is always a *ValidationError listing every bad field.
func (n *Normalizer) Normalize(c Candidate, source string) (Record, error) {
	var bad []string

	title := strings.TrimSpace(c.Title)
	if len(title) < 3 {
		bad = append(bad, "title")
	}
	title = truncate(title, maxTitleLen)

	eventDate, dateOK := n.parseDate(c.DateText)
	if !dateOK {
		bad = append(bad, "date")
	} else {
		today := n.today()
		if eventDate.Before(today.AddDate(0, 0, -1)) || eventDate.After(today.AddDate(2, 0, 0)) {
			bad = append(bad, "date")
		}
	}

	location := strings.TrimSpace(c.Location)
	if location == "" {
		location = strings.TrimSpace(c.Venue)
	}
	if !looksLikeSingapore(location + " " + c.Address) {
		bad = append(bad, "location")
	}

	if len(bad) > 0 {
		return Record{}, &ValidationError{Fields: bad}
	}

	category := normalizeCategory(c.CategoryHint)

	clock := parseClock(c.TimeText)
	if clock == "" {
		// ISO datetimes carry the time inside the date text.
		clock = clockFromDateText(c.DateText)
	}
	if clock == "" {
		clock = defaultTime(category)
	}

	rec := Record{
		Title:            title,
		Description:      truncate(strings.TrimSpace(c.Description), maxDescLen),
		ShortDescription: truncate(strings.TrimSpace(c.ShortDescription), maxShortLen),
		Date:             eventDate,
		Time:             clock,
		EndTime:          parseClock(c.EndTimeText),
		Location:         ensureSingaporeSuffix(location),
		Venue:            truncate(strings.TrimSpace(c.Venue), maxTitleLen),
		Address:          truncate(strings.TrimSpace(c.Address), maxShortLen),
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		CategorySlug:     category,
		Tags:             n.enrichTags(c, eventDate, clock),
		PriceInfo:        truncate(strings.TrimSpace(c.PriceInfo), 200),
		AgeRestrictions:  truncate(strings.TrimSpace(c.AgeRestrictions), 50),
		ExternalURL:      truncate(c.ExternalURL, maxShortLen),
		ImageURL:         truncate(c.ImageURL, maxShortLen),
		Source:           source,
		ExternalID:       c.ExternalID,
	}

	if end, ok := n.parseDate(c.EndDateText); ok {
		rec.EndDate = &end
	}
	if rec.ExternalID == "" {
		rec.ExternalID = dedupKey(source, rec.Title, rec.Date, rec.Venue)
	}
	return rec, nil
}

func (n *Normalizer) today() time.Time {
	now := n.now().In(n.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, n.loc)
}

var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/2006", // Singapore convention: day first
	"2/1/2006",
}

var ordinalPattern = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)

// parseDate accepts the date shapes the sources publish, including
// "2 – 5 Jan 2026" ranges where the full form is the last segment.
func (n *Normalizer) parseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	text = ordinalPattern.ReplaceAllString(text, "$1")

	for _, piece := range rangePieces(text) {
		for _, layout := range dateFormats {
			if t, err := time.ParseInLocation(layout, piece, n.loc); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, n.loc), true
			}
		}
	}
	return time.Time{}, false
}

func rangePieces(text string) []string {
	pieces := []string{text}
	for _, sep := range []string{" - ", " – ", " to ", " — "} {
		if strings.Contains(text, sep) {
			parts := strings.SplitN(text, sep, 2)
			// Try the start first; "2 - 5 Jan" only parses as the end.
			pieces = append(pieces, strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
			break
		}
	}
	return pieces
}

var clockFormats = []string{"15:04:05", "15:04", "3:04pm", "3pm", "3:04 pm", "3 pm"}

func parseClock(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, ".", ":")
	for _, layout := range clockFormats {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format("15:04:05")
		}
	}
	return ""
}

func clockFromDateText(text string) string {
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(text)); err == nil {
		return t.Format("15:04:05")
	}
	if t, err := time.Parse("2006-01-02T15:04:05", strings.TrimSpace(text)); err == nil {
		return t.Format("15:04:05")
	}
	return ""
}

func defaultTime(category string) string {
	if t, ok := defaultTimes[category]; ok {
		return t
	}
	return "19:00:00"
}

func normalizeCategory(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if validCategories[hint] {
		return hint
	}
	if mapped, ok := categoryAliases[hint]; ok {
		return mapped
	}
	return "general"
}

func looksLikeSingapore(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range singaporeIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func ensureSingaporeSuffix(location string) string {
	if location == "" {
		return "Singapore"
	}
	if strings.Contains(strings.ToLower(location), "singapore") {
		return location
	}
	return location + ", Singapore"
}

// enrichTags supplements source tags with time-of-day, weekday and
// price tags, filtered to slug shape, capped at 10.
func (n *Normalizer) enrichTags(c Candidate, date time.Time, clock string) []string {
	set := map[string]bool{}
	for _, t := range c.Tags {
		set[strings.ToLower(strings.TrimSpace(t))] = true
	}

	if len(clock) >= 2 {
		switch hour := clock[:2]; {
		case hour >= "06" && hour < "12":
			set["morning"] = true
		case hour >= "12" && hour < "17":
			set["afternoon"] = true
		case hour >= "17" && hour < "21":
			set["evening"] = true
		default:
			set["night"] = true
		}
	}

	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		set["weekend"] = true
	} else {
		set["weekday"] = true
	}

	price := strings.ToLower(c.PriceInfo)
	if strings.Contains(price, "free") || strings.Contains(price, "complimentary") {
		set["free"] = true
	}

	var tags []string
	for t := range set {
		if t != "" && len(t) <= 50 && tagPattern.MatchString(t) {
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	if len(tags) > 10 {
		tags = tags[:10]
	}
	return tags
}

// dedupKey derives a stable external id when the source provides none.
func dedupKey(source, title string, date time.Time, venue string) string {
	content := fmt.Sprintf("%s|%s|%s|%s", source, title, date.Format("2006-01-02"), venue)
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}
