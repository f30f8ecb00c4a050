package scrape

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/db"
	"github.com/sakthiish12/TodayAtSG/internal/shared/geo"

	"github.com/agnivade/levenshtein"
	"github.com/redis/go-redis/v9"
)

// Title similarity at or above this, on the same date at the same or a
// nearby venue, counts as a duplicate. Ties resolve to duplicate: a
// missed listing pollutes less than a near-duplicate row.
const similarityThreshold = 0.8

// Venues closer than this are "the same place" for dedup purposes.
const nearVenueKm = 1.0

const seenSetKey = "scrape:seen"
const seenSetTTL = 14 * 24 * time.Hour

// Deduplicator screens candidates against the events already stored for
// the same date, plus a redis-backed hash set of recently seen listings.
type Deduplicator struct {
	db    db.Querier
	redis *redis.Client
	seen  map[string]bool
}

func NewDeduplicator(q db.Querier, rdb *redis.Client) *Deduplicator {
	return &Deduplicator{db: q, redis: rdb, seen: map[string]bool{}}
}

// Check returns the existing event id when rec is a duplicate.
func (d *Deduplicator) Check(ctx context.Context, rec Record) (string, bool, error) {
	hash := candidateHash(rec)
	if d.seen[hash] {
		return "", true, nil
	}
	if d.redis != nil {
		// Best-effort cross-run screen; redis being down never blocks a run.
		if isMember, err := d.redis.SIsMember(ctx, seenSetKey, hash).Result(); err == nil && isMember {
			d.seen[hash] = true
			return "", true, nil
		}
	}

	id, dup, err := d.checkStore(ctx, rec)
	if err != nil {
		return "", false, err
	}
	if !dup {
		d.seen[hash] = true
	}
	return id, dup, nil
}

// MarkPersisted records rec in the cross-run seen set. It is called only
// after the writer has stored the record; a candidate whose write failed
// must stay eligible for the next run.
func (d *Deduplicator) MarkPersisted(ctx context.Context, rec Record) {
	if d.redis == nil {
		return
	}
	if err := d.redis.SAdd(ctx, seenSetKey, candidateHash(rec)).Err(); err == nil {
		d.redis.Expire(ctx, seenSetKey, seenSetTTL)
	}
}

func (d *Deduplicator) checkStore(ctx context.Context, rec Record) (string, bool, error) {
	rows, err := d.db.Query(ctx, `
		SELECT id, title, venue, latitude, longitude
		FROM events
		WHERE date = $1 AND is_active = TRUE
	`, rec.Date)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	candTitle := normalizeTitle(rec.Title)
	for rows.Next() {
		var id, title, venue string
		var lat, lng *float64
		if err := rows.Scan(&id, &title, &venue, &lat, &lng); err != nil {
			return "", false, err
		}

		existingTitle := normalizeTitle(title)
		if existingTitle == candTitle {
			return id, true, nil
		}
		if titleSimilarity(candTitle, existingTitle) >= similarityThreshold &&
			sameOrNearVenue(rec, venue, lat, lng) {
			return id, true, nil
		}
	}
	return "", false, rows.Err()
}

func candidateHash(rec Record) string {
	content := normalizeTitle(rec.Title) + "|" + rec.Date.Format("2006-01-02") + "|" + normalizeTitle(rec.Venue)
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// titleSimilarity is a normalized levenshtein ratio in [0,1].
func titleSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func sameOrNearVenue(rec Record, venue string, lat, lng *float64) bool {
	candVenue := normalizeTitle(rec.Venue)
	existingVenue := normalizeTitle(venue)
	if candVenue != "" && existingVenue != "" {
		if strings.Contains(candVenue, existingVenue) || strings.Contains(existingVenue, candVenue) {
			return true
		}
	}
	if rec.Latitude != nil && rec.Longitude != nil && lat != nil && lng != nil {
		return geo.HaversineKm(*rec.Latitude, *rec.Longitude, *lat, *lng) <= nearVenueKm
	}
	// No venue signal either way: resolve the tie as duplicate.
	return candVenue == "" && existingVenue == ""
}
