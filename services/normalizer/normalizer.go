// Package normalizer converts loosely-schemed raw catalog records into
// canonical content items. Upstream scrapers disagree on field names, so
// every canonical field is coalesced from an ordered list of synonym keys,
// first defined value wins. The package is pure: no I/O, no globals, and
// deterministic for a given (input, now) pair.
package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"movieshows/models"

	"github.com/mozillazg/go-unidecode"
)

// Synonym chains per canonical field, in priority order.
var (
	idFields          = []string{"id", "_id", "videoId", "video_id", "uuid", "tmdb_id", "tmdbId", "imdb_id", "imdbId", "slug", "key"}
	titleFields       = []string{"title", "name", "original_title", "originalTitle", "label"}
	typeFields        = []string{"type", "kind", "category", "mediaType", "media_type"}
	seasonFields      = []string{"seasons", "number_of_seasons", "seasonCount", "season_count", "totalSeasons"}
	yearNumberFields  = []string{"year", "release_year", "releaseYear"}
	yearDateFields    = []string{"release_date", "first_air_date", "released", "date", "air_date"}
	thumbnailFields   = []string{"thumbnail", "poster", "posterUrl", "poster_url", "posterPath", "image", "img", "cover", "backdrop", "backdropUrl"}
	videoURLFields    = []string{"videoUrl", "video_url", "url", "src", "source", "stream", "streamUrl", "file", "link"}
	descriptionFields = []string{"description", "overview", "summary", "plot", "synopsis"}
	comingSoonFields  = []string{"comingSoon", "coming_soon", "upcoming", "unreleased"}
	addedDateFields   = []string{"addedDate", "added_at", "addedAt", "dateAdded", "created_at", "createdAt"}
)

// BuildID derives a stable identity for a raw record. The first present
// candidate identity field wins; records with no identity field get a
// synthesized "<title-slug>-<year>" id, degrading to "unknown-unknown".
// Calling BuildID twice on the same record always yields the same string.
func BuildID(raw map[string]any) string {
	for _, key := range idFields {
		if value, ok := raw[key]; ok {
			if s, ok := stringify(value); ok {
				return s
			}
		}
	}

	titlePart := "unknown"
	if title, ok := firstString(raw, titleFields); ok {
		if slugged := slug(title); slugged != "" {
			titlePart = slugged
		}
	}

	yearPart := "unknown"
	if year := extractYear(raw); year != 0 {
		yearPart = strconv.Itoa(year)
	}

	return titlePart + "-" + yearPart
}

// Item normalizes a single raw record. The second return value is false when
// the record carries no usable identity (neither an id field nor a title)
// and must be dropped.
func Item(raw map[string]any, now time.Time) (models.ContentItem, bool) {
	return normalizeRecord(raw, now, "")
}

// Payload accepts any of the supported catalog shapes — a bare array,
// {items:[...]}, {all:[...]}, or {movies:[...], tv:[...]} — and returns the
// normalized, deduplicated item list. Records without identity are dropped;
// for duplicate ids the first occurrence wins.
func Payload(payload any, now time.Time) []models.ContentItem {
	records := collectRecords(payload)

	items := make([]models.ContentItem, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		item, ok := normalizeRecord(rec.raw, now, rec.fallbackType)
		if !ok {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items
}

type taggedRecord struct {
	raw          map[string]any
	fallbackType models.MediaType
}

func collectRecords(payload any) []taggedRecord {
	switch value := payload.(type) {
	case []any:
		return tagAll(value, "")
	case map[string]any:
		if items, ok := value["items"].([]any); ok {
			return tagAll(items, "")
		}
		if all, ok := value["all"].([]any); ok {
			return tagAll(all, "")
		}
		var records []taggedRecord
		if movies, ok := value["movies"].([]any); ok {
			records = append(records, tagAll(movies, models.MediaTypeMovies)...)
		}
		if tv, ok := value["tv"].([]any); ok {
			records = append(records, tagAll(tv, models.MediaTypeTV)...)
		}
		return records
	}
	return nil
}

func tagAll(values []any, fallback models.MediaType) []taggedRecord {
	records := make([]taggedRecord, 0, len(values))
	for _, value := range values {
		raw, ok := value.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, taggedRecord{raw: raw, fallbackType: fallback})
	}
	return records
}

func normalizeRecord(raw map[string]any, now time.Time, fallbackType models.MediaType) (models.ContentItem, bool) {
	if raw == nil {
		return models.ContentItem{}, false
	}

	title, hasTitle := firstString(raw, titleFields)
	_, hasExplicitID := explicitID(raw)
	if !hasTitle && !hasExplicitID {
		return models.ContentItem{}, false
	}

	item := models.ContentItem{
		ID:   BuildID(raw),
		Type: normalizeType(raw, fallbackType),
		Year: extractYear(raw),
		Raw:  raw,
	}

	if hasTitle {
		item.Title = title
	} else {
		item.Title = item.ID
	}

	item.Thumbnail, _ = firstString(raw, thumbnailFields)
	item.VideoURL, _ = firstString(raw, videoURLFields)
	item.Description, _ = firstString(raw, descriptionFields)
	item.ComingSoon = extractComingSoon(raw)

	item.AddedDate = extractAddedDate(raw, now)
	age := now.UnixMilli() - item.AddedDate
	item.IsNew = age >= 0 && age <= models.NewWindow.Milliseconds()

	return item, true
}

func explicitID(raw map[string]any) (string, bool) {
	for _, key := range idFields {
		if value, ok := raw[key]; ok {
			if s, ok := stringify(value); ok {
				return s, true
			}
		}
	}
	return "", false
}

func normalizeType(raw map[string]any, fallback models.MediaType) models.MediaType {
	if kind, ok := firstString(raw, typeFields); ok {
		kind = strings.ToLower(kind)
		switch {
		case strings.Contains(kind, "tv"), strings.Contains(kind, "show"), strings.Contains(kind, "series"):
			return models.MediaTypeTV
		case strings.Contains(kind, "movie"), strings.Contains(kind, "film"):
			return models.MediaTypeMovies
		}
	}
	for _, key := range seasonFields {
		if _, ok := raw[key]; ok {
			return models.MediaTypeTV
		}
	}
	if fallback != "" {
		return fallback
	}
	return models.MediaTypeMovies
}

func extractYear(raw map[string]any) int {
	for _, key := range yearNumberFields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if n, ok := numberOf(value); ok {
			year := int(n)
			if year >= 1000 && year <= 9999 {
				return year
			}
		}
		if s, ok := stringify(value); ok {
			if year := yearFromString(s); year != 0 {
				return year
			}
		}
	}
	for _, key := range yearDateFields {
		if s, ok := stringField(raw, key); ok {
			if year := yearFromString(s); year != 0 {
				return year
			}
		}
	}
	return 0
}

// yearFromString accepts a bare 4-digit year or an ISO-style date whose
// first 4 characters are the year.
func yearFromString(value string) int {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return 0
	}
	year, err := strconv.Atoi(value[:4])
	if err != nil || year < 1000 {
		return 0
	}
	return year
}

func extractComingSoon(raw map[string]any) bool {
	for _, key := range comingSoonFields {
		if value, ok := raw[key]; ok {
			if b, ok := boolOf(value); ok {
				return b
			}
		}
	}
	if status, ok := stringField(raw, "status"); ok {
		return strings.Contains(strings.ToLower(status), "coming")
	}
	return false
}

func extractAddedDate(raw map[string]any, now time.Time) int64 {
	for _, key := range addedDateFields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if n, ok := numberOf(value); ok && n > 0 {
			// Values below ~1e12 are epoch seconds, not milliseconds.
			if n < 1e12 {
				return int64(n * 1000)
			}
			return int64(n)
		}
		if s, ok := stringify(value); ok {
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts.UnixMilli()
			}
			if ts, err := time.Parse("2006-01-02", s); err == nil {
				return ts.UnixMilli()
			}
		}
	}
	return now.UnixMilli()
}

func firstString(raw map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		if s, ok := stringField(raw, key); ok {
			return s, true
		}
	}
	return "", false
}

func stringField(raw map[string]any, key string) (string, bool) {
	value, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case json.Number:
		return v.String(), true
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}

func numberOf(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}

func boolOf(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	case float64:
		return v != 0, true
	}
	return false, false
}

// slug lower-cases and ASCII-folds a title for use in synthesized ids.
func slug(value string) string {
	ascii := strings.ToLower(strings.TrimSpace(unidecode.Unidecode(value)))

	var b strings.Builder
	b.Grow(len(ascii))
	pendingDash := false
	for _, r := range ascii {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
