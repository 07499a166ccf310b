// Package catalog holds the normalized content list and derives the current
// filtered, searched, and sorted view from it. The backing list is replaced
// wholesale on (re)load; views are recomputed on demand and never stored.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"movieshows/models"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Filter categories accepted by SetFilter.
const (
	FilterAll        = "all"
	FilterMovies     = "movies"
	FilterTV         = "tv"
	FilterComingSoon = "coming-soon"
	FilterNew        = "new"
)

// Sort modes are field-direction pairs.
const (
	SortTitleAsc  = "title-asc"
	SortTitleDesc = "title-desc"
	SortYearAsc   = "year-asc"
	SortYearDesc  = "year-desc"
	SortAddedAsc  = "added-asc"
	SortAddedDesc = "added-desc"
)

// Service is the catalog store.
type Service struct {
	mu       sync.RWMutex
	items    []models.ContentItem
	byID     map[string]models.ContentItem
	filter   string
	search   string
	sortMode string
	collator *collate.Collator
}

// NewService returns an empty catalog store with default view parameters.
func NewService() *Service {
	return &Service{
		byID:     make(map[string]models.ContentItem),
		filter:   FilterAll,
		sortMode: SortTitleAsc,
		collator: collate.New(language.Und, collate.IgnoreCase),
	}
}

// SetContent replaces the catalog wholesale. The normalizer guarantees ids
// are unique, so the lookup map keeps the first occurrence defensively.
func (s *Service) SetContent(items []models.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]models.ContentItem, len(items))
	copy(s.items, items)

	s.byID = make(map[string]models.ContentItem, len(items))
	for _, item := range items {
		if _, exists := s.byID[item.ID]; !exists {
			s.byID[item.ID] = item
		}
	}
}

// Len reports the size of the full catalog, independent of the current view.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// All returns a copy of the full normalized catalog.
func (s *Service) All() []models.ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ContentItem, len(s.items))
	copy(out, s.items)
	return out
}

// ByID looks an item up by its canonical id.
func (s *Service) ByID(id string) (models.ContentItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.byID[id]
	return item, ok
}

// ByTitleYear finds the first item whose title matches case-insensitively
// and whose year is equal. Used by queue imports as the id fallback.
func (s *Service) ByTitleYear(title string, year int) (models.ContentItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.Year == year && strings.EqualFold(item.Title, title) {
			return item, true
		}
	}
	return models.ContentItem{}, false
}

// SetFilter sets the active category filter, normalizing unknown values to all.
func (s *Service) SetFilter(filter string) {
	switch filter {
	case FilterMovies, FilterTV, FilterComingSoon, FilterNew:
	default:
		filter = FilterAll
	}
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
}

// SetSearch sets the active search query.
func (s *Service) SetSearch(query string) {
	s.mu.Lock()
	s.search = strings.TrimSpace(query)
	s.mu.Unlock()
}

// SetSort sets the active sort mode, normalizing unknown values to title-asc.
func (s *Service) SetSort(mode string) {
	switch mode {
	case SortTitleDesc, SortYearAsc, SortYearDesc, SortAddedAsc, SortAddedDesc:
	default:
		mode = SortTitleAsc
	}
	s.mu.Lock()
	s.sortMode = mode
	s.mu.Unlock()
}

// ViewParams reports the current filter, search query, and sort mode.
func (s *Service) ViewParams() (filter, search, sortMode string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter, s.search, s.sortMode
}

// View recomputes filter + search + sort over the full catalog.
func (s *Service) View() []models.ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ContentItem, 0, len(s.items))
	query := fold(s.search)
	for _, item := range s.items {
		if !matchesFilter(item, s.filter) {
			continue
		}
		if query != "" && !strings.Contains(fold(item.Title), query) && !strings.Contains(fold(item.Description), query) {
			continue
		}
		out = append(out, item)
	}

	s.sortItems(out)
	return out
}

func matchesFilter(item models.ContentItem, filter string) bool {
	switch filter {
	case FilterMovies:
		return item.Type == models.MediaTypeMovies
	case FilterTV:
		return item.Type == models.MediaTypeTV
	case FilterComingSoon:
		return item.ComingSoon
	case FilterNew:
		return item.IsNew
	default:
		return true
	}
}

func (s *Service) sortItems(items []models.ContentItem) {
	switch s.sortMode {
	case SortTitleDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return s.collator.CompareString(items[i].Title, items[j].Title) > 0
		})
	case SortYearAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Year < items[j].Year })
	case SortYearDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Year > items[j].Year })
	case SortAddedAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].AddedDate < items[j].AddedDate })
	case SortAddedDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].AddedDate > items[j].AddedDate })
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return s.collator.CompareString(items[i].Title, items[j].Title) < 0
		})
	}
}

// fold lower-cases and strips diacritics so search is accent-insensitive.
func fold(value string) string {
	return strings.ToLower(unidecode.Unidecode(value))
}
