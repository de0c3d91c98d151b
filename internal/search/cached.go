package search

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Keats0206/fundtrack/internal/cache"
	"github.com/Keats0206/fundtrack/internal/logger"
	"github.com/Keats0206/fundtrack/internal/model"
)

// CachedSearcher serves repeated queries from a cache
type CachedSearcher struct {
	next  Searcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedSearcher wraps next; a nil cache disables caching
func NewCachedSearcher(next Searcher, c cache.Cache, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{next: next, cache: c, ttl: ttl}
}

func (s *CachedSearcher) Search(ctx context.Context, q Query) ([]model.NewsItem, error) {
	key := cache.Key("search",
		q.Text,
		strconv.Itoa(q.MaxResults),
		strconv.Itoa(q.MaxTokensPerPage),
		strings.Join(q.DomainFilter, ","),
	)

	var items []model.NewsItem
	if cache.GetJSON(s.cache, key, &items) {
		logger.Log.WithField("query", q.Text).Debug("search cache hit")
		return items, nil
	}

	items, err := s.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(s.cache, key, items, s.ttl); err != nil {
		logger.Log.WithError(err).Warn("cache search results")
	}
	return items, nil
}

// CachedPeopleSearcher serves repeated people searches from a cache
type CachedPeopleSearcher struct {
	next  PeopleSearcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedPeopleSearcher wraps next; a nil cache disables caching
func NewCachedPeopleSearcher(next PeopleSearcher, c cache.Cache, ttl time.Duration) *CachedPeopleSearcher {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedPeopleSearcher{next: next, cache: c, ttl: ttl}
}

func (s *CachedPeopleSearcher) SearchPeople(ctx context.Context, q PeopleQuery) ([]model.Person, error) {
	key := cache.Key("people", strings.ToLower(q.Company), strings.ToLower(q.Role), strings.ToLower(q.Location))

	var people []model.Person
	if cache.GetJSON(s.cache, key, &people) {
		logger.Log.WithField("company", q.Company).Debug("people cache hit")
		return people, nil
	}

	people, err := s.next.SearchPeople(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(s.cache, key, people, s.ttl); err != nil {
		logger.Log.WithError(err).Warn("cache people results")
	}
	return people, nil
}
