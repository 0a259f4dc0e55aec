package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

const (
	searchPageSize = 20
	topListSize    = 20
)

var (
	ErrEmptyQuery = errors.New("search query is required")
	ErrUpstream   = errors.New("failed to fetch from catalog")
)

// SearchFilters narrows a catalog search. Values use the upstream vocabulary
// and are passed through verbatim when set.
type SearchFilters struct {
	Type    string // manga, novel, lightnovel, oneshot, doujin, manhwa, manhua
	OrderBy string // score, rank, popularity, title, chapters, volumes, ...
	Status  string // publishing, complete, hiatus, discontinued, upcoming
}

// TopStore is the bounded-interval cache for the ranked top list.
type TopStore interface {
	Get(ctx context.Context) ([]TopEntry, bool)
	Set(ctx context.Context, entries []TopEntry)
}

// Service validates catalog requests, forwards them to the upstream client
// and reshapes responses into the stable internal schema. All upstream
// failures collapse to ErrUpstream; details are only logged.
type Service struct {
	client *Client
	cache  TopStore
	logger *slog.Logger
}

func NewService(client *Client, cache TopStore, logger *slog.Logger) *Service {
	return &Service{client: client, cache: cache, logger: logger}
}

func (s *Service) Search(ctx context.Context, query string, page int, filters SearchFilters) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(searchPageSize))
	if filters.Type != "" {
		params.Set("type", filters.Type)
	}
	if filters.OrderBy != "" {
		params.Set("order_by", filters.OrderBy)
	}
	if filters.Status != "" {
		params.Set("status", filters.Status)
	}

	resp, err := s.client.SearchManga(ctx, params)
	if err != nil {
		s.logger.Error("catalog search failed", "query", query, "error", err)
		return nil, ErrUpstream
	}

	results := make([]Summary, 0, len(resp.Data))
	for _, m := range resp.Data {
		results = append(results, summaryFromJikan(m))
	}

	return &SearchResult{Results: results, Pagination: resp.Pagination}, nil
}

func (s *Service) Details(ctx context.Context, id int64) (*Detail, error) {
	resp, err := s.client.GetMangaFull(ctx, id)
	if err != nil {
		s.logger.Error("catalog details failed", "id", id, "error", err)
		return nil, ErrUpstream
	}

	m := resp.Data
	return &Detail{
		Summary:    summaryFromJikan(m),
		Rank:       m.Rank,
		Popularity: m.Popularity,
		Published:  m.Published.String,
	}, nil
}

// Top returns the ranked top list, served from the redis cache when fresh.
// Staleness up to the cache TTL is acceptable.
func (s *Service) Top(ctx context.Context) ([]TopEntry, error) {
	if s.cache != nil {
		if entries, ok := s.cache.Get(ctx); ok {
			return entries, nil
		}
	}

	resp, err := s.client.GetTopManga(ctx, topListSize)
	if err != nil {
		s.logger.Error("catalog top list failed", "error", err)
		return nil, ErrUpstream
	}

	entries := make([]TopEntry, 0, len(resp.Data))
	for _, m := range resp.Data {
		imageURL := m.Images.JPG.LargeImageURL
		if imageURL == "" {
			imageURL = m.Images.JPG.ImageURL
		}
		entries = append(entries, TopEntry{
			MalID:    m.MalID,
			Title:    m.Title,
			ImageURL: imageURL,
			Score:    m.Score,
		})
	}

	if s.cache != nil {
		s.cache.Set(ctx, entries)
	}
	return entries, nil
}
