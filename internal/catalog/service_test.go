package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
	"pagination": {
		"last_visible_page": 3,
		"has_next_page": true,
		"current_page": 1,
		"items": {"count": 2, "total": 55, "per_page": 20}
	},
	"data": [
		{
			"mal_id": 2,
			"title": "Berserk",
			"title_english": "Berserk",
			"images": {"jpg": {"image_url": "small.jpg", "large_image_url": "large.jpg"}},
			"synopsis": "A mercenary wanders a dark world.",
			"score": 9.47,
			"chapters": null,
			"volumes": null,
			"status": "Publishing",
			"published": {"from": "1989-08-25T00:00:00+00:00", "to": null, "string": "Aug 25, 1989 to ?"},
			"authors": [{"mal_id": 1868, "name": "Miura, Kentarou"}],
			"genres": [{"mal_id": 1, "name": "Action"}, {"mal_id": 8, "name": "Drama"}]
		},
		{
			"mal_id": 13,
			"title": "One Piece",
			"images": {"jpg": {"image_url": "op-small.jpg"}},
			"score": 9.22,
			"chapters": 1100,
			"volumes": 108,
			"status": "Publishing",
			"published": {"from": "1997-07-22T00:00:00+00:00", "to": null, "string": "Jul 22, 1997 to ?"},
			"authors": [],
			"genres": []
		}
	]
}`

const detailBody = `{
	"data": {
		"mal_id": 42,
		"title": "Dorohedoro",
		"title_english": "Dorohedoro",
		"images": {"jpg": {"image_url": "small.jpg", "large_image_url": "large.jpg"}},
		"synopsis": "A man with a lizard head hunts sorcerers.",
		"score": 8.12,
		"rank": 120,
		"popularity": 300,
		"chapters": 167,
		"volumes": 23,
		"status": "Finished",
		"published": {"from": "2000-11-30T00:00:00+00:00", "to": "2018-09-12T00:00:00+00:00", "string": "Nov 30, 2000 to Sep 12, 2018"},
		"authors": [{"mal_id": 2838, "name": "Hayashida, Q"}],
		"genres": [{"mal_id": 27, "name": "Shounen"}]
	}
}`

const topBody = `{
	"pagination": {"last_visible_page": 1, "has_next_page": false, "current_page": 1, "items": {"count": 1, "total": 1, "per_page": 20}},
	"data": [
		{
			"mal_id": 2,
			"title": "Berserk",
			"images": {"jpg": {"image_url": "small.jpg", "large_image_url": "large.jpg"}},
			"score": 9.47,
			"published": {"string": ""},
			"authors": [],
			"genres": []
		}
	]
}`

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTopStore struct {
	entries []TopEntry
	setCall int
}

func (s *fakeTopStore) Get(ctx context.Context) ([]TopEntry, bool) {
	return s.entries, s.entries != nil
}

func (s *fakeTopStore) Set(ctx context.Context, entries []TopEntry) {
	s.entries = entries
	s.setCall++
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("ReshapesResults", func(t *testing.T) {
		var gotQuery, gotPage, gotType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/manga", r.URL.Path)
			gotQuery = r.URL.Query().Get("q")
			gotPage = r.URL.Query().Get("page")
			gotType = r.URL.Query().Get("type")
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, searchBody)
		}))
		defer srv.Close()

		svc := NewService(NewClient(srv.URL), nil, newTestLogger())

		result, err := svc.Search(ctx, "berserk", 1, SearchFilters{Type: "manga"})
		require.NoError(t, err)
		assert.Equal(t, "berserk", gotQuery)
		assert.Equal(t, "1", gotPage)
		assert.Equal(t, "manga", gotType)

		require.Len(t, result.Results, 2)

		first := result.Results[0]
		assert.Equal(t, int64(2), first.MalID)
		assert.Equal(t, "Berserk", first.Title)
		assert.Equal(t, "large.jpg", first.ImageURL)
		require.NotNil(t, first.Score)
		assert.InDelta(t, 9.47, *first.Score, 0.001)
		assert.Nil(t, first.Chapters)
		require.Len(t, first.Authors, 1)
		assert.Equal(t, "Miura, Kentarou", first.Authors[0].Name)
		assert.Equal(t, []string{"Action", "Drama"}, first.Genres)
		require.NotNil(t, first.PublishedFrom)

		// falls back to the small image when no large one exists
		second := result.Results[1]
		assert.Equal(t, "op-small.jpg", second.ImageURL)
		require.NotNil(t, second.Chapters)
		assert.Equal(t, 1100, *second.Chapters)

		assert.Equal(t, 3, result.Pagination.LastVisiblePage)
		assert.True(t, result.Pagination.HasNextPage)
		assert.Equal(t, 55, result.Pagination.Items.Total)
	})

	t.Run("EmptyQueryRejectedBeforeUpstream", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		svc := NewService(NewClient(srv.URL), nil, newTestLogger())

		_, err := svc.Search(ctx, "   ", 1, SearchFilters{})
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.False(t, called)
	})

	t.Run("UpstreamFailureCollapses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		svc := NewService(NewClient(srv.URL), nil, newTestLogger())

		_, err := svc.Search(ctx, "berserk", 1, SearchFilters{})
		assert.ErrorIs(t, err, ErrUpstream)
	})
}

func TestDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("FullRecord", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/manga/42/full", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, detailBody)
		}))
		defer srv.Close()

		svc := NewService(NewClient(srv.URL), nil, newTestLogger())

		detail, err := svc.Details(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), detail.MalID)
		require.NotNil(t, detail.Rank)
		assert.Equal(t, 120, *detail.Rank)
		require.NotNil(t, detail.Popularity)
		assert.Equal(t, 300, *detail.Popularity)
		assert.Equal(t, "Nov 30, 2000 to Sep 12, 2018", detail.Published)
		assert.Equal(t, []string{"Shounen"}, detail.Genres)
	})

	t.Run("UpstreamFailureCollapses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		svc := NewService(NewClient(srv.URL), nil, newTestLogger())

		_, err := svc.Details(ctx, 42)
		assert.ErrorIs(t, err, ErrUpstream)
	})
}

func TestTop(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchesAndCaches", func(t *testing.T) {
		hits := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			assert.Equal(t, "/top/manga", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, topBody)
		}))
		defer srv.Close()

		store := &fakeTopStore{}
		svc := NewService(NewClient(srv.URL), store, newTestLogger())

		entries, err := svc.Top(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Berserk", entries[0].Title)
		assert.Equal(t, "large.jpg", entries[0].ImageURL)
		assert.Equal(t, 1, store.setCall)

		// second call is served from the cache
		entries, err = svc.Top(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 1, hits)
	})

	t.Run("NilCacheGoesUpstream", func(t *testing.T) {
		hits := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, topBody)
		}))
		defer srv.Close()

		svc := NewService(NewClient(srv.URL), nil, newTestLogger())

		_, err := svc.Top(ctx)
		require.NoError(t, err)
		_, err = svc.Top(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, hits)
	})

	t.Run("UpstreamFailureCollapses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		svc := NewService(NewClient(srv.URL), &fakeTopStore{}, newTestLogger())

		_, err := svc.Top(ctx)
		assert.ErrorIs(t, err, ErrUpstream)
	})
}
