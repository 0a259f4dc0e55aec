package catalog

// Wire types for the Jikan REST API (api.jikan.moe/v4), limited to the
// fields this service reshapes.

type jikanListResponse struct {
	Pagination Pagination   `json:"pagination"`
	Data       []jikanManga `json:"data"`
}

type jikanDetailResponse struct {
	Data jikanManga `json:"data"`
}

type jikanManga struct {
	MalID        int64        `json:"mal_id"`
	Title        string       `json:"title"`
	TitleEnglish string       `json:"title_english"`
	Images       jikanImages  `json:"images"`
	Synopsis     string       `json:"synopsis"`
	Score        *float64     `json:"score"`
	Rank         *int         `json:"rank"`
	Popularity   *int         `json:"popularity"`
	Chapters     *int         `json:"chapters"`
	Volumes      *int         `json:"volumes"`
	Status       string       `json:"status"`
	Published    jikanPublish `json:"published"`
	Authors      []jikanRef   `json:"authors"`
	Genres       []jikanRef   `json:"genres"`
}

type jikanImages struct {
	JPG struct {
		ImageURL      string `json:"image_url"`
		LargeImageURL string `json:"large_image_url"`
	} `json:"jpg"`
}

type jikanPublish struct {
	From   *string `json:"from"`
	To     *string `json:"to"`
	String string  `json:"string"`
}

type jikanRef struct {
	MalID int64  `json:"mal_id"`
	Name  string `json:"name"`
}

// Pagination is passed through from the upstream response.
type Pagination struct {
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
	CurrentPage     int  `json:"current_page"`
	Items           struct {
		Count   int `json:"count"`
		Total   int `json:"total"`
		PerPage int `json:"per_page"`
	} `json:"items"`
}

// Author identifies a title's author in the external catalog.
type Author struct {
	Name  string `json:"name"`
	MalID int64  `json:"malId,omitempty"`
}

// Summary is the stable internal shape of one search result.
type Summary struct {
	MalID         int64    `json:"malId"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"titleEnglish,omitempty"`
	ImageURL      string   `json:"imageUrl"`
	Synopsis      string   `json:"synopsis,omitempty"`
	Score         *float64 `json:"score"`
	Chapters      *int     `json:"chapters"`
	Volumes       *int     `json:"volumes"`
	Status        string   `json:"status"`
	PublishedFrom *string  `json:"publishedFrom,omitempty"`
	PublishedTo   *string  `json:"publishedTo,omitempty"`
	Authors       []Author `json:"authors"`
	Genres        []string `json:"genres"`
}

// Detail is the full record for one title.
type Detail struct {
	Summary
	Rank       *int   `json:"rank"`
	Popularity *int   `json:"popularity"`
	Published  string `json:"published,omitempty"`
}

// TopEntry is one row of the ranked top list.
type TopEntry struct {
	MalID    int64    `json:"malId"`
	Title    string   `json:"title"`
	ImageURL string   `json:"imageUrl"`
	Score    *float64 `json:"score"`
}

// SearchResult bundles reshaped results with upstream pagination.
type SearchResult struct {
	Results    []Summary  `json:"results"`
	Pagination Pagination `json:"pagination"`
}

func summaryFromJikan(m jikanManga) Summary {
	authors := make([]Author, 0, len(m.Authors))
	for _, a := range m.Authors {
		authors = append(authors, Author{Name: a.Name, MalID: a.MalID})
	}

	genres := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, g.Name)
	}

	imageURL := m.Images.JPG.LargeImageURL
	if imageURL == "" {
		imageURL = m.Images.JPG.ImageURL
	}

	return Summary{
		MalID:         m.MalID,
		Title:         m.Title,
		TitleEnglish:  m.TitleEnglish,
		ImageURL:      imageURL,
		Synopsis:      m.Synopsis,
		Score:         m.Score,
		Chapters:      m.Chapters,
		Volumes:       m.Volumes,
		Status:        m.Status,
		PublishedFrom: m.Published.From,
		PublishedTo:   m.Published.To,
		Authors:       authors,
		Genres:        genres,
	}
}
