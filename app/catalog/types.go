package catalog

// Entry is the catalog data attached to a release. Optional fields are
// omitted from the wire form when the store did not provide them.
type Entry struct {
	ID          int64    `json:"app_id"`
	Name        string   `json:"name"`
	URL         string   `json:"steam_url"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Price       string   `json:"price,omitempty"`
	Ratings     *Ratings `json:"ratings,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Media       Media    `json:"media"`
}

type Ratings struct {
	Positive int64  `json:"total_positive"`
	Negative int64  `json:"total_negative"`
	Summary  string `json:"review_score_desc"`
}

type Media struct {
	HeaderImage string   `json:"header_image,omitempty"`
	Screenshots []string `json:"screenshots,omitempty"`
	Videos      []Video  `json:"movies,omitempty"`
}

type Video struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
	LowRes    string `json:"webm_480,omitempty"`
	HighRes   string `json:"webm_max,omitempty"`
}

// Store API payloads.

type searchResponse struct {
	Total int `json:"total"`
	Items []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"items"`
}

type detailsEnvelope struct {
	Success bool        `json:"success"`
	Data    *appDetails `json:"data"`
}

type appDetails struct {
	AppID       int64  `json:"steam_appid"`
	Name        string `json:"name"`
	ReleaseDate *struct {
		ComingSoon bool   `json:"coming_soon"`
		Date       string `json:"date"`
	} `json:"release_date"`
	IsFree        bool `json:"is_free"`
	PriceOverview *struct {
		FinalFormatted string `json:"final_formatted"`
	} `json:"price_overview"`
	Categories []struct {
		ID          int64  `json:"id"`
		Description string `json:"description"`
	} `json:"categories"`
	HeaderImage string `json:"header_image"`
	Screenshots []struct {
		ID       int64  `json:"id"`
		PathFull string `json:"path_full"`
	} `json:"screenshots"`
	Movies []struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Thumbnail string `json:"thumbnail"`
		Webm      *struct {
			Low string `json:"480"`
			Max string `json:"max"`
		} `json:"webm"`
	} `json:"movies"`
}

type reviewsResponse struct {
	Success      int `json:"success"`
	QuerySummary *struct {
		TotalPositive   int64  `json:"total_positive"`
		TotalNegative   int64  `json:"total_negative"`
		ReviewScoreDesc string `json:"review_score_desc"`
	} `json:"query_summary"`
}
