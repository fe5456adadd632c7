package models

// MediaSummary is one provider search/trending result. JSON field names
// mirror the provider wire format so responses pass through unchanged.
type MediaSummary struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type,omitempty"`
	Title        string  `json:"title,omitempty"` // movies
	Name         string  `json:"name,omitempty"`  // tv shows
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count,omitempty"`
}

// Genre is a provider genre tag.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Video is a trailer or clip attached to a title.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// VideoList wraps the provider's appended videos response.
type VideoList struct {
	Results []Video `json:"results"`
}

// CastMember is one credited cast entry.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Credits wraps the provider's appended credits response.
type Credits struct {
	Cast []CastMember `json:"cast"`
}

// MediaDetails is the full detail record for a movie or show, including
// the videos and credits appended by the gateway.
type MediaDetails struct {
	MediaSummary
	Genres           []Genre    `json:"genres,omitempty"`
	Runtime          int        `json:"runtime,omitempty"`
	NumberOfSeasons  int        `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int        `json:"number_of_episodes,omitempty"`
	Status           string     `json:"status,omitempty"`
	Tagline          string     `json:"tagline,omitempty"`
	Videos           *VideoList `json:"videos,omitempty"`
	Credits          *Credits   `json:"credits,omitempty"`
}
