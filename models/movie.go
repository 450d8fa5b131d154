package models

// GenreID identifies a TMDB movie genre.
type GenreID int64

// Genre maps a genre id to its display name.
type Genre struct {
	ID   GenreID `json:"id"`
	Name string  `json:"name"`
}

// Movie carries the TMDB movie fields used by list and detail views. List
// endpoints fill GenreIDs; the detail endpoint fills Genres and Homepage.
// PosterURL and BackdropURL are resolved by the catalog, not sent by TMDB.
type Movie struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	OriginalTitle    string    `json:"original_title,omitempty"`
	Name             string    `json:"name,omitempty"`
	OriginalLanguage string    `json:"original_language,omitempty"`
	Overview         string    `json:"overview"`
	PosterPath       string    `json:"poster_path,omitempty"`
	BackdropPath     string    `json:"backdrop_path,omitempty"`
	PosterURL        string    `json:"poster_url,omitempty"`
	BackdropURL      string    `json:"backdrop_url,omitempty"`
	GenreIDs         []GenreID `json:"genre_ids,omitempty"`
	Genres           []Genre   `json:"genres,omitempty"`
	Homepage         string    `json:"homepage,omitempty"`
	ReleaseDate      string    `json:"release_date,omitempty"`
	Adult            bool      `json:"adult"`
	Video            bool      `json:"video"`
	Popularity       float64   `json:"popularity"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int       `json:"vote_count"`
}

type CastMember struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Character          string `json:"character"`
	ProfilePath        string `json:"profile_path,omitempty"`
	KnownForDepartment string `json:"known_for_department,omitempty"`
	CreditID           string `json:"credit_id,omitempty"`
	Order              int    `json:"order"`
}

type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Job         string `json:"job"`
	ProfilePath string `json:"profile_path,omitempty"`
	CreditID    string `json:"credit_id,omitempty"`
}

// MovieCredits is the cast and crew listing of a movie.
type MovieCredits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// MovieInformation joins a movie's detail and credits records. A zero MovieID
// means nothing has been selected yet.
type MovieInformation struct {
	MovieID int64         `json:"movieId"`
	Detail  *Movie        `json:"detail"`
	Credits *MovieCredits `json:"credits"`
}

// Selected reports whether the information belongs to a selected movie.
func (m MovieInformation) Selected() bool {
	return m.MovieID != 0
}
