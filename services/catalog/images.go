package catalog

import (
	"strings"

	"moma/models"
)

const (
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// w500 posters are enough for list cards; w1280 backdrops cover 1080p.
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w1280"
)

// PosterURL resolves a TMDB poster path. Empty paths stay empty.
func PosterURL(imagePath string) string {
	return imageURL(tmdbPosterSize, imagePath)
}

// BackdropURL resolves a TMDB backdrop path. Empty paths stay empty.
func BackdropURL(imagePath string) string {
	return imageURL(tmdbBackdropSize, imagePath)
}

func imageURL(size, imagePath string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(imagePath), "/")
	if trimmed == "" {
		return ""
	}
	return tmdbImageBaseURL + "/" + size + "/" + trimmed
}

func withImages(m models.Movie) models.Movie {
	m.PosterURL = PosterURL(m.PosterPath)
	m.BackdropURL = BackdropURL(m.BackdropPath)
	return m
}
