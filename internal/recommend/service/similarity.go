package service

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"iem-reco-service/internal/fileio"
	"iem-reco-service/internal/recommend/model"
	"iem-reco-service/internal/utils"
)

const (
	// DefaultSongCount is used when the caller asks for zero or fewer songs.
	DefaultSongCount = 5
	shortlistSize    = 10
)

// ParseSongs validates catalog B and coerces the feature columns. Values that are not numbers
// become NaN; the rows themselves are kept.
func ParseSongs(t fileio.Table) ([]model.Song, error) {
	if len(t.Headers) == 0 {
		return nil, ErrEmptyCatalog
	}
	if missing := t.MissingColumns(model.SongColumns...); len(missing) > 0 {
		return nil, &SchemaError{Catalog: "song catalog", Missing: missing}
	}
	if t.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	songs := make([]model.Song, len(t.Rows))
	for i, rec := range t.Rows {
		feats := make(map[string]float64, len(model.FeatureColumns))
		for _, c := range model.FeatureColumns {
			feats[c] = utils.NumberOrNaN(rec[c])
		}
		songs[i] = model.Song{
			TrackName:   strings.TrimSpace(rec[model.ColTrackName]),
			TrackArtist: strings.TrimSpace(rec[model.ColTrackArtist]),
			Album:       strings.TrimSpace(rec[model.ColAlbumName]),
			Genre:       strings.TrimSpace(rec[model.ColGenre]),
			Playlist:    strings.TrimSpace(rec[model.ColPlaylistName]),
			Features:    feats,
			Row:         i,
		}
	}
	return songs, nil
}

// Distances returns the L1 distance of every song to target after min-max normalizing each
// feature column over its defined values. A song with any undefined feature gets NaN.
func Distances(songs []model.Song, target model.FeatureVector) []float64 {
	out := make([]float64, len(songs))
	for _, col := range model.FeatureColumns {
		vals := make([]float64, len(songs))
		for i := range songs {
			vals[i] = songs[i].Features[col]
		}
		lo, hi := minMax(vals)
		t := target.Target(col)
		for i, v := range vals {
			out[i] += math.Abs(scale(v, lo, hi) - t)
		}
	}
	return out
}

// Shortlist returns the indexes of the (up to) ten songs closest to target, nearest first.
// Ties keep catalog order. Songs with an undefined distance never make the list.
func Shortlist(songs []model.Song, target model.FeatureVector) []int {
	return shortlist(Distances(songs, target))
}

func shortlist(dist []float64) []int {
	idx := make([]int, 0, len(dist))
	for i, d := range dist {
		if !math.IsNaN(d) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return dist[idx[a]] < dist[idx[b]] })
	if len(idx) > shortlistSize {
		idx = idx[:shortlistSize]
	}
	return idx
}

// RankSongs recommends count songs for an IEM signature.
//
// For a mapped signature the songs are sampled without replacement from the shortlist of the
// ten nearest rows. An unmapped signature, or a catalog where no row has all features
// defined, falls back to a uniform sample of the whole catalog. rng drives the sampling; nil
// means a time-seeded source.
func RankSongs(songs []model.Song, label string, count int, rng *rand.Rand) ([]model.RankedSong, error) {
	if len(songs) == 0 {
		return nil, ErrEmptyCatalog
	}
	if count <= 0 {
		count = DefaultSongCount
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	target, ok := MapSignature(label)
	if !ok {
		return sampleCatalog(songs, count, rng), nil
	}
	dist := Distances(songs, target)
	short := shortlist(dist)
	if len(short) == 0 {
		return sampleCatalog(songs, count, rng), nil
	}

	n := min(count, len(short))
	out := make([]model.RankedSong, 0, n)
	for _, p := range rng.Perm(len(short))[:n] {
		i := short[p]
		d := dist[i]
		out = append(out, formatSong(songs[i], &d))
	}
	return out, nil
}

func sampleCatalog(songs []model.Song, count int, rng *rand.Rand) []model.RankedSong {
	n := min(count, len(songs))
	out := make([]model.RankedSong, 0, n)
	for _, i := range rng.Perm(len(songs))[:n] {
		out = append(out, formatSong(songs[i], nil))
	}
	return out
}

func formatSong(s model.Song, dist *float64) model.RankedSong {
	return model.RankedSong{
		TrackName:   orDefault(s.TrackName, "Unknown"),
		TrackArtist: orDefault(s.TrackArtist, "Unknown"),
		Album:       orDefault(s.Album, "N/A"),
		Genre:       orDefault(s.Genre, "Unknown"),
		Playlist:    orDefault(s.Playlist, "Unknown"),
		Distance:    dist,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
