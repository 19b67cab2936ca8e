package service

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"iem-reco-service/internal/fileio"
	"iem-reco-service/internal/recommend/model"
)

// songTable builds a catalog where feature columns already span [0,1], so normalized values
// equal raw ones. Rows 2..13 sit at the Neutral centre and differ only in acousticness.
func songTable() fileio.Table {
	t := fileio.Table{Headers: append([]string(nil), model.SongColumns...)}
	add := func(name, d, e, v, a string) {
		t.Rows = append(t.Rows, map[string]string{
			model.ColTrackName:    name,
			model.ColTrackArtist:  "Artist " + name,
			model.ColAlbumName:    "Album",
			model.ColGenre:        "pop",
			model.ColPlaylistName: "Mix",
			model.ColDanceability: d,
			model.ColEnergy:       e,
			model.ColValence:      v,
			model.ColAcousticness: a,
		})
	}
	add("song-0", "0", "0", "0", "0")
	add("song-1", "1", "1", "1", "1")
	for k := 0; k < 12; k++ {
		add(fmt.Sprintf("song-%d", k+2), "0.5", "0.5", "0.5", fmt.Sprintf("%.2f", float64(k)*0.05))
	}
	add("song-broken", "0.5", "n/a", "0.5", "0")
	return t
}

func mustSongs(t *testing.T, tbl fileio.Table) []model.Song {
	t.Helper()
	songs, err := ParseSongs(tbl)
	if err != nil {
		t.Fatalf("ParseSongs() error = %v", err)
	}
	return songs
}

func TestShortlist_Neutral(t *testing.T) {
	songs := mustSongs(t, songTable())
	target, _ := MapSignature("Neutral")
	got := Shortlist(songs, target)
	if len(got) != 10 {
		t.Fatalf("shortlist size = %d, want 10", len(got))
	}
	for i, idx := range got {
		if idx != i+2 {
			t.Fatalf("shortlist = %v, want rows 2..11 in order", got)
		}
	}
}

func TestDistances(t *testing.T) {
	songs := mustSongs(t, songTable())
	target, _ := MapSignature("Neutral")
	d := Distances(songs, target)
	if !almostEqual(d[0], 1.5) {
		t.Errorf("distance(all zero) = %v, want 1.5", d[0])
	}
	if !almostEqual(d[1], 2.5) {
		t.Errorf("distance(all one) = %v, want 2.5", d[1])
	}
	if !almostEqual(d[3], 0.05) {
		t.Errorf("distance(song-3) = %v, want 0.05", d[3])
	}
	if !math.IsNaN(d[len(d)-1]) {
		t.Errorf("distance(undefined energy) = %v, want NaN", d[len(d)-1])
	}
}

func TestRankSongs_SamplesFromShortlist(t *testing.T) {
	songs := mustSongs(t, songTable())
	allowed := make(map[string]bool)
	for k := 2; k <= 11; k++ {
		allowed[fmt.Sprintf("song-%d", k)] = true
	}
	for seed := int64(1); seed <= 20; seed++ {
		got, err := RankSongs(songs, "Neutral", 5, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("RankSongs() error = %v", err)
		}
		if len(got) != 5 {
			t.Fatalf("seed %d: got %d songs, want 5", seed, len(got))
		}
		seen := make(map[string]bool)
		for _, s := range got {
			if !allowed[s.TrackName] {
				t.Errorf("seed %d: %q is not in the shortlist", seed, s.TrackName)
			}
			if seen[s.TrackName] {
				t.Errorf("seed %d: %q sampled twice", seed, s.TrackName)
			}
			seen[s.TrackName] = true
			if s.Distance == nil {
				t.Errorf("seed %d: %q has no distance", seed, s.TrackName)
			}
		}
	}
}

func TestRankSongs_SameSeedSameSongs(t *testing.T) {
	songs := mustSongs(t, songTable())
	a, _ := RankSongs(songs, "Warm", 4, rand.New(rand.NewSource(99)))
	b, _ := RankSongs(songs, "Warm", 4, rand.New(rand.NewSource(99)))
	for i := range a {
		if a[i].TrackName != b[i].TrackName {
			t.Fatalf("results differ for equal seeds: %v vs %v", a, b)
		}
	}
}

func TestRankSongs_Counts(t *testing.T) {
	songs := mustSongs(t, songTable())
	tests := []struct {
		name  string
		label string
		count int
		want  int
	}{
		{"default count", "Neutral", 0, DefaultSongCount},
		{"capped by shortlist", "Neutral", 25, 10},
		{"unmapped label samples catalog", "Planar magic", 3, 3},
		{"unmapped label capped by catalog", "Planar magic", 100, len(songs)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RankSongs(songs, tt.label, tt.count, rand.New(rand.NewSource(5)))
			if err != nil {
				t.Fatalf("RankSongs() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d songs, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRankSongs_UnmappedHasNoDistance(t *testing.T) {
	songs := mustSongs(t, songTable())
	got, err := RankSongs(songs, "nonexistent-label", 5, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range got {
		if s.Distance != nil {
			t.Errorf("%q has distance %v, want nil", s.TrackName, *s.Distance)
		}
	}
}

func TestRankSongs_AllRowsUndefinedFallsBack(t *testing.T) {
	tbl := songTable()
	for _, r := range tbl.Rows {
		r[model.ColValence] = "?"
	}
	songs := mustSongs(t, tbl)
	got, err := RankSongs(songs, "Neutral", 5, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d songs, want 5", len(got))
	}
	for _, s := range got {
		if s.Distance != nil {
			t.Errorf("fallback song %q carries distance", s.TrackName)
		}
	}
}

func TestRankSongs_ConstantColumn(t *testing.T) {
	tbl := songTable()
	for _, r := range tbl.Rows {
		r[model.ColEnergy] = "0.8"
	}
	songs := mustSongs(t, tbl)
	target, _ := MapSignature("Neutral")
	for i, d := range Distances(songs, target) {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			t.Fatalf("row %d distance = %v, want finite", i, d)
		}
	}
}

func TestParseSongs_Errors(t *testing.T) {
	missing := songTable()
	missing.Headers = missing.Headers[:len(missing.Headers)-1] // без acousticness

	_, err := ParseSongs(missing)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
	if len(se.Missing) != 1 || se.Missing[0] != model.ColAcousticness {
		t.Errorf("Missing = %v", se.Missing)
	}

	if _, err := ParseSongs(fileio.Table{}); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("empty table error = %v, want ErrEmptyCatalog", err)
	}
	headerOnly := fileio.Table{Headers: model.SongColumns}
	if _, err := ParseSongs(headerOnly); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("header-only error = %v, want ErrEmptyCatalog", err)
	}
	if _, err := RankSongs(nil, "Neutral", 5, nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("RankSongs(nil) error = %v, want ErrEmptyCatalog", err)
	}
}

func TestFormatSong_Defaults(t *testing.T) {
	got := formatSong(model.Song{}, nil)
	if got.TrackName != "Unknown" || got.TrackArtist != "Unknown" || got.Album != "N/A" ||
		got.Genre != "Unknown" || got.Playlist != "Unknown" {
		t.Errorf("formatSong defaults = %+v", got)
	}
}
