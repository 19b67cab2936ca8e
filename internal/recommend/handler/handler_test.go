package handler

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"iem-reco-service/internal/catalog"
	"iem-reco-service/internal/recommend/model"
	"iem-reco-service/internal/recommend/service"
)

type fakeIEMs struct {
	got model.IEMQuery
	err error
}

func (f *fakeIEMs) Recommend(q model.IEMQuery) (model.IEMRecommendation, error) {
	f.got = q
	if f.err != nil {
		return model.IEMRecommendation{}, f.err
	}
	items := []model.IEM{
		{Model: "Moondrop Aria", Signature: "Neutral", RankScore: 9, Price: 79},
		{Model: "KZ ZSN", Signature: "V-shaped", RankScore: 6, Price: 20},
	}
	return service.RankIEMs(items, q), nil
}

type fakeSongs struct {
	songs []model.RankedSong
	err   error
	label string
	count int
}

func (f *fakeSongs) Recommend(label string, count int, _ *rand.Rand) ([]model.RankedSong, error) {
	f.label, f.count = label, count
	return f.songs, f.err
}

type fakeReloader struct {
	snap *catalog.Snapshot
	err  error
}

func (f fakeReloader) Load() (*catalog.Snapshot, error) { return f.snap, f.err }

func fixedRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestRecommendIEMs(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantCode   int
		wantStatus model.Status
		wantFirst  string
	}{
		{"single category", "categories=Professional+Audio", http.StatusOK, model.StatusOK, "Moondrop Aria"},
		{"several categories and budget", "categories=Gaming,Professional%20Audio&budget=100", http.StatusOK, model.StatusOK, "KZ ZSN"},
		{"no categories", "categories=%20,%20", http.StatusBadRequest, model.StatusInvalidInput, ""},
		{"filter with no match", "categories=Gaming&signature=planar", http.StatusOK, model.StatusNoMatches, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RecommendIEMs(&fakeIEMs{}, zerolog.Nop())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommendations/iems?"+tt.query, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			body := decode[iemResponse](t, rec)
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if tt.wantFirst == "" {
				if len(body.Items) != 0 {
					t.Errorf("items = %+v, want none", body.Items)
				}
				return
			}
			if len(body.Items) == 0 || body.Items[0].Model != tt.wantFirst {
				t.Fatalf("items = %+v, want %s first", body.Items, tt.wantFirst)
			}
			first := body.Items[0]
			if first.Match != "95.0%" || !strings.HasPrefix(first.PriceDisplay, "$") {
				t.Errorf("display fields = %+v", first)
			}
			if !strings.Contains(first.AmazonLink, "amazon.com/s?k=") {
				t.Errorf("amazon link = %q", first.AmazonLink)
			}
		})
	}
}

func TestRecommendIEMs_PassesQuery(t *testing.T) {
	f := &fakeIEMs{}
	rec := httptest.NewRecorder()
	RecommendIEMs(f, zerolog.Nop()).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/?categories=Gaming,%20Movie%20Watching&budget=150.5&signature=%20warm%20", nil))

	if len(f.got.UseCases) != 2 || f.got.UseCases[1] != "Movie Watching" {
		t.Errorf("UseCases = %q", f.got.UseCases)
	}
	if f.got.Budget == nil || *f.got.Budget != 150.5 {
		t.Errorf("Budget = %v", f.got.Budget)
	}
	if f.got.SignatureFilter != "warm" {
		t.Errorf("SignatureFilter = %q", f.got.SignatureFilter)
	}
}

func TestRecommendIEMs_BadInput(t *testing.T) {
	for _, q := range []string{"categories=Gaming&budget=cheap", "categories=Gaming&budget=-5"} {
		rec := httptest.NewRecorder()
		RecommendIEMs(&fakeIEMs{}, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: code = %d, want 400", q, rec.Code)
		}
	}
}

func TestRecommendIEMs_NotLoaded(t *testing.T) {
	rec := httptest.NewRecorder()
	RecommendIEMs(&fakeIEMs{err: catalog.ErrNotLoaded}, zerolog.Nop()).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/?categories=Gaming", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rec.Code)
	}
}

func TestRecommendSongs(t *testing.T) {
	d := 0.25
	songs := []model.RankedSong{{TrackName: "Blinding Lights", TrackArtist: "The Weeknd", Album: "After Hours", Genre: "pop", Playlist: "Hits", Distance: &d}}

	tests := []struct {
		name     string
		body     string
		fake     *fakeSongs
		wantCode int
		wantErr  string
	}{
		{"ok", `{"signature":"V-shaped","count":3}`, &fakeSongs{songs: songs}, http.StatusOK, ""},
		{"empty signature", `{"signature":"  "}`, &fakeSongs{}, http.StatusBadRequest, msgNoSignature},
		{"missing signature", `{}`, &fakeSongs{}, http.StatusBadRequest, msgNoSignature},
		{"bad json", `{"signature":`, &fakeSongs{}, http.StatusBadRequest, "invalid json"},
		{"count too large", `{"signature":"Warm","count":500}`, &fakeSongs{}, http.StatusBadRequest, "count must be at most 50"},
		{"schema error", `{"signature":"Warm"}`, &fakeSongs{err: &service.SchemaError{Catalog: "song catalog", Missing: []string{"energy"}}}, http.StatusUnprocessableEntity, "missing required columns"},
		{"empty catalog", `{"signature":"Warm"}`, &fakeSongs{err: service.ErrEmptyCatalog}, http.StatusServiceUnavailable, "song dataset could not be loaded"},
		{"no songs", `{"signature":"Warm"}`, &fakeSongs{}, http.StatusNotFound, msgNoSongs},
		{"unexpected", `{"signature":"Warm"}`, &fakeSongs{err: errors.New("disk on fire")}, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RecommendSongs(tt.fake, fixedRand, zerolog.Nop())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recommendations/songs", strings.NewReader(tt.body)))

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				body := decode[errorBody](t, rec)
				if !strings.Contains(body.Error, tt.wantErr) {
					t.Errorf("error = %q, want it to contain %q", body.Error, tt.wantErr)
				}
				return
			}
			body := decode[songResponse](t, rec)
			if body.Signature != "V-shaped" || len(body.Songs) != 1 {
				t.Fatalf("body = %+v", body)
			}
			if tt.fake.label != "V-shaped" || tt.fake.count != 3 {
				t.Errorf("recommender called with %q/%d", tt.fake.label, tt.fake.count)
			}
			s := body.Songs[0]
			if s.Distance == nil || *s.Distance != 0.25 {
				t.Errorf("distance = %v", s.Distance)
			}
			if s.SpotifyLink != "https://open.spotify.com/search/Blinding%20Lights%20The%20Weeknd" {
				t.Errorf("spotify link = %q", s.SpotifyLink)
			}
		})
	}
}

func TestReload(t *testing.T) {
	snap := &catalog.Snapshot{IEMs: make([]model.IEM, 7), Version: 3, LoadedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	rec := httptest.NewRecorder()
	Reload(fakeReloader{snap: snap}, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["rows"] != float64(7) || body["version"] != float64(3) || body["loadedAt"] != "2026-01-02T03:04:05Z" {
		t.Errorf("body = %v", body)
	}

	rec = httptest.NewRecorder()
	err := fmt.Errorf("%w: %w", service.ErrFatalLoad, errors.New("open iems.xlsx: no such file"))
	Reload(fakeReloader{err: err}, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reload", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("failed reload code = %d, want 503", rec.Code)
	}
}

func TestLookups(t *testing.T) {
	rec := httptest.NewRecorder()
	UseCases(rec, httptest.NewRequest(http.MethodGet, "/use-cases", nil))
	ucs := decode[[]useCase](t, rec)
	if len(ucs) != 6 || len(ucs[0].Keywords) == 0 {
		t.Errorf("use cases = %+v", ucs)
	}

	rec = httptest.NewRecorder()
	Signatures(rec, httptest.NewRequest(http.MethodGet, "/signatures", nil))
	sigs := decode[[]signature](t, rec)
	if len(sigs) != 20 {
		t.Errorf("signatures = %d, want 20", len(sigs))
	}

	rec = httptest.NewRecorder()
	SuggestSignatures(rec, httptest.NewRequest(http.MethodGet, "/signatures/suggest?q=v+shape&limit=1", nil))
	sugg := decode[[]service.Suggestion](t, rec)
	if len(sugg) != 1 || sugg[0].Label != "V-shaped" {
		t.Errorf("suggestions = %+v", sugg)
	}

	for _, q := range []string{"", "q=warm&limit=0", "q=warm&limit=x"} {
		rec = httptest.NewRecorder()
		SuggestSignatures(rec, httptest.NewRequest(http.MethodGet, "/signatures/suggest?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: code = %d, want 400", q, rec.Code)
		}
	}
}
