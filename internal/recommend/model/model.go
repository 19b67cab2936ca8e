package model

// Колонки каталогов. Имена — контракт с источником данных.
const (
	ColModel     = "Model"
	ColSignature = "Signature"
	ColRank      = "Rank"
	ColPrice     = "Price (MSRP)"

	ColTrackName    = "track_name"
	ColTrackArtist  = "track_artist"
	ColAlbumName    = "track_album_name"
	ColGenre        = "playlist_genre"
	ColPlaylistName = "playlist_name"
	ColDanceability = "danceability"
	ColEnergy       = "energy"
	ColValence      = "valence"
	ColAcousticness = "acousticness"
)

// IEMColumns are required in catalog A.
var IEMColumns = []string{ColModel, ColSignature, ColRank, ColPrice}

// SongColumns are required in catalog B.
var SongColumns = []string{
	ColTrackName, ColTrackArtist, ColAlbumName, ColGenre, ColPlaylistName,
	ColDanceability, ColEnergy, ColValence, ColAcousticness,
}

// FeatureColumns are the song attributes that take part in the similarity distance.
var FeatureColumns = []string{ColDanceability, ColEnergy, ColValence, ColAcousticness}

// IEM is one normalized catalog A row.
type IEM struct {
	Model           string  `json:"model"`
	Signature       string  `json:"signature"`
	RankGrade       string  `json:"rankGrade"`
	RankScore       float64 `json:"rankScore"`
	Price           float64 `json:"price"`
	NormalizedPrice float64 `json:"normalizedPrice"`
	QualityScore    float64 `json:"qualityScore"`
	SignatureID     int     `json:"signatureId"`
	SignatureGroup  int     `json:"signatureGroup"` // k-means group; not used by ranking
}

// IEMQuery — параметры подбора IEM.
type IEMQuery struct {
	UseCases        []string
	Budget          *float64 // принимается, но не фильтрует
	SignatureFilter string
}

// RankedIEM is one entry of the top-3 list.
type RankedIEM struct {
	Model           string  `json:"model"`
	Signature       string  `json:"signature"`
	Price           float64 `json:"price"`
	NormalizedScore float64 `json:"normalizedScore"`
	MatchPercent    float64 `json:"matchPercent"`
	Match           string  `json:"match"` // "95.0%"
}

// Status of an IEM recommendation. Only StatusOK carries items.
type Status string

const (
	StatusOK           Status = "ok"
	StatusInvalidInput Status = "invalid_input"
	StatusNoMatches    Status = "no_matches"
)

// IEMRecommendation is the result of ranking catalog A.
type IEMRecommendation struct {
	Items   []RankedIEM `json:"items"`
	Status  Status      `json:"status"`
	Message string      `json:"message,omitempty"`
	Budget  *float64    `json:"budget,omitempty"`
}

// FeatureVector maps a song attribute name to its target value.
type FeatureVector map[string]float64

// Target returns the target for attr; attributes absent from the vector target 0.
func (v FeatureVector) Target(attr string) float64 {
	return v[attr]
}

// Song is one catalog B row after feature coercion. Undefined features are NaN.
type Song struct {
	TrackName   string
	TrackArtist string
	Album       string
	Genre       string
	Playlist    string
	Features    map[string]float64
	Row         int // позиция в исходной таблице
}

// RankedSong is a song prepared for display.
type RankedSong struct {
	TrackName   string   `json:"track_name"`
	TrackArtist string   `json:"track_artist"`
	Album       string   `json:"album"`
	Genre       string   `json:"genre"`
	Playlist    string   `json:"playlist"`
	Distance    *float64 `json:"distance,omitempty"` // nil для случайной выборки
}
