package handler

import (
	"fmt"
	"net/url"
	"strings"
)

func amazonLink(modelName string) string {
	return "https://www.amazon.com/s?k=" + url.QueryEscape(modelName)
}

func headphoneZoneLink(modelName string) string {
	return "https://www.headphonezone.in/search?q=" + url.QueryEscape(modelName)
}

func spotifyLink(track, artist string) string {
	return "https://open.spotify.com/search/" + url.PathEscape(strings.TrimSpace(track+" "+artist))
}

func priceDisplay(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}
