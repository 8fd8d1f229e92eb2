package status

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eliotdl/yt-any/server/config"
	"github.com/eliotdl/yt-any/server/cookies"
	"github.com/eliotdl/yt-any/server/sys"
)

type report struct {
	CookiesAvailable bool             `json:"cookies_available"`
	AvailableCookies []cookies.Record `json:"available_cookies"`
	FFmpegAvailable  bool             `json:"ffmpeg_available"`
	FreeSpace        uint64           `json:"free_space"`
	Notes            []string         `json:"notes"`
}

func ApplyRouter(store *cookies.Store) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", handler(store))
	}
}

func handler(store *cookies.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conf := config.Instance()

		available := store.List()

		free, _ := sys.FreeSpace(conf.Paths.DownloadPath)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report{
			CookiesAvailable: len(available) > 0,
			AvailableCookies: available,
			FFmpegAvailable:  sys.FFmpegAvailable(conf.Paths.FFmpegPath),
			FreeSpace:        free,
			Notes: []string{
				"Supports watch links, Shorts, Music, and live replays.",
				"Upload cookies.txt from your browser to access age/region restricted videos.",
				"Cookie files are automatically deleted after 24 hours.",
				"Platform-specific configurations for optimal compatibility.",
			},
		})
	}
}
