package formats

import "strings"

// BestSentinel disables the height cap and merges the best available
// video and audio streams.
const BestSentinel = "best"

const (
	AudioSelector = "bestaudio/best"
	PhotoSelector = "best"

	// Post-extraction transcode target for audio downloads.
	AudioCodec   = "mp3"
	AudioQuality = "192K"
)

// VideoSelector builds a format selector honoring a maximum height.
// Numeric qualities ("1080p", "720p") cap the height and prefer MP4
// containers, falling back to any container, then best-audio plus
// best-video, then best overall.
func VideoSelector(quality string) string {
	if quality == BestSentinel {
		return "bv*+ba/b"
	}

	var digits strings.Builder
	for _, r := range quality {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	h := digits.String()
	if h == "" {
		return "bv*+ba/b"
	}

	return "((bv*[height<=" + h + "][ext=mp4]/bv*[height<=" + h + "])+(ba[ext=m4a]/ba))/b[height<=" + h + "]"
}
