package extractor

import "strings"

// yt-dlp progress templates. One JSON object per line on stdout; the
// download template fires on every progress tick, the postprocess one
// after each post-processing step (the filename reported during
// download does not carry the post-processed extension).
const downloadTemplate = `download:
{
	"status":"downloading",
	"downloaded_bytes":%(progress.downloaded_bytes)j,
	"total_bytes":%(progress.total_bytes)j,
	"total_bytes_estimate":%(progress.total_bytes_estimate)j,
	"speed_str":%(progress._speed_str)j,
	"eta_str":%(progress._eta_str)j,
	"filename":%(progress.filename)j
}`

const postprocessTemplate = `postprocess:
{
	"filepath":%(info.filepath)j
}`

var templateReplacer = strings.NewReplacer("\n", "", "\t", "", " ", "")

// progressLine mirrors the download template.
type progressLine struct {
	Status             string   `json:"status"`
	DownloadedBytes    *float64 `json:"downloaded_bytes"`
	TotalBytes         *float64 `json:"total_bytes"`
	TotalBytesEstimate *float64 `json:"total_bytes_estimate"`
	SpeedStr           string   `json:"speed_str"`
	EtaStr             string   `json:"eta_str"`
	Filename           string   `json:"filename"`
}

// postprocessLine mirrors the postprocess template.
type postprocessLine struct {
	FilePath string `json:"filepath"`
}

// ProgressKind discriminates callback events.
type ProgressKind int

const (
	// a download tick with byte counts
	ProgressDownloading ProgressKind = iota
	// post-processing started, FilePath carries the tentative artifact
	ProgressProcessing
)

// Progress is one callback payload. Byte counts are -1 when the
// extractor did not report them.
type Progress struct {
	Kind       ProgressKind
	Filename   string
	FilePath   string
	Downloaded int64
	Total      int64
	Speed      string
	Eta        string
}

// ProgressFunc receives progress events synchronously on the job
// goroutine; it must not block.
type ProgressFunc func(Progress)

// Result is what a finished fetch hands back to the runner.
type Result struct {
	// Best known path of the produced artifact before filesystem
	// probing; from the last postprocess event, else the last
	// download destination.
	TentativePath string
}
