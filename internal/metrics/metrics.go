// Package metrics exposes Prometheus counters for the ingest pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Downloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptvcat_downloads_total",
		Help: "Completed resource downloads.",
	})
	DownloadRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptvcat_download_retries_total",
		Help: "Download attempts that failed and were retried.",
	})
	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptvcat_download_bytes_total",
		Help: "Bytes written by the downloader.",
	})
	GuideParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptvcat_guide_parse_errors_total",
		Help: "Recovered XML errors while parsing guide data.",
	})
	GuideChannels = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptvcat_guide_channels_total",
		Help: "Guide channels parsed.",
	})
	GuidePrograms = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptvcat_guide_programs_total",
		Help: "Guide programs parsed.",
	})
	PlaylistChannels = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptvcat_playlist_channels_total",
		Help: "Playlist channels parsed.",
	})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
