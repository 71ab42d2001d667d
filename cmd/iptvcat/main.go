// Command iptvcat: IPTV playlist and guide ingest tooling.
//
//	playlist  Parse an M3U/M3U8/HLS or XSPF playlist (file or URL), list channels
//	epg       Parse an XMLTV guide (file or URL, gzip OK), report stats
//	guide     Query a guide: now/next/upcoming for one channel
//	creds     Extract Xtream credentials from a stream or playlist URL
//	xtream    Call the panel API (account, categories, streams, series, xmltv)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/streamhaven/iptvcat/internal/catalog"
	"github.com/streamhaven/iptvcat/internal/config"
	"github.com/streamhaven/iptvcat/internal/epg"
	"github.com/streamhaven/iptvcat/internal/fetch"
	"github.com/streamhaven/iptvcat/internal/m3u"
	"github.com/streamhaven/iptvcat/internal/metrics"
	"github.com/streamhaven/iptvcat/internal/xspf"
	"github.com/streamhaven/iptvcat/internal/xtream"
)

var log = logrus.WithField("component", "cli")

func main() {
	_ = config.LoadEnvFile(".env")
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	playlistCmd := flag.NewFlagSet("playlist", flag.ExitOnError)
	playlistJSON := playlistCmd.Bool("json", false, "Emit channels as JSON")
	playlistGroup := playlistCmd.String("group", "", "Only show channels in this group")
	playlistTag := playlistCmd.String("tag", "", "Stamp a source tag onto every channel (for merged outputs)")

	epgCmd := flag.NewFlagSet("epg", flag.ExitOnError)
	epgErrors := epgCmd.Bool("errors", false, "Print recovered parse errors")
	epgWatch := epgCmd.Bool("watch", false, "Keep refreshing on the IPTVCAT_EPG_AUTO_UPDATE interval")

	guideCmd := flag.NewFlagSet("guide", flag.ExitOnError)
	guideChannel := guideCmd.String("channel", "", "Guide channel id (tvg-id)")
	guideCount := guideCmd.Int("n", 5, "Number of upcoming programs to show")
	guideOffset := guideCmd.Float64("offset", 0, "Time offset in hours (default: IPTVCAT_TIME_OFFSET_HOURS)")

	credsCmd := flag.NewFlagSet("creds", flag.ExitOnError)
	credsCheck := credsCmd.Bool("check", false, "Verify the credentials against the panel account endpoint")

	xtreamCmd := flag.NewFlagSet("xtream", flag.ExitOnError)
	xtreamAction := xtreamCmd.String("action", "account", "account | live-cats | vod-cats | series-cats | live | vod | series | xmltv")
	xtreamCategory := xtreamCmd.String("category", "", "Category id for live/vod/series")

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <playlist|epg|guide|creds|xtream> [flags] [source]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  playlist  Parse an M3U/M3U8/HLS or XSPF playlist, list channels\n")
		fmt.Fprintf(os.Stderr, "  epg       Parse an XMLTV guide, report stats\n")
		fmt.Fprintf(os.Stderr, "  guide     Query a guide: now/next/upcoming for one channel\n")
		fmt.Fprintf(os.Stderr, "  creds     Extract Xtream credentials from a URL\n")
		fmt.Fprintf(os.Stderr, "  xtream    Call the panel API\n")
		os.Exit(1)
	}

	cfg := config.Load()
	startMetrics(cfg.MetricsListen)
	dl := fetch.New(fetch.Config{
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		UserAgent:      cfg.UserAgent,
	})
	ctx := context.Background()

	switch os.Args[1] {
	case "playlist":
		_ = playlistCmd.Parse(os.Args[2:])
		src := sourceArg(playlistCmd, cfg.M3UURLOrBuild())
		content, err := loadContent(ctx, dl, src)
		if err != nil {
			log.WithError(err).Fatal("load playlist")
		}
		channels, epgURL, err := parsePlaylist(content)
		if err != nil {
			log.WithError(err).Fatal("parse playlist")
		}
		metrics.PlaylistChannels.Add(float64(len(channels)))
		if *playlistGroup != "" {
			channels = filterGroup(channels, *playlistGroup)
		}
		if *playlistTag != "" {
			channels = catalog.Tag(channels, *playlistTag)
		}
		if *playlistJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(channels); err != nil {
				log.WithError(err).Fatal("encode channels")
			}
			return
		}
		for _, ch := range channels {
			line := ch.Name
			if ch.Group != "" {
				line += "  [" + ch.Group + "]"
			}
			fmt.Printf("%s\n    %s\n", line, ch.URL)
		}
		fmt.Printf("%d channels", len(channels))
		if epgURL != "" {
			fmt.Printf(", EPG: %s", epgURL)
		}
		fmt.Println()

	case "epg":
		_ = epgCmd.Parse(os.Args[2:])
		src := sourceArg(epgCmd, cfg.XMLTVURLOrBuild())
		data, err := loadGuide(ctx, dl, src)
		if err != nil {
			log.WithError(err).Fatal("load guide")
		}
		printGuideStats(data, *epgErrors)
		if *epgWatch {
			interval, ok := cfg.AutoUpdate.Interval()
			if !ok {
				log.Fatal("epg: -watch requires IPTVCAT_EPG_AUTO_UPDATE to be on")
			}
			log.WithField("interval", interval).Info("watching guide source")
			for {
				time.Sleep(interval)
				data, err := loadGuide(ctx, dl, src)
				if err != nil {
					log.WithError(err).Warn("guide refresh")
					continue
				}
				printGuideStats(data, *epgErrors)
			}
		}

	case "guide":
		_ = guideCmd.Parse(os.Args[2:])
		if *guideChannel == "" {
			log.Fatal("guide: -channel is required")
		}
		src := sourceArg(guideCmd, cfg.XMLTVURLOrBuild())
		data, err := loadGuide(ctx, dl, src)
		if err != nil {
			log.WithError(err).Fatal("load guide")
		}
		offset := *guideOffset
		if offset == 0 {
			offset = cfg.TimeOffsetHours
		}
		now := epg.AdjustedNow(offset)
		if cur, ok := data.CurrentProgram(*guideChannel, now); ok {
			fmt.Printf("Now:  %s - %s  %s\n", epg.FormatTime(cur.Start), epg.FormatTime(cur.Stop), cur.Title)
		} else {
			fmt.Println("Now:  (no program)")
		}
		if next, ok := data.NextProgram(*guideChannel, now); ok {
			fmt.Printf("Next: %s - %s  %s\n", epg.FormatTime(next.Start), epg.FormatTime(next.Stop), next.Title)
		}
		upcoming := data.UpcomingPrograms(*guideChannel, now, *guideCount)
		for _, p := range upcoming {
			line := p.Title
			if p.Episode != "" {
				line += " (" + p.Episode + ")"
			}
			fmt.Printf("      %s  %s\n", epg.FormatDateTime(p.Start), line)
		}

	case "creds":
		_ = credsCmd.Parse(os.Args[2:])
		if credsCmd.NArg() < 1 {
			log.Fatal("creds: URL argument required")
		}
		rawurl := credsCmd.Arg(0)
		creds, ok := m3u.ExtractCredentials(rawurl)
		if !ok {
			log.Fatal("no credentials found in URL")
		}
		fmt.Printf("Server:   %s\nUsername: %s\nPassword: %s\n", creds.Server, creds.Username, creds.Password)
		if *credsCheck {
			client := newXtreamClient(cfg, creds.Server, creds.Username, creds.Password)
			acc, err := client.AccountInfo()
			if err != nil {
				log.WithError(err).Fatal("account check")
			}
			fmt.Printf("Status:   %s (expires %s, %s/%s connections)\n",
				acc.UserInfo.Status, formatExpiry(acc.UserInfo.ExpDate),
				acc.UserInfo.ActiveCons, acc.UserInfo.MaxConnections)
		}

	case "xtream":
		_ = xtreamCmd.Parse(os.Args[2:])
		if cfg.ProviderBaseURL == "" || cfg.ProviderUser == "" || cfg.ProviderPass == "" {
			log.Fatal("xtream: set IPTVCAT_PROVIDER_URL, IPTVCAT_PROVIDER_USER, IPTVCAT_PROVIDER_PASS")
		}
		client := newXtreamClient(cfg, cfg.ProviderBaseURL, cfg.ProviderUser, cfg.ProviderPass)
		if err := runXtreamAction(client, *xtreamAction, *xtreamCategory); err != nil {
			log.WithError(err).Fatal("xtream")
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(1)
	}
}

// sourceArg returns the positional source argument, falling back to the
// configured URL.
func sourceArg(fs *flag.FlagSet, fallback string) string {
	if fs.NArg() > 0 {
		return fs.Arg(0)
	}
	if fallback == "" {
		log.Fatal("no source given and none configured")
	}
	return fallback
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func loadContent(ctx context.Context, dl *fetch.Downloader, src string) (string, error) {
	if isURL(src) {
		return dl.FetchString(ctx, src)
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func loadGuide(ctx context.Context, dl *fetch.Downloader, src string) (*epg.Data, error) {
	if isURL(src) {
		data, err := dl.DownloadAndParse(ctx, src, guideProgress)
		fmt.Fprintln(os.Stderr)
		return data, err
	}
	return epg.ParseFile(src)
}

// guideProgress renders download progress on stderr; guide files routinely
// run past 100 MB and the panel side is slow.
func guideProgress(written, total int64) {
	if total > 0 {
		fmt.Fprintf(os.Stderr, "\rdownloading guide: %d%% (%d/%d bytes)", written*100/total, written, total)
		return
	}
	fmt.Fprintf(os.Stderr, "\rdownloading guide: %d bytes", written)
}

func printGuideStats(data *epg.Data, showErrors bool) {
	fmt.Printf("%d channels, %d programs, %d parse errors\n",
		len(data.Channels), data.ProgramCount(), data.ParseErrorCount)
	if showErrors {
		for _, e := range data.ParseErrors {
			fmt.Println(" ", e)
		}
	}
}

// parsePlaylist sniffs XSPF vs M3U and returns channels plus any EPG URL
// advertised in an M3U header.
func parsePlaylist(content string) ([]catalog.Channel, string, error) {
	if xspf.IsXSPF(content) {
		pl, err := xspf.Parse(content)
		if err != nil {
			return nil, "", err
		}
		return pl.Channels(), "", nil
	}
	pl := m3u.ParsePlaylist(content)
	return pl.Channels, pl.EPGURL, nil
}

func filterGroup(channels []catalog.Channel, group string) []catalog.Channel {
	out := channels[:0]
	for _, ch := range channels {
		if strings.EqualFold(ch.Group, group) {
			out = append(out, ch)
		}
	}
	return out
}

func newXtreamClient(cfg *config.Config, server, user, pass string) *xtream.Client {
	c := xtream.NewClient(server, user, pass)
	if cfg.UserAgent != "" {
		c = c.WithUserAgent(cfg.UserAgent)
	}
	c.InsecureTLS = cfg.InsecureTLS
	return c
}

func runXtreamAction(client *xtream.Client, action, category string) error {
	switch action {
	case "account":
		acc, err := client.AccountInfo()
		if err != nil {
			return err
		}
		fmt.Printf("User:    %s (%s)\n", acc.UserInfo.Username, acc.UserInfo.Status)
		fmt.Printf("Expires: %s\n", formatExpiry(acc.UserInfo.ExpDate))
		fmt.Printf("Server:  %s:%s (%s)\n", acc.ServerInfo.URL, acc.ServerInfo.Port, acc.ServerInfo.Timezone)
		return nil
	case "live-cats":
		return printCategories(client.LiveCategories())
	case "vod-cats":
		return printCategories(client.VODCategories())
	case "series-cats":
		return printCategories(client.SeriesCategories())
	case "live":
		return printStreams(client.LiveStreams(category))
	case "vod":
		return printStreams(client.VODStreams(category))
	case "series":
		series, err := client.Series(category)
		if err != nil {
			return err
		}
		for _, s := range series {
			line := s.Name
			if s.Genre != "" {
				line += "  [" + s.Genre + "]"
			}
			fmt.Printf("%8d  %s\n", s.SeriesID, line)
		}
		return nil
	case "xmltv":
		doc, err := client.XMLTV()
		if err != nil {
			return err
		}
		fmt.Print(doc)
		return nil
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func printCategories(cats []xtream.Category, err error) error {
	if err != nil {
		return err
	}
	for _, c := range cats {
		fmt.Printf("%6s  %s\n", c.CategoryID, c.CategoryName)
	}
	return nil
}

func printStreams(streams []xtream.Stream, err error) error {
	if err != nil {
		return err
	}
	for _, s := range streams {
		line := s.Name
		if s.EPGChannelID != "" {
			line += "  (" + s.EPGChannelID + ")"
		}
		fmt.Printf("%8d  %s\n", s.StreamID, line)
	}
	return nil
}

// formatExpiry renders the panel's epoch-as-string expiry date.
func formatExpiry(expDate string) string {
	if expDate == "" {
		return "never"
	}
	var epoch int64
	if _, err := fmt.Sscanf(expDate, "%d", &epoch); err != nil {
		return expDate
	}
	return time.Unix(epoch, 0).Format("2006-01-02")
}

// startMetrics exposes the Prometheus endpoint when configured.
func startMetrics(listen string) {
	if listen == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(listen, mux); err != nil {
			log.WithError(err).Warn("metrics listener stopped")
		}
	}()
}
