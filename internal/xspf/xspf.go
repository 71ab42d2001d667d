// Package xspf parses XSPF ("spiff") playlists, the XML playlist format
// written by VLC and friends. Parsing is boundary-search based rather than a
// general XML parse: real-world XSPF is shallow and regular enough that
// locating tag spans directly is both faster and more forgiving than a strict
// parser, and vendor extension blocks are skipped for free.
package xspf

import (
	"errors"
	"strconv"
	"strings"

	"github.com/streamhaven/iptvcat/internal/catalog"
)

// ErrNotXSPF is returned when the content fails the minimal shape check.
var ErrNotXSPF = errors.New("not a valid XSPF playlist")

// Track is one entry in an XSPF playlist. Location is the only required
// field; tracks without one are dropped during parsing.
type Track struct {
	Location   string
	Title      string
	Creator    string
	Album      string
	Annotation string
	// Duration in milliseconds.
	Duration int
	Image    string
	Info     string
	TrackNum int
}

// Playlist is a parsed XSPF document.
type Playlist struct {
	Title      string
	Creator    string
	Annotation string
	Info       string
	Image      string
	Tracks     []Track
}

// IsXSPF reports whether content looks like an XSPF document.
func IsXSPF(content string) bool {
	return strings.Contains(content, "<playlist") &&
		(strings.Contains(content, `xmlns="http://xspf.org/ns/0/"`) ||
			strings.Contains(content, `xmlns='http://xspf.org/ns/0/'`) ||
			strings.Contains(content, "<trackList"))
}

// Parse parses an XSPF document. Content that does not carry both a
// <playlist> and a <trackList> opener is rejected with ErrNotXSPF.
func Parse(content string) (*Playlist, error) {
	if !strings.Contains(content, "<playlist") || !strings.Contains(content, "<trackList") {
		return nil, ErrNotXSPF
	}

	pl := &Playlist{}

	listStart := strings.Index(content, "<trackList")
	listEnd := strings.Index(content, "</trackList>")
	if listStart < 0 {
		listStart = len(content)
	}
	if listEnd < 0 {
		listEnd = len(content)
	}

	// Playlist-level metadata lives before the trackList.
	header := content[:listStart]
	pl.Title = extractTag(header, "title")
	pl.Creator = extractTag(header, "creator")
	pl.Annotation = extractTag(header, "annotation")
	pl.Info = extractTag(header, "info")
	pl.Image = extractTag(header, "image")

	if listStart < listEnd {
		trackList := content[listStart:listEnd]
		pos := 0
		for pos < len(trackList) {
			start := strings.Index(trackList[pos:], "<track")
			if start < 0 {
				break
			}
			start += pos
			end := strings.Index(trackList[start:], "</track>")
			if end < 0 {
				break
			}
			end += start + len("</track>")
			if tr, ok := parseTrack(trackList[start:end]); ok {
				pl.Tracks = append(pl.Tracks, tr)
			}
			pos = end
		}
	}

	return pl, nil
}

func parseTrack(content string) (Track, bool) {
	location := extractTag(content, "location")
	if location == "" {
		return Track{}, false
	}
	return Track{
		Location:   location,
		Title:      extractTag(content, "title"),
		Creator:    extractTag(content, "creator"),
		Album:      extractTag(content, "album"),
		Annotation: extractTag(content, "annotation"),
		Duration:   atoiOrZero(extractTag(content, "duration")),
		Image:      extractTag(content, "image"),
		Info:       extractTag(content, "info"),
		TrackNum:   atoiOrZero(extractTag(content, "trackNum")),
	}, true
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// extractTag returns the trimmed, entity-decoded text inside the first
// <tag>...</tag> span, or "" when the tag is absent, self-closing, or empty.
func extractTag(content, tag string) string {
	start := strings.Index(content, "<"+tag)
	if start < 0 {
		return ""
	}
	tagEnd := strings.IndexByte(content[start:], '>')
	if tagEnd < 0 {
		return ""
	}
	tagEnd += start
	if strings.Contains(content[start:tagEnd+1], "/>") {
		return ""
	}
	end := strings.Index(content[tagEnd+1:], "</"+tag+">")
	if end < 0 {
		return ""
	}
	return decodeEntities(strings.TrimSpace(content[tagEnd+1 : tagEnd+1+end]))
}

// decodeEntities resolves the handful of entities XSPF documents actually
// contain. The ampersand check keeps the common case allocation-free.
func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&#39;", "'",
	)
	return r.Replace(s)
}

// mediaExts are stripped when a track's display name falls back to the
// location's filename.
var mediaExts = []string{".mp3", ".ogg", ".m4a", ".flac", ".ts", ".m3u8"}

// Channels converts the playlist to the unified channel model. Display names
// fall back to the location filename, group labels are synthesized from
// creator/album with the playlist title as a last resort.
func (p *Playlist) Channels() []catalog.Channel {
	channels := make([]catalog.Channel, 0, len(p.Tracks))
	for _, tr := range p.Tracks {
		if tr.Location == "" {
			continue
		}

		name := tr.Title
		if name == "" {
			name = tr.Location
			if i := strings.LastIndexByte(name, '/'); i >= 0 {
				name = name[i+1:]
			}
			for _, ext := range mediaExts {
				name = strings.TrimSuffix(name, ext)
			}
			if name == "" {
				name = "Unknown"
			}
		}

		var group string
		switch {
		case tr.Creator != "" && tr.Album != "":
			group = tr.Creator + " - " + tr.Album
		case tr.Creator != "":
			group = tr.Creator
		case tr.Album != "":
			group = tr.Album
		default:
			group = p.Title
		}

		channels = append(channels, catalog.Channel{
			Name:          name,
			URL:           tr.Location,
			Group:         group,
			Logo:          tr.Image,
			TVGName:       tr.Title,
			TVGChno:       tr.TrackNum,
			ChannelNumber: tr.TrackNum,
		})
	}
	return channels
}
