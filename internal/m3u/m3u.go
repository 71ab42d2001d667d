// Package m3u parses M3U/M3U8 playlists, including the HLS master and media
// playlist variants, into the shared channel model. The grammar is deliberately
// loose: real-world provider playlists drop the # on EXTINF lines, put
// attributes on either side of the duration comma, and leak stray quote
// characters into the attribute list. The parser recovers from all of that
// instead of rejecting the document.
package m3u

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/streamhaven/iptvcat/internal/catalog"
)

const maxLineSize = 1 << 20 // 1 MiB per line

// hlsTags are the structural tags that mark a document as HLS rather than a
// classic channel list.
var hlsTags = []string{
	"#EXT-X-VERSION",
	"#EXT-X-TARGETDURATION",
	"#EXT-X-MEDIA-SEQUENCE",
	"#EXT-X-STREAM-INF",
	"#EXT-X-PLAYLIST-TYPE",
	"#EXT-X-ENDLIST",
}

// IsHLS reports whether content carries any HLS structural tag.
func IsHLS(content string) bool {
	for _, tag := range hlsTags {
		if strings.Contains(content, tag) {
			return true
		}
	}
	return false
}

// ParsePlaylist parses content and returns the channels plus the EPG URL
// from the #EXTM3U header, if the header carries one.
func ParsePlaylist(content string) catalog.Playlist {
	var pl catalog.Playlist
	first := content
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		first = content[:nl]
	}
	first = strings.TrimSpace(first)
	if strings.HasPrefix(first, "#EXTM3U") {
		pl.EPGURL = headerAttr(first, "x-tvg-url")
		if pl.EPGURL == "" {
			pl.EPGURL = headerAttr(first, "url-tvg")
		}
	}
	pl.Channels = Parse(content)
	return pl
}

// Parse parses content and returns the channels in document order.
// HLS documents are routed to the HLS sub-grammar.
func Parse(content string) []catalog.Channel {
	if IsHLS(content) {
		return parseHLS(content)
	}
	return parseClassic(content)
}

// headerAttr extracts a quoted attribute value from the #EXTM3U header line.
// The key match is case-insensitive.
func headerAttr(line, key string) string {
	search := key + `="`
	start := strings.Index(strings.ToLower(line), search)
	if start < 0 {
		return ""
	}
	rest := line[start+len(search):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

func parseClassic(content string) []catalog.Channel {
	var channels []catalog.Channel
	var attrs map[string]string
	haveName := false
	var name string

	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(nil, maxLineSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		var info string
		switch {
		case strings.HasPrefix(line, "#EXTINF:"):
			info = line[len("#EXTINF:"):]
		case strings.HasPrefix(line, "EXTINF:"):
			// Some feeds drop the leading hash.
			info = line[len("EXTINF:"):]
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		default:
			// URL line: pairs with the preceding metadata line, if any.
			if haveName {
				channels = append(channels, buildChannel(name, line, attrs))
				haveName = false
			}
			continue
		}

		attrs = map[string]string{}
		scanAttrs(info, attrs)
		if comma := strings.LastIndexByte(info, ','); comma >= 0 {
			name = strings.TrimSpace(info[comma+1:])
			haveName = true
		} else {
			haveName = false
		}
	}
	return channels
}

func buildChannel(name, url string, attrs map[string]string) catalog.Channel {
	return catalog.Channel{
		Name:          name,
		URL:           url,
		Group:         attrs["group-title"],
		TVGID:         attrs["tvg-id"],
		TVGName:       attrs["tvg-name"],
		Logo:          attrs["tvg-logo"],
		TVGChno:       atoiOrZero(attrs["tvg-chno"]),
		ChannelID:     attrs["channel-id"],
		ChannelNumber: atoiOrZero(attrs["channel-number"]),
		Catchup:       attrs["catchup"],
		CatchupDays:   atoiOrZero(attrs["catchup-days"]),
	}
}

// atoiOrZero parses s as an int, dropping unparseable values instead of
// failing the record.
func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// scanAttrs walks info left to right collecting key=value pairs. Values are
// either double-quoted (with \" escapes) or unquoted up to the next space or
// comma. Stray quotes and commas between pairs are skipped, which also makes
// the scan indifferent to whether attributes sit before or after the duration
// comma. Keys are lowercased; the display name tail never contains '=' in
// practice, so the scan stops naturally once it runs out of pairs.
func scanAttrs(info string, attrs map[string]string) {
	i, n := 0, len(info)

	// Skip the duration token (e.g. "-1", "10.000000"), which some feeds
	// pad with whitespace after the colon.
	for i < n && (info[i] == ' ' || info[i] == '\t') {
		i++
	}
	for i < n && (info[i] == '-' || info[i] == '.' || (info[i] >= '0' && info[i] <= '9')) {
		i++
	}

	for i < n {
		// Skip separators and stray quote characters before a key.
		for i < n && (info[i] == ' ' || info[i] == '\t' || info[i] == ',' || info[i] == '"') {
			i++
		}

		keyStart := i
		for i < n && info[i] != '=' {
			if info[i] == ',' {
				// Everything from here on is the display name.
				return
			}
			i++
		}
		if i >= n {
			return
		}
		key := strings.ToLower(strings.TrimSpace(info[keyStart:i]))
		i++ // consume '='
		if key == "" {
			continue
		}

		if i < n && info[i] == '"' {
			i++
			var val strings.Builder
			for i < n {
				if info[i] == '\\' && i+1 < n && info[i+1] == '"' {
					val.WriteByte('"')
					i += 2
					continue
				}
				if info[i] == '"' {
					i++
					break
				}
				val.WriteByte(info[i])
				i++
			}
			attrs[key] = val.String()
			continue
		}

		valStart := i
		for i < n && info[i] != ' ' && info[i] != '\t' && info[i] != ',' {
			i++
		}
		if i > valStart {
			attrs[key] = info[valStart:i]
		}
	}
}
