package m3u

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/streamhaven/iptvcat/internal/catalog"
)

// parseHLS handles HLS master and media playlists. Master playlists yield one
// channel per variant stream plus one per non-default alternate rendition.
// A media playlist (segments only, no variants) yields a single placeholder
// channel with an empty URL; the caller substitutes the request URL since the
// parser never sees its own document's address.
func parseHLS(content string) []catalog.Channel {
	var channels []catalog.Channel
	var pendingStreamInf string
	havePending := false
	sawStreamInf := false
	sawTargetDuration := false

	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(nil, maxLineSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXT-X-I-FRAME-STREAM-INF"):
			// I-frame trick-play indexes, never playable channels.
			continue
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			pendingStreamInf = line[len("#EXT-X-STREAM-INF:"):]
			havePending = true
			sawStreamInf = true
		case strings.HasPrefix(line, "#EXT-X-MEDIA:"):
			if ch, ok := mediaChannel(line[len("#EXT-X-MEDIA:"):]); ok {
				channels = append(channels, ch)
			}
		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION"):
			sawTargetDuration = true
		case strings.HasPrefix(line, "#"):
			continue
		default:
			if havePending {
				channels = append(channels, catalog.Channel{
					Name:  variantName(pendingStreamInf),
					URL:   line,
					Group: "HLS",
				})
				havePending = false
			}
		}
	}

	if !sawStreamInf && sawTargetDuration {
		return []catalog.Channel{{Name: "HLS Stream", URL: "", Group: "HLS"}}
	}
	return channels
}

// variantName builds a display name for a variant stream: an explicit NAME
// attribute wins, otherwise the name is synthesized from resolution,
// bandwidth, and dynamic-range labels.
func variantName(attrs string) string {
	if name := hlsAttr(attrs, "NAME"); name != "" {
		return name
	}
	var parts []string
	if res := hlsAttr(attrs, "RESOLUTION"); res != "" {
		parts = append(parts, res)
	}
	if bw := hlsAttr(attrs, "BANDWIDTH"); bw != "" {
		if n, err := strconv.Atoi(bw); err == nil {
			parts = append(parts, formatBandwidth(n))
		}
	}
	if hdr := hdrLabel(attrs); hdr != "" {
		parts = append(parts, hdr)
	}
	if len(parts) == 0 {
		return "HLS Variant"
	}
	return strings.Join(parts, " ")
}

// hdrLabel classifies the variant's dynamic range. The Dolby Vision check is
// a codec substring heuristic (dvh/dvhe tokens); feeds using other Dolby
// signaling strings come out as HDR10.
func hdrLabel(attrs string) string {
	switch hlsAttr(attrs, "VIDEO-RANGE") {
	case "SDR":
		return "SDR"
	case "PQ", "HLG":
		if strings.Contains(hlsAttr(attrs, "CODECS"), "dvh") {
			return "Dolby Vision"
		}
		return "HDR10"
	}
	return ""
}

func formatBandwidth(bps int) string {
	switch {
	case bps < 1000:
		return fmt.Sprintf("%d bps", bps)
	case bps < 1000000:
		return fmt.Sprintf("%d Kbps", bps/1000)
	default:
		return fmt.Sprintf("%.1f Mbps", float64(bps)/1000000)
	}
}

// mediaChannel turns an EXT-X-MEDIA rendition into a channel. Renditions
// without a URI are embedded in their variant; DEFAULT=YES renditions are
// already reachable through the variant they back. Both are skipped.
func mediaChannel(attrs string) (catalog.Channel, bool) {
	uri := hlsAttr(attrs, "URI")
	if uri == "" || hlsAttr(attrs, "DEFAULT") == "YES" {
		return catalog.Channel{}, false
	}

	var group string
	switch hlsAttr(attrs, "TYPE") {
	case "VIDEO":
		group = "HLS Video"
	case "AUDIO":
		group = "HLS Audio"
	case "SUBTITLES":
		group = "HLS Subtitles"
	default:
		group = "HLS Alternate"
	}

	name := hlsAttr(attrs, "NAME")
	if gid := hlsAttr(attrs, "GROUP-ID"); gid != "" && name != "" {
		name = name + " (" + gid + ")"
	}
	if name == "" {
		name = group
	}

	return catalog.Channel{Name: name, URL: uri, Group: group}, true
}

// hlsAttr extracts key's value from an HLS attribute list: quoted values run
// between the next two quote characters, unquoted values to the next comma.
func hlsAttr(attrs, key string) string {
	idx := strings.Index(attrs, key+"=")
	if idx < 0 {
		return ""
	}
	rest := attrs[idx+len(key)+1:]
	if strings.HasPrefix(rest, `"`) {
		rest = rest[1:]
		if end := strings.IndexByte(rest, '"'); end >= 0 {
			return rest[:end]
		}
		return rest
	}
	if end := strings.IndexByte(rest, ','); end >= 0 {
		return rest[:end]
	}
	return rest
}
