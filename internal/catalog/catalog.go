// Package catalog defines the normalized channel and playlist model shared by
// every parser in this module. M3U, HLS, and XSPF inputs all reduce to the
// same Channel shape so downstream consumers never care which container a
// stream arrived in.
package catalog

// Channel is one playable stream plus whatever metadata the source carried.
// Optional fields are left at their zero value when the source omits them.
type Channel struct {
	Name string `json:"name"`
	URL  string `json:"url"`

	Group   string `json:"group,omitempty"`
	TVGID   string `json:"tvg_id,omitempty"`
	TVGName string `json:"tvg_name,omitempty"`
	Logo    string `json:"logo,omitempty"`

	ChannelID     string `json:"channel_id,omitempty"`
	ChannelNumber int    `json:"channel_number,omitempty"`
	TVGChno       int    `json:"tvg_chno,omitempty"`

	Catchup     string `json:"catchup,omitempty"`
	CatchupDays int    `json:"catchup_days,omitempty"`

	// SourceTag identifies which configured source produced this channel
	// when several playlists are merged.
	SourceTag string `json:"source_tag,omitempty"`
}

// Number returns the channel's display number, preferring channel-number
// over tvg-chno. Zero means the source assigned none.
func (c Channel) Number() int {
	if c.ChannelNumber != 0 {
		return c.ChannelNumber
	}
	return c.TVGChno
}

// Playlist is the parsed form of one playlist document.
type Playlist struct {
	Channels []Channel
	// EPGURL is the x-tvg-url / url-tvg hint from the #EXTM3U header,
	// empty when the header carried none.
	EPGURL string
}

// Tag stamps sourceTag onto every channel in place and returns the slice.
func Tag(channels []Channel, sourceTag string) []Channel {
	for i := range channels {
		channels[i].SourceTag = sourceTag
	}
	return channels
}
