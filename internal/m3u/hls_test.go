package m3u

import (
	"strings"
	"testing"
)

func TestHLSMediaPlaylistPlaceholder(t *testing.T) {
	content := `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:9.6,
segment0.ts
#EXTINF:10.0,
segment1.ts
#EXT-X-ENDLIST`
	pl := ParsePlaylist(content)
	if len(pl.Channels) != 1 {
		t.Fatalf("expected 1 placeholder channel, got %d", len(pl.Channels))
	}
	ch := pl.Channels[0]
	if ch.Name != "HLS Stream" || ch.URL != "" || ch.Group != "HLS" {
		t.Errorf("placeholder = %+v", ch)
	}
}

func TestHLSMasterBasic(t *testing.T) {
	content := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=640x360
low_quality.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2560000,RESOLUTION=854x480
medium_quality.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5120000,RESOLUTION=1280x720
high_quality.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=8192000,RESOLUTION=1920x1080
ultra_quality.m3u8`
	channels := Parse(content)
	if len(channels) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(channels))
	}
	if !strings.Contains(channels[0].Name, "640x360") || !strings.Contains(channels[0].Name, "1.3 Mbps") {
		t.Errorf("variant 0 name = %q", channels[0].Name)
	}
	if channels[0].URL != "low_quality.m3u8" {
		t.Errorf("variant 0 url = %q", channels[0].URL)
	}
	if !strings.Contains(channels[3].Name, "1920x1080") || !strings.Contains(channels[3].Name, "8.2 Mbps") {
		t.Errorf("variant 3 name = %q", channels[3].Name)
	}
}

func TestHLSBandwidthOnlyNames(t *testing.T) {
	content := `#EXTM3U
#EXT-X-VERSION:3
#JUST A COMMENT
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=300000
chunklist-b300000.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=600000
chunklist-b600000.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=1500000
chunklist-b1500000.m3u8`
	channels := Parse(content)
	if len(channels) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(channels))
	}
	for i, want := range []string{"300 Kbps", "600 Kbps", "1.5 Mbps"} {
		if channels[i].Name != want {
			t.Errorf("variant %d name = %q, want %q", i, channels[i].Name, want)
		}
	}
}

func TestHLSBandwidthFormatting(t *testing.T) {
	content := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=500
stream1.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000
stream2.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=500000
stream3.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000
stream4.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=50000000
stream5.m3u8`
	channels := Parse(content)
	if len(channels) != 5 {
		t.Fatalf("expected 5 variants, got %d", len(channels))
	}
	want := []string{"500 bps", "5 Kbps", "500 Kbps", "5.0 Mbps", "50.0 Mbps"}
	for i := range want {
		if channels[i].Name != want[i] {
			t.Errorf("variant %d name = %q, want %q", i, channels[i].Name, want[i])
		}
	}
}

func TestHLSVideoRangeLabels(t *testing.T) {
	content := `#EXTM3U
#EXT-X-VERSION:7
#EXT-X-STREAM-INF:BANDWIDTH=3971374,VIDEO-RANGE=SDR,CODECS="hvc1.2.4.L123.B0",RESOLUTION=1280x720
sdr_720/prog_index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5327059,VIDEO-RANGE=PQ,CODECS="dvh1.05.01",RESOLUTION=1280x720
dolby_720/prog_index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5280654,VIDEO-RANGE=PQ,CODECS="hvc1.2.4.L123.B0",RESOLUTION=1280x720
hdr10_720/prog_index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000,VIDEO-RANGE=HLG,RESOLUTION=1920x1080
hlg_stream.m3u8`
	channels := Parse(content)
	if len(channels) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(channels))
	}
	if !strings.Contains(channels[0].Name, "SDR") || !strings.Contains(channels[0].Name, "1280x720") {
		t.Errorf("sdr name = %q", channels[0].Name)
	}
	if !strings.Contains(channels[1].Name, "Dolby Vision") {
		t.Errorf("dolby name = %q", channels[1].Name)
	}
	if !strings.Contains(channels[2].Name, "HDR10") {
		t.Errorf("hdr10 name = %q", channels[2].Name)
	}
	if !strings.Contains(channels[3].Name, "HDR10") {
		t.Errorf("hlg name = %q", channels[3].Name)
	}
}

func TestHLSIgnoresIFrameStreams(t *testing.T) {
	content := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000
low/audio-video.m3u8
#EXT-X-I-FRAME-STREAM-INF:BANDWIDTH=86000,URI="low/iframe.m3u8",PROGRAM-ID=1
#EXT-X-STREAM-INF:BANDWIDTH=2560000
mid/audio-video.m3u8
#EXT-X-I-FRAME-STREAM-INF:BANDWIDTH=150000,URI="mid/iframe.m3u8",PROGRAM-ID=1
#EXT-X-STREAM-INF:BANDWIDTH=7680000
hi/audio-video.m3u8
#EXT-X-I-FRAME-STREAM-INF:BANDWIDTH=550000,URI="hi/iframe.m3u8"
#EXT-X-STREAM-INF:BANDWIDTH=65000,CODECS="mp4a.40.5"
audio-only.m3u8
#EXT-X-I-FRAME-STREAM-INF:BANDWIDTH="INVALIDBW",URI="hi/iframe.m3u8"`
	channels := Parse(content)
	if len(channels) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(channels))
	}
	for _, ch := range channels {
		if strings.Contains(ch.URL, "iframe") {
			t.Errorf("iframe stream leaked: %q", ch.URL)
		}
	}
}

func TestHLSMediaRenditions(t *testing.T) {
	content := `#EXTM3U
#EXT-X-MEDIA:TYPE=VIDEO,GROUP-ID="low",NAME="Main",DEFAULT=YES,URI="low/main/audio-video.m3u8"
#EXT-X-MEDIA:TYPE=VIDEO,GROUP-ID="low",NAME="Centerfield",DEFAULT=NO,URI="low/centerfield/audio-video.m3u8"
#EXT-X-MEDIA:TYPE=VIDEO,GROUP-ID="low",NAME="Dugout",DEFAULT=NO,URI="low/dugout/audio-video.m3u8"
#EXT-X-STREAM-INF:BANDWIDTH=1280000,VIDEO="low"
low/main/audio-video.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=65000,CODECS="mp4a.40.5"
main/audio-only.m3u8`
	channels := Parse(content)
	if len(channels) != 4 {
		t.Fatalf("expected 4 channels, got %d", len(channels))
	}
	var sawCenterfield, sawDugout bool
	for _, ch := range channels {
		if strings.Contains(ch.Name, "Centerfield") {
			sawCenterfield = true
		}
		if strings.Contains(ch.Name, "Dugout") {
			sawDugout = true
		}
	}
	if !sawCenterfield || !sawDugout {
		t.Errorf("alternate angles missing: centerfield=%v dugout=%v", sawCenterfield, sawDugout)
	}
}

func TestHLSAudioAndSubtitleGroups(t *testing.T) {
	content := `#EXTM3U
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",NAME="English",DEFAULT=YES,URI="audio/en.m3u8"
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",NAME="Spanish",DEFAULT=NO,URI="audio/es.m3u8"
#EXT-X-MEDIA:TYPE=SUBTITLES,GROUP-ID="subs",NAME="French",DEFAULT=NO,URI="subs/fr.m3u8"
#EXT-X-STREAM-INF:BANDWIDTH=2560000,AUDIO="audio"
video.m3u8`
	channels := Parse(content)
	if len(channels) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(channels))
	}
	groups := map[string]bool{}
	for _, ch := range channels {
		groups[ch.Group] = true
	}
	if !groups["HLS Audio"] {
		t.Error("missing HLS Audio group")
	}
	if !groups["HLS Subtitles"] {
		t.Error("missing HLS Subtitles group")
	}
}

func TestHLSMediaWithoutURISkipped(t *testing.T) {
	content := `#EXTM3U
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",NAME="English",DEFAULT=YES,AUTOSELECT=YES
#EXT-X-STREAM-INF:BANDWIDTH=2560000,AUDIO="audio"
video.m3u8`
	channels := Parse(content)
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	if channels[0].URL != "video.m3u8" {
		t.Errorf("url = %q", channels[0].URL)
	}
}

func TestHLSStreamInfWithoutURL(t *testing.T) {
	content := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000
#EXT-X-STREAM-INF:BANDWIDTH=2560000
actual_stream.m3u8`
	channels := Parse(content)
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	if channels[0].URL != "actual_stream.m3u8" {
		t.Errorf("url = %q", channels[0].URL)
	}
}

func TestHLSStreamInfBeatsTargetDuration(t *testing.T) {
	content := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000
stream.m3u8
#EXT-X-TARGETDURATION:10`
	channels := Parse(content)
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	if channels[0].URL != "stream.m3u8" {
		t.Errorf("url = %q", channels[0].URL)
	}
}

func TestHLSEmptyMaster(t *testing.T) {
	content := `#EXTM3U
#EXT-X-VERSION:3`
	if got := Parse(content); len(got) != 0 {
		t.Errorf("expected 0 channels, got %d", len(got))
	}
}
