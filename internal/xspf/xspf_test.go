package xspf

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <trackList>
    <track><location>http://example.com/song_1.mp3</location></track>
    <track><location>http://example.com/song_2.mp3</location></track>
    <track><location>http://example.com/song_3.mp3</location></track>
  </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pl.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(pl.Tracks))
	}
	if pl.Tracks[0].Location != "http://example.com/song_1.mp3" {
		t.Errorf("location = %q", pl.Tracks[0].Location)
	}
	if pl.Tracks[2].Location != "http://example.com/song_3.mp3" {
		t.Errorf("location = %q", pl.Tracks[2].Location)
	}
}

func TestParsePlaylistMetadata(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <title>80s Music</title>
  <creator>Jane Doe</creator>
  <annotation>My favorite 80s hits</annotation>
  <info>http://example.com/~jane</info>
  <image>http://example.com/playlist.jpg</image>
  <trackList>
    <track><location>http://example.com/song.mp3</location></track>
  </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pl.Title != "80s Music" || pl.Creator != "Jane Doe" {
		t.Errorf("title/creator = %q/%q", pl.Title, pl.Creator)
	}
	if pl.Annotation != "My favorite 80s hits" {
		t.Errorf("annotation = %q", pl.Annotation)
	}
	if pl.Info != "http://example.com/~jane" || pl.Image != "http://example.com/playlist.jpg" {
		t.Errorf("info/image = %q/%q", pl.Info, pl.Image)
	}
}

func TestParseTrackMetadata(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <trackList>
    <track>
      <location>http://example.com/song_1.mp3</location>
      <creator>Led Zeppelin</creator>
      <album>Houses of the Holy</album>
      <title>No Quarter</title>
      <annotation>I love this song</annotation>
      <duration>271066</duration>
      <image>http://images.example.com/cover.jpg</image>
      <info>http://example.com</info>
      <trackNum>4</trackNum>
    </track>
  </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pl.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(pl.Tracks))
	}
	tr := pl.Tracks[0]
	if tr.Creator != "Led Zeppelin" || tr.Album != "Houses of the Holy" || tr.Title != "No Quarter" {
		t.Errorf("metadata = %q/%q/%q", tr.Creator, tr.Album, tr.Title)
	}
	if tr.Duration != 271066 {
		t.Errorf("duration = %d", tr.Duration)
	}
	if tr.TrackNum != 4 {
		t.Errorf("trackNum = %d", tr.TrackNum)
	}
}

func TestParseEntities(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <title>Rock &amp; Roll</title>
  <trackList>
    <track>
      <location>http://example.com/song.mp3</location>
      <title>&lt;Track&gt; &quot;Test&quot; &amp; &apos;More&apos;</title>
    </track>
  </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pl.Title != "Rock & Roll" {
		t.Errorf("title = %q", pl.Title)
	}
	if pl.Tracks[0].Title != `<Track> "Test" & 'More'` {
		t.Errorf("track title = %q", pl.Tracks[0].Title)
	}
}

func TestParseTrackWithoutLocation(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <trackList>
    <track>
      <title>No Location Track</title>
    </track>
    <track>
      <location>http://example.com/valid.mp3</location>
      <title>Valid Track</title>
    </track>
  </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pl.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(pl.Tracks))
	}
	if pl.Tracks[0].Title != "Valid Track" {
		t.Errorf("title = %q", pl.Tracks[0].Title)
	}
}

func TestParseWhitespaceTrimmed(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <trackList>
    <track>
      <location>  http://example.com/song.mp3  </location>
      <title>  Spaced Title  </title>
    </track>
  </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pl.Tracks[0].Location != "http://example.com/song.mp3" {
		t.Errorf("location = %q", pl.Tracks[0].Location)
	}
	if pl.Tracks[0].Title != "Spaced Title" {
		t.Errorf("title = %q", pl.Tracks[0].Title)
	}
}

func TestParseVLCFormat(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist xmlns="http://xspf.org/ns/0/" xmlns:vlc="http://www.videolan.org/vlc/playlist/ns/0/" version="1">
	<title>Playlist</title>
	<trackList>
		<track>
			<location>file:///home/user/video.mp4</location>
			<title>My Video</title>
			<duration>120000</duration>
			<extension application="http://www.videolan.org/vlc/playlist/0">
				<vlc:id>0</vlc:id>
			</extension>
		</track>
	</trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pl.Title != "Playlist" {
		t.Errorf("title = %q", pl.Title)
	}
	if len(pl.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(pl.Tracks))
	}
	if pl.Tracks[0].Title != "My Video" || pl.Tracks[0].Duration != 120000 {
		t.Errorf("track = %q/%d", pl.Tracks[0].Title, pl.Tracks[0].Duration)
	}
}

func TestParseEmptyTrackList(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <trackList>
  </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pl.Tracks) != 0 {
		t.Errorf("expected 0 tracks, got %d", len(pl.Tracks))
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("Not XML at all"); !errors.Is(err, ErrNotXSPF) {
		t.Errorf("err = %v, want ErrNotXSPF", err)
	}
	if _, err := Parse("<xml>No playlist here</xml>"); !errors.Is(err, ErrNotXSPF) {
		t.Errorf("err = %v, want ErrNotXSPF", err)
	}
}

func TestIsXSPF(t *testing.T) {
	if !IsXSPF(`<playlist version="1" xmlns="http://xspf.org/ns/0/"><trackList></trackList></playlist>`) {
		t.Error("full document not detected")
	}
	if !IsXSPF(`<playlist><trackList></trackList></playlist>`) {
		t.Error("namespace-less document not detected")
	}
	if IsXSPF("#EXTM3U\n#EXTINF:-1,Test\nhttp://test.com") {
		t.Error("M3U misdetected as XSPF")
	}
	if IsXSPF("random content") {
		t.Error("plain text misdetected as XSPF")
	}
}

func TestChannelsConversion(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <title>Test Playlist</title>
  <trackList>
    <track>
      <location>http://example.com/song.mp3</location>
      <title>Test Song</title>
      <creator>Test Artist</creator>
      <album>Test Album</album>
      <image>http://example.com/cover.jpg</image>
      <trackNum>5</trackNum>
    </track>
  </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	channels := pl.Channels()
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	ch := channels[0]
	if ch.Name != "Test Song" || ch.URL != "http://example.com/song.mp3" {
		t.Errorf("name/url = %q/%q", ch.Name, ch.URL)
	}
	if ch.Group != "Test Artist - Test Album" {
		t.Errorf("group = %q", ch.Group)
	}
	if ch.Logo != "http://example.com/cover.jpg" {
		t.Errorf("logo = %q", ch.Logo)
	}
	if ch.TVGChno != 5 || ch.ChannelNumber != 5 {
		t.Errorf("track number = %d/%d", ch.TVGChno, ch.ChannelNumber)
	}
}

func TestChannelsNameFallback(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <title>TV7 Playlist</title>
  <trackList>
    <track><location>http://example.com/stream/srf1.m3u8</location></track>
  </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	channels := pl.Channels()
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	if channels[0].Name != "srf1" {
		t.Errorf("name = %q, want srf1", channels[0].Name)
	}
	if channels[0].Group != "TV7 Playlist" {
		t.Errorf("group = %q, want playlist title", channels[0].Group)
	}
}

func TestParseMulticastPlaylist(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist xmlns="http://xspf.org/ns/0/" xmlns:vlc="http://www.videolan.org/vlc/playlist/ns/0/" version="1">
    <title>TV7 Playlist</title>
    <trackList>
        <track>
            <title>SRF 1</title>
            <location>udp://@233.50.230.80:5000</location>
            <image>https://api.example.com/media/logos/1102_SRF1.ch.png</image>
            <extension application="http://www.videolan.org/vlc/playlist/0">
                <vlc:id>1102</vlc:id>
                <vlc:option>network-caching=1000</vlc:option>
            </extension>
        </track>
        <track>
            <title>SRF zwei</title>
            <location>udp://@233.50.230.212:5000</location>
            <image>https://api.example.com/media/logos/1104_SRFzwei.ch.png</image>
            <extension application="http://www.videolan.org/vlc/playlist/0">
                <vlc:id>1104</vlc:id>
            </extension>
        </track>
    </trackList>
</playlist>`
	pl, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pl.Title != "TV7 Playlist" {
		t.Errorf("title = %q", pl.Title)
	}
	if len(pl.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(pl.Tracks))
	}
	for _, tr := range pl.Tracks {
		if !strings.HasPrefix(tr.Location, "udp://@233.50.230.") {
			t.Errorf("location = %q", tr.Location)
		}
		if tr.Image == "" || tr.Title == "" {
			t.Errorf("missing metadata on %q", tr.Location)
		}
	}
}
