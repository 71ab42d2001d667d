package epg

import "testing"

func TestParseXMLTVTimeOffsets(t *testing.T) {
	utc := parseXMLTVTime("20240115120000 +0000")
	plus1 := parseXMLTVTime("20240115120000 +0100")
	minus5 := parseXMLTVTime("20240115120000 -0500")

	if utc-plus1 != 3600 {
		t.Errorf("utc-plus1 = %d, want 3600", utc-plus1)
	}
	if minus5-utc != 5*3600 {
		t.Errorf("minus5-utc = %d, want %d", minus5-utc, 5*3600)
	}
	// 2024-01-15 12:00:00 UTC
	if utc != 1705320000 {
		t.Errorf("utc = %d, want 1705320000", utc)
	}
}

func TestParseXMLTVTimeGluedOffset(t *testing.T) {
	spaced := parseXMLTVTime("20240115120000 +0100")
	glued := parseXMLTVTime("20240115120000+0100")
	if spaced != glued {
		t.Errorf("spaced %d != glued %d", spaced, glued)
	}
}

func TestParseXMLTVTimeShortForms(t *testing.T) {
	// Anything shorter than the 14-digit datetime is unusable.
	for _, in := range []string{"", "20240115", "202401151200", "garbage"} {
		if got := parseXMLTVTime(in); got != 0 {
			t.Errorf("parseXMLTVTime(%q) = %d, want 0", in, got)
		}
	}
}

func TestParseXMLTVTimeLeapYear(t *testing.T) {
	feb29 := parseXMLTVTime("20240229000000 +0000")
	mar1 := parseXMLTVTime("20240301000000 +0000")
	if mar1-feb29 != 86400 {
		t.Errorf("mar1-feb29 = %d, want 86400", mar1-feb29)
	}
}

func TestFormatEpisode(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"0.4.", "S01E05"},
		{"1.9.0", "S02E10"},
		{"0.0.", "S01E01"},
		{" 3.11. ", "S04E12"},
		{"not-a-number", "not-a-number"},
		{"5", "5"},
		{"", ""},
	}
	for _, c := range cases {
		if got := formatEpisode(c.in); got != c.want {
			t.Errorf("formatEpisode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
