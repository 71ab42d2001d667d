package epg

import (
	"fmt"
	"strconv"
	"strings"
)

// parseXMLTVTime converts an XMLTV timestamp ("20240115120000 +0100") to
// epoch seconds. The timezone may follow a space, or be glued directly onto
// the 14-digit datetime. Sub-fields that fail to parse default to a safe
// minimum instead of failing the record.
func parseXMLTVTime(s string) int64 {
	s = strings.TrimSpace(s)

	datetime := s
	var tzOffset int64
	if sp := strings.IndexByte(s, ' '); sp >= 0 {
		datetime = s[:sp]
		tzOffset = parseTZOffset(s[sp+1:])
	} else if len(s) > 14 {
		datetime = s[:14]
		tzOffset = parseTZOffset(s[14:])
	}

	if len(datetime) < 14 {
		return 0
	}

	year := fieldOr(datetime[0:4], 2024)
	month := fieldOr(datetime[4:6], 1)
	day := fieldOr(datetime[6:8], 1)
	hour := fieldOr(datetime[8:10], 0)
	minute := fieldOr(datetime[10:12], 0)
	second := fieldOr(datetime[12:14], 0)

	var days int64
	for y := int64(1970); y < year; y++ {
		if isLeapYear(y) {
			days += 366
		} else {
			days += 365
		}
	}

	daysInMonth := [12]int64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	for m := int64(1); m < month; m++ {
		days += daysInMonth[m-1]
		if m == 2 && isLeapYear(year) {
			days++
		}
	}
	days += day - 1

	return days*86400 + hour*3600 + minute*60 + second - tzOffset
}

func fieldOr(s string, def int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// parseTZOffset converts "+0100", "-0530", or a degenerate 2-digit hour form
// to seconds.
func parseTZOffset(tz string) int64 {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return 0
	}

	sign := int64(1)
	if strings.HasPrefix(tz, "-") {
		sign = -1
	}
	tz = strings.TrimLeft(tz, "+-")

	switch {
	case len(tz) >= 4:
		hours := fieldOr(tz[0:2], 0)
		minutes := fieldOr(tz[2:4], 0)
		return sign * (hours*3600 + minutes*60)
	case len(tz) >= 2:
		return sign * fieldOr(tz[0:2], 0) * 3600
	default:
		return 0
	}
}

func isLeapYear(year int64) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// formatEpisode converts the XMLTV "season.episode.part" numbering
// (zero-indexed) into an S01E05 style label, falling back to the raw text
// when the numbering is malformed or incomplete.
func formatEpisode(episode string) string {
	episode = strings.TrimSpace(episode)
	parts := strings.Split(episode, ".")
	if len(parts) >= 2 {
		season, serr := strconv.Atoi(parts[0])
		ep, eerr := strconv.Atoi(parts[1])
		if serr == nil && eerr == nil && season+1 > 0 && ep+1 > 0 {
			return fmt.Sprintf("S%02dE%02d", season+1, ep+1)
		}
	}
	return episode
}
