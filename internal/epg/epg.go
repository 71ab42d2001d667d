// Package epg parses XMLTV program guide data and answers time-based guide
// queries over the result. The parser is streaming and bounded-memory: guide
// files routinely exceed 100 MB and are rarely well-formed, so it recovers
// from malformed fragments instead of failing the document.
package epg

import (
	"sort"
	"time"
)

// Program is a single scheduled broadcast. Start and Stop are epoch seconds
// in UTC. Malformed feeds can produce degenerate ranges (stop before start);
// the parser stores them as-is and the queries are defensive about it.
type Program struct {
	ChannelID   string `json:"channel_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       int64  `json:"start"`
	Stop        int64  `json:"stop"`
	Category    string `json:"category,omitempty"`
	// Episode is a formatted tag like "S01E05" when the feed's numbering
	// was parseable, otherwise the raw episode-num text.
	Episode string `json:"episode,omitempty"`
	Icon    string `json:"icon,omitempty"`
}

// Channel is the guide-side channel record.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Data is the parse result: channels and programs keyed by channel id, plus
// a bounded log of recovered parse errors. Program lists are sorted
// ascending by start time once parsing finishes; every query below relies on
// that invariant. Data is an immutable snapshot after parsing, refreshes
// build a new Data and swap the reference.
type Data struct {
	Channels map[string]Channel   `json:"channels"`
	Programs map[string][]Program `json:"programs"`

	// ParseErrors holds up to maxStoredErrors recovered diagnostics;
	// ParseErrorCount is the true total.
	ParseErrors     []string `json:"parse_errors,omitempty"`
	ParseErrorCount int      `json:"parse_error_count"`
}

func newData() *Data {
	return &Data{
		Channels: make(map[string]Channel),
		Programs: make(map[string][]Program),
	}
}

// ProgramCount returns the total number of programs across all channels.
func (d *Data) ProgramCount() int {
	n := 0
	for _, progs := range d.Programs {
		n += len(progs)
	}
	return n
}

// airingIndex returns the partition point in the channel's sorted program
// list: the first index whose program has not yet ended at now.
func airingIndex(progs []Program, now int64) int {
	return sort.Search(len(progs), func(i int) bool { return progs[i].Stop > now })
}

// CurrentProgram returns the program airing on the channel at now. When the
// feed carries overlapping entries more than one could match; the
// earliest-starting candidate wins.
func (d *Data) CurrentProgram(channelID string, now int64) (Program, bool) {
	progs := d.Programs[channelID]
	idx := airingIndex(progs, now)
	if idx < len(progs) && progs[idx].Start <= now {
		return progs[idx], true
	}
	return Program{}, false
}

// NextProgram returns the first program starting strictly after now.
func (d *Data) NextProgram(channelID string, now int64) (Program, bool) {
	progs := d.Programs[channelID]
	idx := sort.Search(len(progs), func(i int) bool { return progs[i].Start > now })
	if idx < len(progs) {
		return progs[idx], true
	}
	return Program{}, false
}

// UpcomingPrograms returns up to count programs from the one airing (or next
// to air) at now onward, in chronological order.
func (d *Data) UpcomingPrograms(channelID string, now int64, count int) []Program {
	progs := d.Programs[channelID]
	idx := airingIndex(progs, now)
	if idx >= len(progs) || count <= 0 {
		return nil
	}
	end := idx + count
	if end > len(progs) {
		end = len(progs)
	}
	return progs[idx:end]
}

// ProgramsInRange returns the programs whose interval overlaps [start, end).
func (d *Data) ProgramsInRange(channelID string, start, end int64) []Program {
	var out []Program
	for _, p := range d.Programs[channelID] {
		if p.Stop > start && p.Start < end {
			out = append(out, p)
		}
	}
	return out
}

// TodayPrograms returns the programs overlapping the UTC calendar day
// containing now.
func (d *Data) TodayPrograms(channelID string, now int64) []Program {
	dayStart := (now / 86400) * 86400
	return d.ProgramsInRange(channelID, dayStart, dayStart+86400)
}

// AdjustedNow shifts the current time by offsetHours (fractional hours are
// allowed) for guides published in a different time zone than the viewer.
// The offset is applied by the caller per query, never stored in the data.
func AdjustedNow(offsetHours float64) int64 {
	return time.Now().Unix() - int64(offsetHours*3600)
}

// FormatTime renders an epoch timestamp as local HH:MM.
func FormatTime(ts int64) string {
	return time.Unix(ts, 0).Local().Format("15:04")
}

// FormatDateTime renders an epoch timestamp as local YYYY-MM-DD HH:MM.
func FormatDateTime(ts int64) string {
	return time.Unix(ts, 0).Local().Format("2006-01-02 15:04")
}
