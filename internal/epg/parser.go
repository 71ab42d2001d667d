package epg

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/avfs/avfs"
	"github.com/avfs/avfs/vfs/osfs"
	"golang.org/x/net/html/charset"

	"github.com/streamhaven/iptvcat/internal/metrics"
)

// maxStoredErrors caps the diagnostics kept on Data; the total count keeps
// counting past it.
const maxStoredErrors = 50

type parserState int

const (
	stateRoot parserState = iota
	stateChannel
	stateProgramme
	stateTitle
	stateDesc
	stateCategory
	stateDisplayName
	stateEpisodeNum
)

// Parse parses an XMLTV document held in memory.
func Parse(content string) (*Data, error) {
	return ParseReader(strings.NewReader(content))
}

// ParseReader parses an XMLTV document from r in a single streaming pass.
// Malformed fragments are recovered: the error is logged onto the result,
// the in-progress record is dropped, and tokenizing resumes at the next tag
// opener. The call fails only when the reader itself fails.
func ParseReader(r io.Reader) (*Data, error) {
	// The tokenizer reads byte-at-a-time from the bufio.Reader, so after a
	// syntax error a fresh tokenizer can pick up mid-stream without losing
	// buffered input.
	br := bufio.NewReaderSize(r, 64*1024)
	dec := newTokenizer(br)

	data := newData()
	state := stateRoot
	var curChannel *Channel
	var curProgram *Program
	var text strings.Builder
	var offsetBase int64

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			data.ParseErrorCount++
			if len(data.ParseErrors) < maxStoredErrors {
				data.ParseErrors = append(data.ParseErrors,
					fmt.Sprintf("XML error at byte %d: %v", offsetBase+dec.InputOffset(), err))
			}
			metrics.GuideParseErrors.Inc()

			curChannel = nil
			curProgram = nil
			state = stateRoot
			text.Reset()

			offsetBase += dec.InputOffset()
			skipped, serr := skipToTagOpen(br)
			offsetBase += skipped
			if serr != nil {
				break
			}
			dec = newTokenizer(br)
			continue
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "channel":
				state = stateChannel
				curChannel = &Channel{ID: attr(t, "id")}
			case "programme":
				state = stateProgramme
				curProgram = &Program{
					ChannelID: attr(t, "channel"),
					Start:     parseXMLTVTime(attr(t, "start")),
					Stop:      parseXMLTVTime(attr(t, "stop")),
				}
			case "title":
				if state == stateProgramme {
					state = stateTitle
					text.Reset()
				}
			case "desc":
				if state == stateProgramme {
					state = stateDesc
					text.Reset()
				}
			case "category":
				if state == stateProgramme {
					state = stateCategory
					text.Reset()
				}
			case "display-name":
				if state == stateChannel {
					state = stateDisplayName
					text.Reset()
				}
			case "episode-num":
				if state == stateProgramme {
					state = stateEpisodeNum
					text.Reset()
				}
			case "icon":
				if src := attr(t, "src"); src != "" {
					switch state {
					case stateChannel:
						if curChannel != nil {
							curChannel.Icon = src
						}
					case stateProgramme:
						if curProgram != nil {
							curProgram.Icon = src
						}
					}
				}
			}

		case xml.CharData:
			switch state {
			case stateTitle, stateDesc, stateCategory, stateDisplayName, stateEpisodeNum:
				text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "channel":
				if curChannel != nil && curChannel.ID != "" {
					data.Channels[curChannel.ID] = *curChannel
				}
				curChannel = nil
				state = stateRoot
			case "programme":
				if curProgram != nil && curProgram.ChannelID != "" && curProgram.Title != "" {
					data.Programs[curProgram.ChannelID] = append(data.Programs[curProgram.ChannelID], *curProgram)
				}
				curProgram = nil
				state = stateRoot
			case "title":
				if curProgram != nil {
					curProgram.Title = strings.TrimSpace(text.String())
				}
				state = stateProgramme
			case "desc":
				if curProgram != nil {
					curProgram.Description = strings.TrimSpace(text.String())
				}
				state = stateProgramme
			case "category":
				if curProgram != nil {
					curProgram.Category = strings.TrimSpace(text.String())
				}
				state = stateProgramme
			case "display-name":
				// First display-name wins.
				if curChannel != nil && curChannel.Name == "" {
					curChannel.Name = strings.TrimSpace(text.String())
				}
				state = stateChannel
			case "episode-num":
				if curProgram != nil {
					if ep := formatEpisode(text.String()); ep != "" {
						curProgram.Episode = ep
					}
				}
				state = stateProgramme
			}
		}
	}

	// Source order is arbitrary; the sort here is what the guide queries
	// rely on. Stable so equal start times keep document order.
	for id := range data.Programs {
		progs := data.Programs[id]
		sort.SliceStable(progs, func(i, j int) bool { return progs[i].Start < progs[j].Start })
	}

	metrics.GuideChannels.Add(float64(len(data.Channels)))
	metrics.GuidePrograms.Add(float64(data.ProgramCount()))
	return data, nil
}

func newTokenizer(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	d.Entity = map[string]string{"nbsp": " "}
	return d
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// skipToTagOpen discards input up to (not including) the next '<' so a fresh
// tokenizer can restart on a plausible token boundary. At least one byte is
// consumed so the parser cannot wedge on the same bad token.
func skipToTagOpen(br *bufio.Reader) (int64, error) {
	var n int64
	if _, err := br.ReadByte(); err != nil {
		return n, err
	}
	n++
	for {
		b, err := br.ReadByte()
		if err != nil {
			return n, err
		}
		if b == '<' {
			br.UnreadByte()
			return n, nil
		}
		n++
	}
}

// ParseFile parses an XMLTV file from the operating system's filesystem,
// transparently decompressing gzip content.
func ParseFile(path string) (*Data, error) {
	return ParseFileFS(osfs.New(), path)
}

// ParseFileFS is ParseFile against an arbitrary filesystem. Gzip is detected
// by the content's magic number, not the file extension, and the byte-level
// sanitizing filter sits between the file and the tokenizer.
func ParseFileFS(vfs avfs.VFS, path string) (*Data, error) {
	f, err := vfs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open guide file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 64*1024)
	var src io.Reader = br
	if isGzip(br) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	}
	return ParseReader(newSanitizingReader(src))
}

// isGzip sniffs the gzip magic number without consuming the reader.
func isGzip(br *bufio.Reader) bool {
	head, err := br.Peek(2)
	return err == nil && head[0] == 0x1f && head[1] == 0x8b
}
