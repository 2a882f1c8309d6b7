package core

import (
	"regexp"
	"strconv"
	"strings"
)

// StyleAttrs is the set of SGR attributes a styled span carries. It maps
// directly onto lipgloss.Style setters in the tui package; core stays free
// of any rendering import so it remains testable headless.
type StyleAttrs struct {
	Bold      bool
	Faint     bool
	Italic    bool
	Underline bool
	Reverse   bool
	Fg        string // "" (default), "0"-"15", or "#rrggbb"
	Bg        string
}

func (a StyleAttrs) isDefault() bool {
	return a == StyleAttrs{}
}

// StyledSpan is a run of text sharing one set of attributes.
type StyledSpan struct {
	Text  string
	Style StyleAttrs
}

// StyledText is a log line decoded into styled spans, in display order.
type StyledText []StyledSpan

// Plain concatenates all span text, used for search matching and for any
// rendering path that does not care about styling.
func (t StyledText) Plain() string {
	var b strings.Builder
	for _, sp := range t {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// Patterns for the escape sequences that are not SGR and get dropped
// outright, adapted from the control-sequence taxonomy the pack strips
// wholesale before rendering (siftail's internal/core/sanitize.go). dtop
// differs only in how it treats CSI...m (SGR): those are decoded into
// styling instead of being discarded.
var (
	reOSC       = regexp.MustCompile("\x1b\x5d[\x20-\x7e]*(?:\x07|\x1b\\\\)")
	reDCSLike   = regexp.MustCompile("\x1b[P^_X](?s:.*?)(?:\x1b\\\\|\x07)")
	reCSI       = regexp.MustCompile("\x1b\\[([0-?]*)([ -/]*)([@-~])")
	reSingleESC = regexp.MustCompile("\x1b[0-9A-Za-z]")
)

// DecodeANSI turns one raw log line into styled spans. SGR (Select
// Graphic Rendition) sequences update the running style; every other
// control sequence is stripped the way the pack's log viewer strips all
// of them, since dtop has no use for cursor movement or OSC payloads in
// a fixed-height log pane (spec.md §4.3).
func DecodeANSI(line string) StyledText {
	line = reOSC.ReplaceAllString(line, "")
	line = reDCSLike.ReplaceAllString(line, "")

	var out StyledText
	var cur StyleAttrs
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		out = append(out, StyledSpan{Text: b.String(), Style: cur})
		b.Reset()
	}

	i := 0
	for i < len(line) {
		if line[i] == 0x1b {
			if m := reCSI.FindStringSubmatchIndex(line[i:]); m != nil && m[0] == 0 {
				full := line[i : i+m[1]]
				params := line[i+m[2] : i+m[3]]
				final := line[i+m[6] : i+m[6]+1]
				if final == "m" {
					flush()
					cur = applySGR(cur, params)
				}
				// any other CSI final byte (cursor moves, erase, etc.) is dropped.
				i += len(full)
				continue
			}
			if m := reSingleESC.FindStringIndex(line[i:]); m != nil && m[0] == 0 {
				i += m[1]
				continue
			}
			// Bare/unrecognized ESC: drop the byte itself.
			i++
			continue
		}

		ch := line[i]
		switch {
		case ch == '\t', ch == '\n':
			b.WriteByte(ch)
		case ch == '\r':
			// Carriage returns inside a single log line don't make sense in a
			// scrollback buffer; treat as a space like the pack does.
			b.WriteByte(' ')
		case ch == '\b':
			// dropped, same as the pack's sanitizer.
		case ch < 0x20:
			b.WriteByte(' ')
		default:
			b.WriteByte(ch)
		}
		i++
	}
	flush()

	if out == nil {
		out = StyledText{}
	}
	return out
}

// applySGR folds one CSI...m parameter list onto the running style. Only
// the codes that matter for typical log output (bold/faint/italic/
// underline/reverse, 16-color, 256-color, and truecolor foreground and
// background) are recognized; anything else is ignored.
func applySGR(cur StyleAttrs, params string) StyleAttrs {
	if params == "" {
		params = "0"
	}
	parts := strings.Split(params, ";")
	for i := 0; i < len(parts); i++ {
		code, err := strconv.Atoi(parts[i])
		if err != nil {
			continue
		}
		switch {
		case code == 0:
			cur = StyleAttrs{}
		case code == 1:
			cur.Bold = true
		case code == 2:
			cur.Faint = true
		case code == 3:
			cur.Italic = true
		case code == 4:
			cur.Underline = true
		case code == 7:
			cur.Reverse = true
		case code == 22:
			cur.Bold, cur.Faint = false, false
		case code == 23:
			cur.Italic = false
		case code == 24:
			cur.Underline = false
		case code == 27:
			cur.Reverse = false
		case code >= 30 && code <= 37:
			cur.Fg = strconv.Itoa(code - 30)
		case code == 38:
			consumed := i
			color, ok := parseExtendedColor(parts, i)
			if ok {
				cur.Fg = color
				i = consumed + extendedColorLen(parts, i)
			}
		case code == 39:
			cur.Fg = ""
		case code >= 40 && code <= 47:
			cur.Bg = strconv.Itoa(code - 40)
		case code == 48:
			consumed := i
			color, ok := parseExtendedColor(parts, i)
			if ok {
				cur.Bg = color
				i = consumed + extendedColorLen(parts, i)
			}
		case code == 49:
			cur.Bg = ""
		case code >= 90 && code <= 97:
			cur.Fg = strconv.Itoa(code - 90 + 8)
		case code >= 100 && code <= 107:
			cur.Bg = strconv.Itoa(code - 100 + 8)
		}
	}
	return cur
}

// parseExtendedColor reads a 38/48;5;N or 38/48;2;R;G;B run starting at
// parts[i] (the 38 or 48 itself) and returns a color string lipgloss
// understands ("N" for a palette index, "#rrggbb" for truecolor).
func parseExtendedColor(parts []string, i int) (string, bool) {
	if i+1 >= len(parts) {
		return "", false
	}
	mode := parts[i+1]
	switch mode {
	case "5":
		if i+2 >= len(parts) {
			return "", false
		}
		return parts[i+2], true
	case "2":
		if i+4 >= len(parts) {
			return "", false
		}
		r, err1 := strconv.Atoi(parts[i+2])
		g, err2 := strconv.Atoi(parts[i+3])
		bch, err3 := strconv.Atoi(parts[i+4])
		if err1 != nil || err2 != nil || err3 != nil {
			return "", false
		}
		return "#" + hex2(r) + hex2(g) + hex2(bch), true
	default:
		return "", false
	}
}

func extendedColorLen(parts []string, i int) int {
	if i+1 >= len(parts) {
		return 0
	}
	if parts[i+1] == "2" {
		return 4
	}
	return 2
}

const hexDigits = "0123456789abcdef"

func hex2(v int) string {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return string([]byte{hexDigits[v>>4], hexDigits[v&0xf]})
}
