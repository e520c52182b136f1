package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Range is an inclusive integer interval.
type Range struct {
	Lo int64
	Hi int64
}

// NewRange returns the interval [lo, hi].
func NewRange(lo, hi int64) (Range, error) {
	if lo > hi {
		return Range{}, fmt.Errorf("range lower bound %d exceeds upper bound %d", lo, hi)
	}
	return Range{Lo: lo, Hi: hi}, nil
}

// ParseRange parses a "lo..hi" literal. Both bounds must be integers.
func ParseRange(s string) (Range, error) {
	lit := strings.TrimSpace(s)
	loStr, hiStr, ok := strings.Cut(lit, "..")
	if !ok {
		return Range{}, fmt.Errorf("malformed range %q: expected lo..hi", s)
	}
	lo, err := strconv.ParseInt(strings.TrimSpace(loStr), 10, 64)
	if err != nil {
		return Range{}, fmt.Errorf("malformed range %q: lower bound is not an integer", s)
	}
	hi, err := strconv.ParseInt(strings.TrimSpace(hiStr), 10, 64)
	if err != nil {
		return Range{}, fmt.Errorf("malformed range %q: upper bound is not an integer", s)
	}
	return NewRange(lo, hi)
}

// Contains reports whether lo <= v <= hi.
func (r Range) Contains(v int64) bool {
	return r.Lo <= v && v <= r.Hi
}

func (Range) Kind() Kind { return KindRange }
func (Range) isValue()   {}

func (r Range) String() string { return fmt.Sprintf("%d..%d", r.Lo, r.Hi) }

// Duration is a time span with millisecond resolution.
type Duration struct {
	Millis int64
}

var durationUnits = map[string]int64{
	"ms": 1,
	"s":  1000,
	"m":  60 * 1000,
	"h":  60 * 60 * 1000,
}

// ParseDuration parses "<int><unit>" where unit is one of ms, s, m, h.
func ParseDuration(s string) (Duration, error) {
	lit := strings.TrimSpace(s)
	i := 0
	if i < len(lit) && (lit[i] == '-' || lit[i] == '+') {
		i++
	}
	for i < len(lit) && lit[i] >= '0' && lit[i] <= '9' {
		i++
	}
	num, unit := lit[:i], strings.TrimSpace(lit[i:])
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return Duration{}, fmt.Errorf("malformed duration %q: expected <int><unit>", s)
	}
	scale, ok := durationUnits[unit]
	if !ok {
		return Duration{}, fmt.Errorf("malformed duration %q: unknown unit %q (want ms, s, m or h)", s, unit)
	}
	if n > math.MaxInt64/scale || n < math.MinInt64/scale {
		return Duration{}, fmt.Errorf("duration %q overflows", s)
	}
	return Duration{Millis: n * scale}, nil
}

// Std converts d to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d.Millis) * time.Millisecond
}

func (Duration) Kind() Kind { return KindDuration }
func (Duration) isValue()   {}

func (d Duration) String() string { return fmt.Sprintf("%dms", d.Millis) }

// Trimmed is a string whose lines were trimmed when it was constructed.
type Trimmed struct {
	text string
}

// NewTrimmed trims s line-wise and wraps the result.
func NewTrimmed(s string) Trimmed {
	return Trimmed{text: TrimLines(s)}
}

// Text returns the trimmed text.
func (t Trimmed) Text() string { return t.text }

func (Trimmed) Kind() Kind { return KindTrimmed }
func (Trimmed) isValue()   {}

func (t Trimmed) String() string { return "!Trim " + strconv.Quote(t.text) }

// Equal reports whether both hold the same trimmed text.
func (t Trimmed) Equal(other Trimmed) bool { return t.text == other.text }

// TrimLines strips surrounding whitespace from the text and from every line.
func TrimLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
