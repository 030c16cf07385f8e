// Package artnum parses and orders article numbers as they appear in legal
// codes: a dot-separated chain of numeric segments, each with an optional
// letter suffix ("93", "93.1", "12a"). Plain string sorting puts "93.10"
// before "93.2"; this package orders segments numerically.
package artnum

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalid is returned by Parse for strings that are not article numbers.
var ErrInvalid = errors.New("invalid article number")

type segment struct {
	num    int
	suffix string
}

// Number is a parsed article number. The zero value is not valid; obtain
// Numbers through Parse or MustParse.
type Number struct {
	raw      string
	segments []segment
}

// Parse validates and parses an article number.
// Accepted form: digit segments separated by dots, each optionally followed
// by lowercase latin letters ("93", "93.1", "12a", "93.1a").
func Parse(s string) (Number, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Number{}, fmt.Errorf("%w: empty", ErrInvalid)
	}

	parts := strings.Split(trimmed, ".")
	segments := make([]segment, 0, len(parts))

	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Number{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		segments = append(segments, seg)
	}

	return Number{raw: trimmed, segments: segments}, nil
}

// MustParse parses an article number and panics on failure.
// Intended for constants and tests.
func MustParse(s string) Number {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Valid reports whether s parses as an article number.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func parseSegment(s string) (segment, error) {
	if s == "" {
		return segment{}, ErrInvalid
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return segment{}, ErrInvalid
	}

	num, err := strconv.Atoi(s[:i])
	if err != nil {
		return segment{}, ErrInvalid
	}

	suffix := s[i:]
	for _, r := range suffix {
		if r < 'a' || r > 'z' {
			return segment{}, ErrInvalid
		}
	}

	return segment{num: num, suffix: suffix}, nil
}

// String returns the original textual form.
func (n Number) String() string { return n.raw }

// Compare orders two numbers segment by segment: numerically first, then by
// letter suffix (no suffix sorts before "a"). A number that is a prefix of
// another sorts first ("93" < "93.1").
func Compare(a, b Number) int {
	for i := 0; i < len(a.segments) && i < len(b.segments); i++ {
		as, bs := a.segments[i], b.segments[i]
		if as.num != bs.num {
			if as.num < bs.num {
				return -1
			}
			return 1
		}
		if as.suffix != bs.suffix {
			if as.suffix < bs.suffix {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a.segments) < len(b.segments):
		return -1
	case len(a.segments) > len(b.segments):
		return 1
	}
	return 0
}

// Less reports whether raw article number a orders before b.
// Strings that do not parse fall back to plain lexical comparison, so Less
// is usable as a sort predicate over untrusted data.
func Less(a, b string) bool {
	na, errA := Parse(a)
	nb, errB := Parse(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return Compare(na, nb) < 0
}

// Sort orders raw article numbers in place in natural order.
func Sort(nums []string) {
	sort.Slice(nums, func(i, j int) bool { return Less(nums[i], nums[j]) })
}
