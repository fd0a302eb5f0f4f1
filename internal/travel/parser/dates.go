package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/zenese/server/internal/travel/model"
)

var (
	isoDateRe = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	monthDayRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})\b`)

	monthsByPrefix = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
)

// dateDetector collects every calendar date mentioned in a text. Explicit
// forms (ISO 2006-01-02 and "Nov 17") are matched directly so the wire date
// contract stays deterministic; relative forms ("tomorrow", "next friday")
// are handed to the when parser.
type dateDetector struct {
	w   *when.Parser
	now func() time.Time
}

func newDateDetector(now func() time.Time) *dateDetector {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &dateDetector{w: w, now: now}
}

// detect returns all distinct dates found, truncated to midnight UTC and
// sorted ascending.
func (d *dateDetector) detect(text string) []time.Time {
	base := d.now()
	var found []time.Time

	rest := text
	for _, m := range isoDateRe.FindAllString(rest, -1) {
		t, err := time.Parse(model.DateLayout, m)
		if err != nil {
			continue
		}
		found = append(found, t)
	}
	rest = isoDateRe.ReplaceAllString(rest, " ")

	for _, m := range monthDayRe.FindAllStringSubmatch(rest, -1) {
		month := monthsByPrefix[strings.ToLower(m[1])]
		day, err := strconv.Atoi(m[2])
		if err != nil || day < 1 || day > 31 {
			continue
		}
		found = append(found, time.Date(base.Year(), month, day, 0, 0, 0, 0, time.UTC))
	}
	rest = monthDayRe.ReplaceAllString(rest, " ")

	// relative expressions on whatever is left
	for {
		r, err := d.w.Parse(rest, base)
		if err != nil || r == nil {
			break
		}
		found = append(found, truncateToDay(r.Time))
		rest = rest[r.Index+len(r.Text):]
	}

	return dedupeSorted(found)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dedupeSorted(dates []time.Time) []time.Time {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	out := dates[:0]
	for i, t := range dates {
		if i == 0 || !t.Equal(out[len(out)-1]) {
			out = append(out, t)
		}
	}
	return out
}
