package reports

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guriri-express/dispatch/internal/shared"
)

// MaxPageLimit caps the page size a caller may request.
const MaxPageLimit = 1000

// MaxPage caps the page number; anything beyond it is past the end of any
// listing the service can return.
const MaxPage = 1_000_000

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Filters is the normalised report query. Zero values mean "not set".
type Filters struct {
	StartDate     time.Time
	EndDate       time.Time
	Status        string
	PaymentMethod string
	ClientID      string
	MotoboyID     string
	Page          int
	Limit         int
}

// ParseFilters normalises loosely typed input. Unreadable dates and
// non-string fields are dropped; page and limit always come back usable.
func ParseFilters(raw map[string]any) Filters {
	f := Filters{
		StartDate:     parseDate(raw["startDate"]),
		EndDate:       parseDate(raw["endDate"]),
		Status:        stringField(raw["status"]),
		PaymentMethod: stringField(raw["paymentMethod"]),
		ClientID:      stringField(raw["clientId"]),
		MotoboyID:     stringField(raw["motoboyId"]),
		Page:          1,
		Limit:         shared.DefaultPageLimit,
	}
	if page, ok := intField(raw["page"]); ok {
		f.Page = min(max(page, 1), MaxPage)
	}
	if limit, ok := intField(raw["limit"]); ok {
		f.Limit = min(max(limit, 1), MaxPageLimit)
	}
	return f
}

// ParseQuery reads filters from a URL query. Repeated keys are not strings
// and get dropped like any other mistyped field.
func ParseQuery(values url.Values) Filters {
	raw := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			raw[key] = vals[0]
		default:
			raw[key] = append([]string(nil), vals...)
		}
	}
	return ParseFilters(raw)
}

// Period returns the echoed date window.
func (f Filters) Period() Period {
	var p Period
	if !f.StartDate.IsZero() {
		start := f.StartDate
		p.StartDate = &start
	}
	if !f.EndDate.IsZero() {
		end := f.EndDate
		p.EndDate = &end
	}
	return p
}

// Query converts the filters into a repository query.
func (f Filters) Query() OrderQuery {
	return OrderQuery{
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		Status:        f.Status,
		PaymentMethod: f.PaymentMethod,
		ClientID:      f.ClientID,
		MotoboyID:     f.MotoboyID,
	}
}

func stringField(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func parseDate(v any) time.Time {
	s := stringField(v)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// intField reads the leading integer of a string, so "12abc" is 12.
func intField(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		return leadingInt(n)
	default:
		return 0, false
	}
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
