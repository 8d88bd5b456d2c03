package validate

import (
	"regexp"
	"strconv"
	"strings"

	"kingdavid/internal/domain"
)

var (
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCategory = regexp.MustCompile(`^[a-z][a-z0-9-]{0,29}$`)
	rePrice    = regexp.MustCompile(`^[0-9][0-9 ,]{0,14}(\.[0-9]{1,2})?$`)
)

// ID validates a record identifier (store object id, uuid or seed id).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// MaxQ is the longest search text kept, in runes.
const MaxQ = 50

// Q normalizes free search text. Empty matches everything. Text longer than
// MaxQ runes is cut to MaxQ and reported as not ok; the cut text is still
// the one to search for.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(strings.ToValidUTF8(s, ""))
	r := []rune(s)
	if len(r) > MaxQ {
		return strings.TrimSpace(string(r[:MaxQ])), false
	}
	return s, true
}

// Status validates a status filter value: all, new, available or sold.
// Empty means all.
func Status(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return domain.FilterAll, true
	case domain.FilterAll, domain.FilterNew, domain.StatusAvailable, domain.StatusSold:
		return s, true
	}
	return "", false
}

// ItemStatus validates a status stored on a record.
func ItemStatus(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s == domain.StatusAvailable || s == domain.StatusSold
}

// Category validates a category slug; "all" and empty select every category.
func Category(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return domain.FilterAll, true
	}
	return s, reCategory.MatchString(s)
}

func Quantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 100000 {
		return 0, false
	}
	return n, true
}

// Title validates a displayable name with a reasonable max length.
func Title(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 120 {
		return "", false
	}
	return s, true
}

func Description(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 1000
}

// Price accepts decimal text as typed in the admin form ("16,499", "599.99").
// The value is stored as text and never parsed.
func Price(s string) (string, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R"))
	return s, rePrice.MatchString(s)
}
