package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const dateLayout = "2006-01-02"

// MaxSelection bounds how many collection ids one request may carry.
const MaxSelection = 1000

var (
	ErrTooManyIDs = fmt.Errorf("at most %d ids are allowed", MaxSelection)
	ErrBadDate    = errors.New("dates must use YYYY-MM-DD")
)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ParseUUIDList parses ids, reporting the first malformed one.
func ParseUUIDList(raw []string) ([]uuid.UUID, error) {
	if len(raw) > MaxSelection {
		return nil, ErrTooManyIDs
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", s)
		}
		out = append(out, id)
	}
	return out, nil
}

// ParseDate parses a YYYY-MM-DD query value as UTC midnight. endOfDay moves it to the last
// instant of that day so "to" filters stay inclusive. Empty input returns nil.
func ParseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, ErrBadDate
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
