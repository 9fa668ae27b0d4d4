package job

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Posting is the normalized internal job schema. Salary is stored as two
// explicit numeric bounds; the "min-max" display string is derived only for
// presentation, never parsed back.
type Posting struct {
	ID          uuid.UUID
	Title       string
	Company     string
	Location    string
	SalaryMin   *float64
	SalaryMax   *float64
	ApplyLink   string
	Description string
	Remote      bool
	PostedAt    time.Time
	CreatedAt   time.Time
}

const salaryNotSpecified = "Not specified"

// SalaryDisplay renders the legacy "min-max" range string, or "Not specified"
// when no minimum is known.
func (p Posting) SalaryDisplay() string {
	return FormatSalary(p.SalaryMin, p.SalaryMax)
}

func FormatSalary(min, max *float64) string {
	if min == nil {
		return salaryNotSpecified
	}
	lo := formatSalaryBound(*min)
	hi := lo
	if max != nil {
		hi = formatSalaryBound(*max)
	}
	return lo + "-" + hi
}

func formatSalaryBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseSalaryRange accepts the legacy free-form range encoding: "100000-150000",
// a single number, or "Not specified". Returned bounds are nil when the input
// carries no usable number.
func ParseSalaryRange(s string) (min, max *float64) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, salaryNotSpecified) {
		return nil, nil
	}

	lo, rest, found := strings.Cut(s, "-")
	v, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return nil, nil
	}
	min = &v

	if found {
		if w, err := strconv.ParseFloat(strings.TrimSpace(rest), 64); err == nil {
			max = &w
		}
	}
	return min, max
}

// IsRemote reports whether a location names a remote position.
func IsRemote(location string) bool {
	return strings.Contains(strings.ToLower(location), "remote")
}

// DedupKey is the deterministic identity of a logical posting. Two fetches of
// the same upstream record always map to the same key, which backs the
// store's uniqueness rule for idempotent inserts.
func DedupKey(title, company, applyLink string) string {
	raw := fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(title)),
		strings.ToLower(strings.TrimSpace(company)),
		strings.TrimSpace(applyLink),
	)
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
