package ledger

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

var (
	filenameRe  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,199}$`)
	maxSlugLen  = 60
	defaultSlug = "invoice"
)

// Slugify transliterates s to lowercase ASCII and joins its words with
// hyphens.
func Slugify(s string) string {
	s = strings.Trim(slug.Make(s), "-_")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-_")
	}
	return s
}

// NewFilename derives the external handle of a sale from the customer name
// and the creation time in nanoseconds.
func NewFilename(customerName string, at time.Time) string {
	slug := Slugify(customerName)
	if slug == "" {
		slug = defaultSlug
	}
	return slug + "-" + strconv.FormatInt(at.UnixNano(), 10)
}

// ValidFilename reports whether name is safe to use as a mirror key.
func ValidFilename(name string) bool {
	return filenameRe.MatchString(name)
}

// normalizeFilename accepts links that still carry the .json suffix.
func normalizeFilename(name string) string {
	return strings.TrimSuffix(name, ".json")
}
