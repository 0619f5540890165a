package sweep

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig wraps every configuration rejection from Start.
var ErrInvalidConfig = errors.New("invalid sweep config")

// Config selects which files a sweep reports. A file matches only when
// every filter holds.
type Config struct {
	// Extensions are matched case-insensitively against the file
	// extension. Entries are normalized to lower case with a leading dot.
	Extensions []string `validate:"required,min=1,dive,required,startswith=.,gt=1"`

	// MinSize is the inclusive lower bound on file size in bytes.
	MinSize int64 `validate:"gte=0"`

	// ModifiedSince, when set, is the inclusive lower bound on the
	// last-modified time.
	ModifiedSince time.Time

	// IncludeSystem adds the well-known system locations to the roots.
	IncludeSystem bool
}

// MegabytesToBytes converts a size in MiB to bytes, truncating fractions.
// Sizes beyond the int64 range clamp to math.MaxInt64; NaN yields -1 so
// validation rejects it.
func MegabytesToBytes(mb float64) int64 {
	if math.IsNaN(mb) {
		return -1
	}
	b := mb * 1024 * 1024
	if b >= math.MaxInt64 {
		return math.MaxInt64
	}
	if b <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(b)
}

var configValidator = validator.New()

// Normalize returns a copy of c with the extensions normalized and checks it.
func (c Config) Normalize() (Config, error) {
	c.Extensions = NormalizeExtensions(c.Extensions)
	if err := configValidator.Struct(c); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}
	return c, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Extensions":
			msgs = append(msgs, "at least one file extension is required")
		case "MinSize":
			msgs = append(msgs, fmt.Sprintf("minimum size must be 0 or greater (got %v)", fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// ParseExtensions splits user input such as "exe, .MP3;txt" on commas,
// semicolons and whitespace and normalizes the parts.
func ParseExtensions(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	return NormalizeExtensions(parts)
}

// NormalizeExtensions trims, lower-cases and dot-prefixes each extension and
// drops empties and duplicates, keeping first-seen order.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == "." {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
