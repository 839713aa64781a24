// Package validate contains input checks for admin content. Every failure
// wraps common.ErrorValidation.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/portfolio/internal/common"
)

var tagRx = regexp.MustCompile(`^[a-zA-Z0-9 .#+_\-]{1,32}$`)

func fail(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

// Required checks that s is non-empty after trimming and at most max runes.
func Required(field, s string, max int) error {
	if strings.TrimSpace(s) == "" {
		return fail("%s is required", field)
	}
	return MaxLen(field, s, max)
}

func MaxLen(field, s string, max int) error {
	if len([]rune(s)) > max {
		return fail("%s must be at most %d characters", field, max)
	}
	return nil
}

// OptionalURL accepts an empty string, an absolute http(s) URL or a
// site-relative path starting with "/".
func OptionalURL(field, s string) error {
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fail("%s must be an http(s) URL", field)
	}
	return nil
}

func Range(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fail("%s must be between %d and %d", field, lo, hi)
	}
	return nil
}

// Tags allows up to 20 short tags.
func Tags(tags []string) error {
	if len(tags) > 20 {
		return fail("at most 20 tags allowed")
	}
	for _, t := range tags {
		if !tagRx.MatchString(t) {
			return fail("invalid tag: %q", t)
		}
	}
	return nil
}

func Email(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return fail("invalid email")
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
