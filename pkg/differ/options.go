package differ

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidOptions wraps every option validation failure. Validation runs
// before any comparison work begins.
var ErrInvalidOptions = errors.New("invalid options")

// Options is the per-invocation configuration snapshot. The zero value (and
// NewOptions) carries the defaults; the engine never mutates it.
type Options struct {
	// Epsilon is the tolerance below which two numbers compare equal.
	Epsilon float64
	// ArrayIDKey matches sequence elements by identity instead of position.
	ArrayIDKey string
	// IgnoreKeysRegex skips matching mapping keys entirely.
	IgnoreKeysRegex string
	// PathFilter retains only results whose path contains this substring.
	PathFilter string
	// OutputFormat is advisory metadata for the rendering layer; the engine
	// ignores it and the formatter validates it.
	OutputFormat string
	// IgnoreWhitespace collapses whitespace runs before string comparison.
	IgnoreWhitespace bool
	// IgnoreCase folds case before string comparison.
	IgnoreCase bool
	// Brief stops at the first difference instead of collecting all of them.
	Brief bool
	// Quiet asks the calling surface to suppress rendered output and report
	// through the exit status only.
	Quiet bool
}

func NewOptions() *Options {
	return &Options{OutputFormat: "diffx"}
}

// resolvedOptions is the validated form passed down the comparison, with the
// ignore pattern compiled once.
type resolvedOptions struct {
	*Options
	ignoreKeys *regexp.Regexp
}

func (o *Options) resolve() (*resolvedOptions, error) {
	if o.Epsilon < 0 {
		return nil, fmt.Errorf("%w: invalid epsilon %v", ErrInvalidOptions, o.Epsilon)
	}

	resolved := &resolvedOptions{Options: o}
	if o.IgnoreKeysRegex != "" {
		re, err := regexp.Compile(o.IgnoreKeysRegex)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pattern %q: %v", ErrInvalidOptions, o.IgnoreKeysRegex, err)
		}
		resolved.ignoreKeys = re
	}
	return resolved, nil
}
