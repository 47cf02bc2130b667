// Package pipeline turns an input wordlist into its derived variants.
//
// Every line flows through Sanitizer → Case → Leet → Augmentation, each stage
// a lazy generator from pkg/generate. Workers push the final strings into a
// WorkerBuffer they own; full buffers are handed over a bounded channel to a
// single Writer, so a slow sink throttles expansion instead of growing memory.
// A Watchdog guards resident memory while a run is in progress.
package pipeline

import (
	"fmt"
	"strings"

	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
	"github.com/ajitpratap0/wordsmith/pkg/generate"
)

// Mode selects the augmentation stage
type Mode int

const (
	// ModeNone passes candidates through unchanged
	ModeNone Mode = iota
	// ModeLength expands candidates up to a length window
	ModeLength
	// ModeCount expands candidates with exact operation budgets
	ModeCount
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeLength:
		return "length"
	case ModeCount:
		return "count"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return ModeNone, nil
	case "length":
		return ModeLength, nil
	case "count":
		return ModeCount, nil
	default:
		return ModeNone, wserrors.Newf(wserrors.ErrorTypeConfig, "unknown mode %q", s)
	}
}

// LengthParams configures ModeLength
type LengthParams struct {
	Min       int
	Max       int
	Append    bool
	Prepend   bool
	Insert    bool
	SkipDedup bool
}

// CountParams configures ModeCount. Each field is the exact number of
// operations of that kind.
type CountParams struct {
	Append  int
	Prepend int
	Insert  int
}

// Options is the transformation configuration shared read-only by every worker.
type Options struct {
	Sanitize bool
	Case     bool
	// CaseMaxChanges caps changed positions per case variant; nil is uncapped.
	CaseMaxChanges *int
	Leet           bool
	// LeetMaxSubstitutions caps substituted positions per leet variant; nil is uncapped.
	LeetMaxSubstitutions *int
	Charset              []rune
	Mode                 Mode
	Length               LengthParams
	Count                CountParams
}

// Validate checks the options for values no stage can honour
func (o Options) Validate() error {
	if o.CaseMaxChanges != nil && *o.CaseMaxChanges < 0 {
		return wserrors.New(wserrors.ErrorTypeConfig, "case max changes must not be negative")
	}
	if o.LeetMaxSubstitutions != nil && *o.LeetMaxSubstitutions < 0 {
		return wserrors.New(wserrors.ErrorTypeConfig, "leet max substitutions must not be negative")
	}

	switch o.Mode {
	case ModeNone:
	case ModeLength:
		if o.Length.Min < 0 || o.Length.Max < 0 {
			return wserrors.New(wserrors.ErrorTypeConfig, "length bounds must not be negative")
		}
		if o.Length.Min > o.Length.Max {
			return wserrors.Newf(wserrors.ErrorTypeConfig, "length min %d exceeds max %d", o.Length.Min, o.Length.Max)
		}
	case ModeCount:
		if o.Count.Append < 0 || o.Count.Prepend < 0 || o.Count.Insert < 0 {
			return wserrors.New(wserrors.ErrorTypeConfig, "count budgets must not be negative")
		}
	default:
		return wserrors.Newf(wserrors.ErrorTypeConfig, "unknown mode %d", int(o.Mode))
	}
	return nil
}

func (o Options) caseCap() int {
	if o.CaseMaxChanges == nil {
		return generate.Uncapped
	}
	return *o.CaseMaxChanges
}

func (o Options) leetCap() int {
	if o.LeetMaxSubstitutions == nil {
		return generate.Uncapped
	}
	return *o.LeetMaxSubstitutions
}
