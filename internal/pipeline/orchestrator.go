package pipeline

import (
	"bytes"
	"unicode/utf8"

	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
	"github.com/ajitpratap0/wordsmith/pkg/generate"
	"github.com/ajitpratap0/wordsmith/pkg/sanitize"
	wsstrings "github.com/ajitpratap0/wordsmith/pkg/strings"
)

// Orchestrator drives one line through the stage chain. It holds no mutable
// state of its own and may be shared by all workers.
type Orchestrator struct {
	opts    Options
	metrics *Metrics
}

// NewOrchestrator creates an orchestrator. A nil metrics gets a private one.
func NewOrchestrator(opts Options, metrics *Metrics) *Orchestrator {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Orchestrator{opts: opts, metrics: metrics}
}

// errInvalidEncoding is returned for every skipped line; it is not fatal.
var errInvalidEncoding = wserrors.New(wserrors.ErrorTypeInvalidEncoding, "line is not valid UTF-8")

// ProcessLine expands raw and pushes every result into buf. Lines that are
// not valid UTF-8 are counted and rejected with an invalid_encoding error,
// which callers skip. Fatal errors come from buf, which fails once the run
// has been cancelled.
func (o *Orchestrator) ProcessLine(raw []byte, buf *WorkerBuffer) error {
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	if !utf8.Valid(raw) {
		o.metrics.RecordInvalid()
		return errInvalidEncoding
	}
	o.metrics.RecordLine()

	// raw lives in the input mapping for the whole run and every stage
	// copies what it keeps, so the line can alias it.
	line := wsstrings.BytesToString(raw)
	candidates := []string{line}
	if o.opts.Sanitize {
		candidates = sanitize.Sanitize(line)
	}

	for _, candidate := range candidates {
		if err := o.expandCase(candidate, buf); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) expandCase(word string, buf *WorkerBuffer) error {
	var cases generate.Stream = generate.Single(word)
	if o.opts.Case {
		cases = generate.Cases(word, o.opts.caseCap())
	}
	for c, ok := cases.Next(); ok; c, ok = cases.Next() {
		if err := o.expandLeet(c, buf); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) expandLeet(word string, buf *WorkerBuffer) error {
	var leets generate.Stream = generate.Single(word)
	if o.opts.Leet {
		leets = generate.Leet(word, o.opts.leetCap())
	}
	for l, ok := leets.Next(); ok; l, ok = leets.Next() {
		if err := o.augment(l, buf); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) augment(word string, buf *WorkerBuffer) error {
	out := o.augmentation(word)
	for w, ok := out.Next(); ok; w, ok = out.Next() {
		if err := buf.Push(w); err != nil {
			return err
		}
		o.metrics.RecordVariant()
	}
	return nil
}

func (o *Orchestrator) augmentation(word string) generate.Stream {
	switch o.opts.Mode {
	case ModeLength:
		p := o.opts.Length
		return generate.Length(word, generate.LengthOptions{
			Charset: o.opts.Charset,
			Min:     p.Min,
			Max:     p.Max,
			Append:  p.Append,
			Prepend: p.Prepend,
			Insert:  p.Insert,
			Dedup:   !p.SkipDedup,
		})
	case ModeCount:
		p := o.opts.Count
		return generate.Count(word, generate.CountOptions{
			Charset: o.opts.Charset,
			Append:  p.Append,
			Prepend: p.Prepend,
			Insert:  p.Insert,
		})
	default:
		return generate.Single(word)
	}
}
