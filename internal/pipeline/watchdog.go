package pipeline

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
)

// Policy decides what the watchdog does when the ceiling is reached
type Policy string

const (
	// PolicyExit terminates the process with status 2. Unflushed output is lost.
	PolicyExit Policy = "exit"
	// PolicyCancel cancels the run so workers stop and the writer drains
	// what it already holds.
	PolicyCancel Policy = "cancel"
)

// ParsePolicy parses a policy name; the empty string means PolicyExit.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(s)); p {
	case "":
		return PolicyExit, nil
	case PolicyExit, PolicyCancel:
		return p, nil
	default:
		return "", wserrors.Newf(wserrors.ErrorTypeConfig, "unknown watchdog policy %q", s)
	}
}

// DefaultWatchdogInterval is the RSS polling interval
const DefaultWatchdogInterval = 500 * time.Millisecond

// Sampler returns the current resident set size in bytes
type Sampler func() (uint64, error)

// ProcessRSS samples the resident memory of the current process.
func ProcessRSS() (Sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pids fit in int32
	if err != nil {
		return nil, err
	}
	return func() (uint64, error) {
		info, err := proc.MemoryInfo()
		if err != nil {
			return 0, err
		}
		return info.RSS, nil
	}, nil
}

// WatchdogConfig configures a Watchdog
type WatchdogConfig struct {
	// CeilingBytes is the RSS that trips the watchdog; 0 disables it.
	CeilingBytes uint64
	Interval     time.Duration
	Policy       Policy
	// Sampler defaults to ProcessRSS.
	Sampler Sampler
	// Exit defaults to os.Exit.
	Exit func(code int)
}

// Watchdog polls resident memory and trips on the first sample at or above
// the ceiling.
type Watchdog struct {
	config WatchdogConfig
	logger *zap.Logger

	tripped  chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewWatchdog creates a watchdog. It does nothing until Start.
func NewWatchdog(config WatchdogConfig, logger *zap.Logger) (*Watchdog, error) {
	if config.Interval <= 0 {
		config.Interval = DefaultWatchdogInterval
	}
	if config.Policy == "" {
		config.Policy = PolicyExit
	}
	if config.Exit == nil {
		config.Exit = os.Exit
	}
	if config.Sampler == nil && config.CeilingBytes > 0 {
		sampler, err := ProcessRSS()
		if err != nil {
			return nil, wserrors.Wrap(err, wserrors.ErrorTypeInternal, "failed to inspect own process")
		}
		config.Sampler = sampler
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watchdog{
		config:  config,
		logger:  logger.With(zap.String("component", "watchdog")),
		tripped: make(chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Start begins polling in a new goroutine. Under PolicyCancel a trip calls
// cancel with a resource exhaustion error as the cause.
func (w *Watchdog) Start(cancel context.CancelCauseFunc) {
	if w.config.CeilingBytes == 0 {
		close(w.done)
		return
	}
	w.logger.Debug("watchdog started",
		zap.String("ceiling", humanize.IBytes(w.config.CeilingBytes)),
		zap.Duration("interval", w.config.Interval),
		zap.String("policy", string(w.config.Policy)))
	go w.run(cancel)
}

// Stop ends polling and waits for the polling goroutine to return.
func (w *Watchdog) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}

// Tripped is closed once the ceiling has been reached under PolicyCancel
func (w *Watchdog) Tripped() <-chan struct{} {
	return w.tripped
}

// Err returns the resource exhaustion error after a trip, nil otherwise
func (w *Watchdog) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Watchdog) run(cancel context.CancelCauseFunc) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for first := true; ; first = false {
		if !first {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
			}
		}

		rss, err := w.config.Sampler()
		if err != nil {
			w.logger.Warn("failed to sample memory", zap.Error(err))
			continue
		}
		if rss < w.config.CeilingBytes {
			continue
		}

		w.logger.Error("memory ceiling reached",
			zap.String("rss", humanize.IBytes(rss)),
			zap.String("ceiling", humanize.IBytes(w.config.CeilingBytes)),
			zap.String("policy", string(w.config.Policy)))

		tripErr := wserrors.Newf(wserrors.ErrorTypeResourceExhaustion,
			"resident memory %s reached ceiling %s", humanize.IBytes(rss), humanize.IBytes(w.config.CeilingBytes)).
			WithDetail("rss_bytes", rss)

		if w.config.Policy == PolicyExit {
			_ = w.logger.Sync()
			w.config.Exit(2)
			return
		}

		w.mu.Lock()
		w.err = tripErr
		w.mu.Unlock()
		close(w.tripped)
		if cancel != nil {
			cancel(tripErr)
		}
		return
	}
}
