package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cargotrace/internal/lifecycle"
	dErrors "cargotrace/pkg/domain-errors"
)

// State is the pipeline's per-attempt phase.
type State string

const (
	StateIdle         State = "IDLE"
	StateScanning     State = "SCANNING"
	StateConcernInput State = "CONCERN_INPUT"
	StateProcessing   State = "PROCESSING"
	StateSuccess      State = "SUCCESS"
	StateError        State = "ERROR"
)

// ErrBusy is returned when a decode arrives while a submission is already
// in flight. The device must wait for the current attempt to settle.
var ErrBusy = errors.New("scan in progress")

// ErrCancelled is returned to a submission whose attempt was cancelled
// while waiting on the verifier. The late verdict is discarded.
var ErrCancelled = errors.New("scan attempt cancelled")

// Progress mirrors the shipment-level counters from the last accepted scan
// so the device can show completion without an extra round trip.
type Progress struct {
	Scanned     int
	Pending     int
	Total       int
	AllComplete bool
}

// Pipeline drives one scan attempt at a time through
//
//	IDLE -> SCANNING -> [CONCERN_INPUT ->] PROCESSING -> SUCCESS | ERROR
//
// Decoded payloads are shape-validated locally before any network call; the
// concern gate, when enabled, holds the attempt until the operator enters
// free text or explicitly skips. Cancellation bumps the attempt sequence so
// a verdict arriving for a stale attempt applies nothing.
type Pipeline struct {
	verifier Verifier
	history  *History
	logger   *slog.Logger

	promptConcern bool

	mu          sync.Mutex
	state       State
	attempt     uint64
	pendingCode Code
	lastMessage string
	progress    Progress
}

type PipelineOption func(*Pipeline)

// WithConcernPrompt makes the pipeline stop in CONCERN_INPUT after each
// decode so the operator can annotate the scan.
func WithConcernPrompt() PipelineOption {
	return func(p *Pipeline) { p.promptConcern = true }
}

func WithHistoryLimit(limit int) PipelineOption {
	return func(p *Pipeline) { p.history = NewHistory(limit) }
}

func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

func NewPipeline(verifier Verifier, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		verifier: verifier,
		history:  NewHistory(DefaultHistoryLimit),
		logger:   slog.Default(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastMessage returns the operator-facing text from the last settled
// attempt.
func (p *Pipeline) LastMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastMessage
}

// Progress returns the counters from the last accepted scan.
func (p *Pipeline) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// History returns the attempt log, most recent first.
func (p *Pipeline) History() []Entry {
	return p.history.Entries()
}

// StartScanning arms the scanner. Legal from IDLE, SUCCESS, or ERROR; a
// PROCESSING attempt must settle or be cancelled first.
func (p *Pipeline) StartScanning() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateProcessing, StateConcernInput:
		return ErrBusy
	}
	p.state = StateScanning
	return nil
}

// Submit handles a decoded QR payload. Malformed payloads and shipment
// manifest codes are rejected locally with zero network calls. With the
// concern prompt enabled the attempt parks in CONCERN_INPUT (returning a
// nil verdict) until ProvideConcern or SkipConcern; otherwise it verifies
// immediately.
func (p *Pipeline) Submit(ctx context.Context, payload string) (*Verdict, error) {
	p.mu.Lock()
	if p.state != StateScanning {
		p.mu.Unlock()
		return nil, ErrBusy
	}

	code, rej := ParseCode(payload)
	if rej == nil && code.Kind != KindContainer {
		// A manifest code where a container label is expected is a local
		// format rejection, same as garbage input.
		rej = lifecycle.Reject(lifecycle.ReasonInvalidQRFormat)
	}
	if rej != nil {
		p.state = StateError
		p.lastMessage = rej.Reason.Message()
		p.mu.Unlock()
		v := rejected(rej.Reason)
		p.history.Record(Entry{
			Accepted: false,
			Reason:   v.Reason,
			Message:  v.Message,
			At:       time.Now(),
		})
		p.logger.WarnContext(ctx, "scan rejected locally", "reason", v.Reason)
		return v, nil
	}

	if p.promptConcern {
		p.pendingCode = code
		p.state = StateConcernInput
		p.mu.Unlock()
		return nil, nil
	}

	return p.process(ctx, code, "")
}

// ProvideConcern attaches free text to the parked attempt and submits it.
func (p *Pipeline) ProvideConcern(ctx context.Context, text string) (*Verdict, error) {
	return p.releaseConcern(ctx, text)
}

// SkipConcern submits the parked attempt without an annotation.
func (p *Pipeline) SkipConcern(ctx context.Context) (*Verdict, error) {
	return p.releaseConcern(ctx, "")
}

func (p *Pipeline) releaseConcern(ctx context.Context, concern string) (*Verdict, error) {
	p.mu.Lock()
	if p.state != StateConcernInput {
		p.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeConflict, "no scan awaiting concern input")
	}
	code := p.pendingCode
	p.pendingCode = Code{}
	return p.process(ctx, code, concern)
}

// process runs verification for a container code. Called with p.mu held;
// releases it around the network call.
func (p *Pipeline) process(ctx context.Context, code Code, concern string) (*Verdict, error) {
	p.state = StateProcessing
	p.attempt++
	attempt := p.attempt
	p.mu.Unlock()

	v, err := p.verifier.Verify(ctx, VerifyRequest{
		ContainerID: code.ContainerID,
		Concern:     concern,
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.attempt != attempt || p.state != StateProcessing {
		// Cancelled while in flight. Whatever came back is stale.
		return nil, ErrCancelled
	}

	if err != nil {
		// Transport failure: retryable, not a verdict, not history.
		p.state = StateError
		p.lastMessage = lifecycle.ReasonNetworkError.Message()
		p.logger.WarnContext(ctx, "scan submission failed", "error", err)
		return nil, err
	}

	if v.Accepted {
		p.state = StateSuccess
		p.lastMessage = "scan recorded"
		if v.Shipment != nil {
			p.progress = Progress{
				Scanned:     v.Shipment.ScannedCount,
				Pending:     v.Shipment.PendingCount,
				Total:       v.Shipment.NumberOfContainers,
				AllComplete: v.Shipment.AllComplete,
			}
		}
	} else {
		p.state = StateError
		p.lastMessage = v.Message
	}
	p.history.Record(Entry{
		ContainerID: code.ContainerID,
		Accepted:    v.Accepted,
		Reason:      v.Reason,
		Message:     v.Message,
		Concern:     concern,
		At:          time.Now(),
	})
	return v, nil
}

// Cancel abandons the current attempt, whatever phase it is in. An
// in-flight verification settles as ErrCancelled and its verdict is
// discarded.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempt++
	p.pendingCode = Code{}
	p.state = StateIdle
}

// Reset returns a settled pipeline to IDLE. No-op while PROCESSING.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateSuccess, StateError, StateScanning:
		p.state = StateIdle
	}
}
