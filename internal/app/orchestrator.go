package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is the orchestrator's position in the job lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhasePolling
	PhaseResolved
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhasePolling:
		return "polling"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Source types accepted by Submit.
const (
	SourceTypeTopic  = "topic"
	SourceTypeGitHub = "github"
)

// AnimationPhases are the cosmetic progress labels. The animation timer
// advances through them at a fixed cadence and holds at the last one; they
// carry no correctness weight.
var AnimationPhases = []string{
	"Analyzing topic",
	"Gathering sources",
	"Structuring sections",
	"Drafting content",
	"Refining citations",
	"Finalizing paper",
}

// GenerateInput is what the UI hands to Submit.
type GenerateInput struct {
	Topic      string
	Sections   []string
	WordCount  int
	SourceType string
	SourceURL  string
}

// Progress is a snapshot of the active (or last) job for display.
type Progress struct {
	Phase      Phase
	Step       int
	StepLabel  string
	SessionID  string
	DocumentID string
	Err        error
}

// ActivityTracker is the batcher's face toward the orchestrator.
type ActivityTracker interface {
	Track(activityType, details, sessionID string)
}

// OrchestratorConfig carries the timing knobs for one orchestrator.
type OrchestratorConfig struct {
	AnimateInterval time.Duration
	PollInterval    time.Duration
	// MaxPollAttempts bounds remote polling; 0 means poll until the job
	// resolves.
	MaxPollAttempts int
}

// genJob is one in-flight generation request. Timers belong to the job and
// are stopped on supersede, terminal transition, and teardown; callbacks
// check job identity before touching anything, so a stale tick from a
// superseded job can never mutate state.
type genJob struct {
	sessionID  string
	topic      string
	documentID string
	phase      Phase
	step       int
	polls      int
	err        error
	animTimer  TimerHandle
	pollTimer  TimerHandle
}

// Orchestrator drives one generation job at a time: submit, animate, poll,
// and fold the result into the session store. Results go to the session
// that was selected when the job was submitted, not whichever session is
// selected when the result lands.
type Orchestrator struct {
	store    *Store
	svc      GenerationService
	sched    Scheduler
	activity ActivityTracker
	auth     TokenProvider
	log      *Logger
	cfg      OrchestratorConfig

	mu  sync.Mutex
	cur *genJob

	onProgress func(Progress)
	now        func() time.Time
}

func NewOrchestrator(store *Store, svc GenerationService, sched Scheduler, activity ActivityTracker, auth TokenProvider, log *Logger, cfg OrchestratorConfig) *Orchestrator {
	if cfg.AnimateInterval <= 0 {
		cfg.AnimateInterval = 2 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if auth == nil {
		auth = AnonymousProvider
	}
	if log == nil {
		log = NopLogger()
	}
	return &Orchestrator{
		store:    store,
		svc:      svc,
		sched:    sched,
		activity: activity,
		auth:     auth,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetProgressFunc registers a callback invoked after every phase or
// animation-step change. Set it before the first Submit.
func (o *Orchestrator) SetProgressFunc(fn func(Progress)) {
	o.mu.Lock()
	o.onProgress = fn
	o.mu.Unlock()
}

// Progress returns a snapshot of the active (or most recent) job.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progressLocked()
}

func (o *Orchestrator) progressLocked() Progress {
	if o.cur == nil {
		return Progress{Phase: PhaseIdle}
	}
	j := o.cur
	return Progress{
		Phase:      j.phase,
		Step:       j.step,
		StepLabel:  AnimationPhases[j.step],
		SessionID:  j.sessionID,
		DocumentID: j.documentID,
		Err:        j.err,
	}
}

// Submit validates the input, binds a job to the selected session (creating
// one when nothing is selected), appends the user message, and issues the
// generation request. A non-nil return is always a *ValidationError and
// means nothing changed; every later failure surfaces as an error message
// inside the session instead.
//
// Submit blocks until the submission response is handled. Callers that must
// stay responsive run it on their own goroutine; polling continues in the
// background either way.
func (o *Orchestrator) Submit(ctx context.Context, input GenerateInput) error {
	input.Topic = strings.TrimSpace(input.Topic)
	if input.Topic == "" {
		return &ValidationError{Field: "topic", Reason: "must not be empty"}
	}
	if input.SourceType == SourceTypeGitHub && !IsValidGitHubURL(input.SourceURL) {
		return &ValidationError{Field: "sourceUrl", Reason: "a valid GitHub repository URL is required"}
	}
	if input.SourceType == "" {
		input.SourceType = SourceTypeTopic
	}
	if input.WordCount <= 0 {
		input.WordCount = 3000
	}
	if len(input.Sections) == 0 {
		input.Sections = DefaultSections()
	}

	o.mu.Lock()
	o.cancelCurrentLocked()

	sessionID := ""
	if sess, ok := o.store.Selected(); ok {
		sessionID = sess.ID
	} else {
		sessionID = o.store.AddSession("", o.auth.UserID())
	}

	j := &genJob{sessionID: sessionID, topic: input.Topic, phase: PhaseSubmitting}
	o.cur = j
	j.animTimer = o.sched.Every(o.cfg.AnimateInterval, func() { o.advance(j) })
	o.mu.Unlock()

	o.appendMessage(sessionID, Message{
		Role:      RoleUser,
		Text:      input.Topic,
		Timestamp: o.now().UTC().Format(time.RFC3339),
	})
	o.notify()

	resp, err := o.svc.GeneratePaper(ctx, GenerateRequest{
		Topic:      input.Topic,
		Sections:   input.Sections,
		WordCount:  input.WordCount,
		SourceType: input.SourceType,
		SourceURL:  input.SourceURL,
	})
	if err != nil {
		o.fail(j, err)
		return nil
	}
	o.handleSubmitResponse(j, resp)
	return nil
}

func (o *Orchestrator) handleSubmitResponse(j *genJob, resp GenerateResponse) {
	switch {
	case resp.Status == StatusSuccess && resp.Paper != "":
		o.resolve(j, resp.Paper, resp.DocumentID)
	case resp.Status == StatusSuccess:
		o.fail(j, &EmptyResultError{DocumentID: resp.DocumentID})
	case resp.Status == StatusProcessing && resp.DocumentID != "":
		o.beginPolling(j, resp.DocumentID)
	default:
		msg := resp.Message
		if msg == "" {
			msg = "paper generation failed"
		}
		o.fail(j, &ServerError{Message: msg})
	}
}

func (o *Orchestrator) beginPolling(j *genJob, documentID string) {
	o.mu.Lock()
	if o.cur != j {
		o.mu.Unlock()
		return
	}
	j.documentID = documentID
	j.phase = PhasePolling
	j.pollTimer = o.sched.Every(o.cfg.PollInterval, func() { o.pollOnce(j) })
	o.mu.Unlock()
	o.log.Info("generation accepted", map[string]interface{}{"document_id": documentID})
	o.notify()
}

func (o *Orchestrator) pollOnce(j *genJob) {
	o.mu.Lock()
	if o.cur != j || j.phase != PhasePolling {
		o.mu.Unlock()
		return
	}
	j.polls++
	if o.cfg.MaxPollAttempts > 0 && j.polls > o.cfg.MaxPollAttempts {
		o.mu.Unlock()
		o.fail(j, &ServerError{Message: fmt.Sprintf("generation timed out after %d status checks", o.cfg.MaxPollAttempts)})
		return
	}
	documentID := j.documentID
	o.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	resp, err := o.svc.PaperStatus(ctx, documentID)
	if err != nil {
		// Transient poll failures are not terminal; the next tick retries.
		o.log.Error("poll status", map[string]interface{}{"document_id": documentID, "error": err.Error()})
		return
	}
	switch {
	case resp.Status == StatusSuccess && resp.Paper != "":
		o.resolve(j, resp.Paper, documentID)
	case resp.Status == StatusSuccess:
		o.fail(j, &EmptyResultError{DocumentID: documentID})
	case resp.Status == StatusError:
		msg := resp.Message
		if msg == "" {
			msg = "paper generation failed"
		}
		o.fail(j, &ServerError{Message: msg})
	default:
		// Still processing; keep the timer running.
	}
}

// advance moves the cosmetic animation one step, holding at the last label.
func (o *Orchestrator) advance(j *genJob) {
	o.mu.Lock()
	if o.cur != j || (j.phase != PhaseSubmitting && j.phase != PhasePolling) {
		o.mu.Unlock()
		return
	}
	if j.step < len(AnimationPhases)-1 {
		j.step++
	}
	o.mu.Unlock()
	o.notify()
}

func (o *Orchestrator) resolve(j *genJob, paper, documentID string) {
	o.mu.Lock()
	if o.cur != j {
		o.mu.Unlock()
		return
	}
	o.stopJobTimersLocked(j)
	j.phase = PhaseResolved
	j.documentID = documentID
	o.mu.Unlock()

	o.appendMessage(j.sessionID, Message{
		Role:         RoleAssistant,
		Text:         fmt.Sprintf("Here is your generated paper on %q.", j.topic),
		PaperContent: paper,
		DocumentID:   documentID,
		Timestamp:    o.now().UTC().Format(time.RFC3339),
	})
	if o.activity != nil {
		o.activity.Track(ActivityPaperGenerated, j.topic, j.sessionID)
	}
	o.log.Info("generation resolved", map[string]interface{}{"session": j.sessionID, "document_id": documentID})
	o.notify()
}

func (o *Orchestrator) fail(j *genJob, err error) {
	o.mu.Lock()
	if o.cur != j {
		o.mu.Unlock()
		return
	}
	o.stopJobTimersLocked(j)
	j.phase = PhaseFailed
	j.err = err
	o.mu.Unlock()

	o.appendMessage(j.sessionID, Message{
		Role:      RoleError,
		Text:      "Paper generation failed: " + err.Error(),
		Timestamp: o.now().UTC().Format(time.RFC3339),
	})
	if o.activity != nil {
		o.activity.Track(ActivityGenerationFailed, err.Error(), j.sessionID)
	}
	o.log.Error("generation failed", map[string]interface{}{"session": j.sessionID, "error": err.Error()})
	o.notify()
}

// appendMessage folds one message onto the end of a session's transcript.
func (o *Orchestrator) appendMessage(sessionID string, msg Message) {
	sess, ok := o.store.Get(sessionID)
	if !ok {
		// Session was deleted mid-job; drop the result rather than resurrect it.
		o.log.Error("session gone, dropping message", map[string]interface{}{"session": sessionID})
		return
	}
	o.store.UpdateSessionMessages(sessionID, append(sess.Messages, msg))
}

func (o *Orchestrator) stopJobTimersLocked(j *genJob) {
	if j.animTimer != nil {
		j.animTimer.Stop()
		j.animTimer = nil
	}
	if j.pollTimer != nil {
		j.pollTimer.Stop()
		j.pollTimer = nil
	}
}

func (o *Orchestrator) cancelCurrentLocked() {
	if o.cur == nil {
		return
	}
	o.stopJobTimersLocked(o.cur)
	o.cur = nil
}

// Close cancels any in-flight job's timers. Safe to call more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.cancelCurrentLocked()
	o.mu.Unlock()
}

func (o *Orchestrator) notify() {
	o.mu.Lock()
	fn := o.onProgress
	p := o.progressLocked()
	o.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}
