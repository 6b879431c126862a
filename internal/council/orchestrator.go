package council

import (
	"errors"
	"log"
	"sync"
	"time"

	"council/internal/backend"
)

// Gateway is the backend surface the orchestration core consumes.
// *backend.Gateway satisfies it; tests substitute a scripted fake.
type Gateway interface {
	ListSessions() ([]backend.SessionSummary, error)
	CreateSession() (backend.SessionSummary, error)
	FetchSession(id string) (backend.SessionDetail, error)
	SubmitTurn(sessionID, input string) (backend.TurnResult, error)
}

// Phase names one state of the turn machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingHumanAck
	PhaseAwaitingAgentReply
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingHumanAck:
		return "awaiting-human-ack"
	case PhaseAwaitingAgentReply:
		return "awaiting-agent-reply"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrRunActive is returned when a second run is started while one is still
// in flight. Overlapping runs would desynchronize the backend's notion of
// whose turn it is, so the orchestrator refuses outright.
var ErrRunActive = errors.New("debate run already in progress")

// connectNotice is the transcript notice for any failed backend call during
// a run. Exactly one is appended per failure.
const connectNotice = "Error connecting to Council Server."

// Run events, delivered through the Notify callback from the run's own
// goroutine. The shared components (transcript, registry, store) are
// already updated when an event fires; events exist so a UI can re-render.
type (
	// HumanAcked: the Chairman's input was recorded by the backend.
	HumanAcked struct{}
	// AgentSpoke: one agent produced a reply. Seat is zero when the
	// roster does not know the speaker; the turn is displayed regardless.
	AgentSpoke struct {
		Seat    Philosopher
		Known   bool
		Speaker string
		Text    string
	}
	// SlotSkipped: the backend consumed a turn slot without speech.
	SlotSkipped struct{ Remaining int }
	// RunNotice: a system notice was appended to the transcript.
	RunNotice struct{ Text string }
	// RunLog: background detail worth a log line, not a notice.
	RunLog struct{ Text string }
)

// RunResult is the final accounting of one run.
type RunResult struct {
	SessionID string
	Phase     Phase // PhaseIdle on success, PhaseFailed on abort
	Started   bool  // false when no session was selected
	Spoke     int   // agent turns that produced visible speech
	Skipped   int   // slots consumed without speech
	Calls     int   // agent-phase submit calls actually issued
	Err       error
}

// OrchestratorConfig carries the cosmetic pacing knobs and the event sink.
type OrchestratorConfig struct {
	// TurnPause is the pause between agent turns. Pacing only; turn order
	// is enforced by strict call serialization, not by this delay.
	TurnPause time.Duration
	// SpeakingHold is how long a seat stays highlighted as Speaking after
	// its turn lands. Purely cosmetic; reset happens asynchronously and
	// never gates the machine.
	SpeakingHold time.Duration
	Notify       func(event any)
}

// Orchestrator drives the sequential multi-turn exchange for the current
// session. Calls within a run are strictly serialized: call N+1 is never
// issued before call N's outcome is observed, because the backend advances
// its conversational state one step per call.
type Orchestrator struct {
	gw         Gateway
	store      *SessionStore
	registry   *Registry
	transcript *Transcript
	cfg        OrchestratorConfig

	mu    sync.Mutex
	busy  bool
	phase Phase
}

// NewOrchestrator wires the core to its collaborators. The registry's
// roster size fixes the per-run agent turn budget.
func NewOrchestrator(gw Gateway, store *SessionStore, registry *Registry, transcript *Transcript, cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		gw:         gw,
		store:      store,
		registry:   registry,
		transcript: transcript,
		cfg:        cfg,
	}
}

// Busy reports whether a run is in flight. The UI uses this to block
// session switches and second starts.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Phase returns the machine's current state.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Run executes one debate run and blocks until it completes or fails. A
// non-empty input is a Chairman turn followed by the full agent budget; an
// empty input continues the debate with agent turns only. With no session
// selected the run is a silent no-op. The caller renders the Chairman's own
// message optimistically; Run never appends it.
func (o *Orchestrator) Run(input string) RunResult {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return RunResult{Err: ErrRunActive}
	}
	sessionID := o.store.Current()
	if sessionID == "" {
		o.mu.Unlock()
		return RunResult{}
	}
	o.busy = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.busy = false
		o.phase = PhaseIdle
		o.mu.Unlock()
	}()

	result := RunResult{SessionID: sessionID, Started: true}

	if input != "" {
		o.setPhase(PhaseAwaitingHumanAck)
		if _, err := o.gw.SubmitTurn(sessionID, input); err != nil {
			return o.fail(result, err)
		}
		// The first Chairman message can retitle the session.
		o.refreshSessions()
		o.emit(HumanAcked{})
	}

	remaining := o.registry.Roster().Size()
	o.setPhase(PhaseAwaitingAgentReply)
	for remaining > 0 {
		turn, err := o.gw.SubmitTurn(sessionID, "")
		result.Calls++
		if err != nil {
			// Outcome unknown; at-most-once forbids a retry, and
			// skip-and-continue would desynchronize turn order.
			return o.fail(result, err)
		}
		if turn.Acknowledged {
			// Slot consumed with no speech; still counts against
			// the budget.
			result.Skipped++
			o.emit(SlotSkipped{Remaining: remaining - 1})
		} else {
			seat, known := o.registry.MarkSpeaking(turn.Speaker)
			o.transcript.AppendMessage(turn.Speaker, turn.Text, false)
			o.refreshSessions()
			result.Spoke++
			o.emit(AgentSpoke{Seat: seat, Known: known, Speaker: turn.Speaker, Text: turn.Text})
			if known {
				o.scheduleSpeakingReset(seat.ID)
			}
		}
		remaining--
		if remaining > 0 && o.cfg.TurnPause > 0 {
			time.Sleep(o.cfg.TurnPause)
		}
	}

	o.setPhase(PhaseIdle)
	result.Phase = PhaseIdle
	return result
}

func (o *Orchestrator) fail(result RunResult, err error) RunResult {
	o.setPhase(PhaseFailed)
	o.transcript.AppendSystemNotice(connectNotice)
	o.emit(RunNotice{Text: connectNotice})
	o.emit(RunLog{Text: "run aborted: " + err.Error()})
	result.Phase = PhaseFailed
	result.Err = err
	return result
}

func (o *Orchestrator) setPhase(phase Phase) {
	o.mu.Lock()
	o.phase = phase
	o.mu.Unlock()
}

// refreshSessions keeps cached titles current. List refreshes are
// non-critical background work: failures are logged, never surfaced as
// transcript notices, and never terminate the run.
func (o *Orchestrator) refreshSessions() {
	if _, err := o.store.RefreshList(); err != nil {
		log.Printf("session list refresh failed: %v", err)
		o.emit(RunLog{Text: "session list refresh failed: " + err.Error()})
	}
}

func (o *Orchestrator) scheduleSpeakingReset(id string) {
	hold := o.cfg.SpeakingHold
	if hold < 0 {
		hold = 0
	}
	registry := o.registry
	time.AfterFunc(hold, func() {
		// Only downgrade; a later turn may have re-marked the seat.
		if registry.Activity(id) == Speaking {
			registry.SetActivity(id, Idle)
		}
	})
}

func (o *Orchestrator) emit(event any) {
	if o.cfg.Notify != nil {
		o.cfg.Notify(event)
	}
}
