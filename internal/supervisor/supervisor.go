// Package supervisor runs one single-instance lifecycle: wait out any
// predecessor, claim the rendezvous channel, run the child and stop it when
// a successor or a termination signal shows up.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Paintersrp/oneinstance/internal/metrics"
	"github.com/Paintersrp/oneinstance/internal/rendezvous"
	"github.com/Paintersrp/oneinstance/internal/runtime/process"
	"github.com/Paintersrp/oneinstance/internal/signals"
)

// Config describes one supervisor run.
type Config struct {
	// Program is the target executable; Args are forwarded verbatim.
	Program string
	Args    []string
	Dir     string
	// Env replaces the child's environment when non-nil.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Channel overrides the channel derived from Program.
	Channel rendezvous.Channel
	// Signals delivers external termination requests. A nil channel never
	// fires.
	Signals <-chan os.Signal
	// Interrupt is delivered to the child's group on preemption. Nil means
	// process.DefaultInterrupt.
	Interrupt os.Signal

	Logger *zerolog.Logger
	// OnState observes every state transition.
	OnState func(State)
}

type supervisor struct {
	cfg     Config
	log     zerolog.Logger
	channel rendezvous.Channel
	state   State
	result  Result
}

// Run executes a full lifecycle. Completion, preempted or not, returns a nil
// error; errors are fatal conditions: an unexpected ownership conflict or a
// failed spawn.
func Run(ctx context.Context, cfg Config) (Result, error) {
	channel := cfg.Channel
	if channel == nil {
		var err error
		channel, err = rendezvous.OpenFor(cfg.Program)
		if err != nil {
			return Result{}, fmt.Errorf("derive channel: %w", err)
		}
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	s := &supervisor{
		cfg:     cfg,
		log:     log.With().Str("channel", channel.Name()).Logger(),
		channel: channel,
		result:  Result{Channel: channel.Name()},
	}
	return s.run(ctx)
}

func (s *supervisor) transition(next State) {
	s.log.Debug().Str("from", s.state.String()).Str("to", next.String()).Msg("state transition")
	s.state = next
	if s.cfg.OnState != nil {
		s.cfg.OnState(next)
	}
}

func (s *supervisor) run(ctx context.Context) (Result, error) {
	s.transition(Draining)
	proceed, err := s.drain(ctx)
	if err != nil {
		return s.result, err
	}
	if !proceed {
		s.finish()
		return s.result, nil
	}

	s.transition(Claiming)
	owner, err := s.channel.Bind()
	if err != nil {
		s.log.Error().Err(err).Msg("channel ownership conflict after drain")
		return s.result, fmt.Errorf("claim channel %s: %w", s.channel.Name(), err)
	}
	defer func() {
		if err := owner.Close(); err != nil {
			s.log.Warn().Err(err).Msg("release channel")
		}
	}()

	s.transition(Spawning)
	child, err := process.Start(process.Spec{
		Path:   s.cfg.Program,
		Args:   s.cfg.Args,
		Dir:    s.cfg.Dir,
		Env:    s.cfg.Env,
		Stdin:  s.cfg.Stdin,
		Stdout: s.cfg.Stdout,
		Stderr: s.cfg.Stderr,
	})
	if err != nil {
		s.log.Error().Err(err).Str("program", s.cfg.Program).Msg("spawn failed")
		return s.result, err
	}
	s.result.Pid = child.Pid()
	s.log.Debug().Int("pid", child.Pid()).Str("program", s.cfg.Program).Msg("child started")
	metrics.SetChildRunning(s.channel.Name(), true)

	s.transition(Running)
	s.race(ctx, owner, child)

	if s.result.Outcome == Preempted {
		s.transition(Terminating)
		s.terminate(child)
	}

	s.result.ChildErr = child.Err()
	metrics.SetChildRunning(s.channel.Name(), false)
	s.log.Debug().Int("pid", child.Pid()).Int("exit_code", child.ExitCode()).Msg("child reaped")
	s.finish()
	return s.result, nil
}

// drain waits for a predecessor owner to go away. It reports false when the
// supervisor should stop without spawning.
func (s *supervisor) drain(ctx context.Context) (bool, error) {
	start := time.Now()
	defer func() {
		s.result.DrainWait = time.Since(start)
		metrics.ObserveDrain(s.channel.Name(), s.result.DrainWait, s.result.HadPredecessor)
	}()

	peer, err := s.channel.Connect(ctx)
	if err != nil {
		if !errors.Is(err, rendezvous.ErrNoOwner) {
			s.log.Warn().Err(err).Msg("could not reach channel owner, assuming none")
		}
		return true, nil
	}
	defer peer.Close()

	s.result.HadPredecessor = true
	s.log.Info().Msg("previous instance running, waiting for it to exit")

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	closed := make(chan error, 1)
	go func() { closed <- peer.WaitClosed(waitCtx) }()

	select {
	case err := <-closed:
		if err != nil {
			s.abort(CauseCanceled, nil)
			return false, nil
		}
		s.log.Debug().Dur("waited", time.Since(start)).Msg("previous instance exited")
		return true, nil
	case sig := <-s.cfg.Signals:
		cancel()
		<-closed
		s.abort(CauseSignal, sig)
		return false, nil
	}
}

func (s *supervisor) abort(cause Cause, sig os.Signal) {
	s.result.Outcome = Aborted
	s.result.Cause = cause
	s.result.Signal = sig
	s.log.Info().Str("cause", string(cause)).Msg("stopped before starting child")
}

// race waits for the first of: child exit, a termination signal, a
// successor connecting, or ctx cancellation.
func (s *supervisor) race(ctx context.Context, owner rendezvous.Owner, child *process.Child) {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	successors := make(chan error, 1)
	go func() { successors <- owner.WaitPeer(waitCtx) }()

	for {
		select {
		case <-child.Done():
			s.result.Outcome = NaturalExit
			s.result.Cause = CauseChildExit
			return
		case sig := <-s.cfg.Signals:
			s.result.Outcome = Preempted
			s.result.Cause = CauseSignal
			s.result.Signal = sig
			ev, _ := signals.Classify(sig)
			s.log.Info().Str("signal", sig.String()).Str("event", ev.String()).Msg("termination requested")
			return
		case err := <-successors:
			if err == nil {
				s.result.Outcome = Preempted
				s.result.Cause = CauseSuccessor
				s.log.Info().Msg("new instance launched, stopping child")
				return
			}
			if ctx.Err() == nil {
				s.log.Error().Err(err).Msg("stopped watching for new instances")
			}
			successors = nil
		case <-ctx.Done():
			s.result.Outcome = Preempted
			s.result.Cause = CauseCanceled
			return
		}
	}
}

// terminate interrupts the child's group and waits for it without a
// deadline. A failed interrupt is logged and the wait still happens.
func (s *supervisor) terminate(child *process.Child) {
	group := child.Group()
	if err := group.Interrupt(s.cfg.Interrupt); err != nil {
		metrics.IncrementInterruptFailure(s.channel.Name())
		s.log.Error().Err(err).Int("pgid", group.ID()).Msg("failed to interrupt child")
	}
	_ = child.Wait(context.Background())
}

func (s *supervisor) finish() {
	s.transition(Done)
	metrics.RecordOutcome(s.channel.Name(), s.result.Outcome.String(), string(s.result.Cause))
}
