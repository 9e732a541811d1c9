// Package cli is the interactive terminal front end: it prompts for cities,
// renders each snapshot and shows the lookup history on request.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/neexbeast/travel-planner/internal/travel"
)

// Planner is satisfied by *travel.Planner.
type Planner interface {
	PlanTrip(ctx context.Context, destination, homeCity string) (*travel.Plan, error)
}

// HistoryLister is satisfied by every travel.HistoryStore.
type HistoryLister interface {
	ListAll(ctx context.Context) ([]travel.HistoryRecord, error)
}

// Session runs the prompt loop over one input and one output stream.
type Session struct {
	planner Planner
	history HistoryLister
	in      *bufio.Scanner
	out     io.Writer
	log     *slog.Logger

	lines chan string
}

// NewSession reads answers from in and writes everything user-facing to out.
func NewSession(planner Planner, history HistoryLister, in io.Reader, out io.Writer, log *slog.Logger) *Session {
	return &Session{
		planner: planner,
		history: history,
		in:      bufio.NewScanner(in),
		out:     out,
		log:     log,
	}
}

// Run handles lookups until input is exhausted or ctx is cancelled. A
// cancellation interrupts a pending prompt. Provider failures are rendered,
// never returned.
func (s *Session) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	s.lines = make(chan string)
	go s.readLines(stop)

	for {
		destination, ok := s.askNonBlank(ctx, "Enter a city for your trip: ")
		if !ok {
			return s.inputErr(ctx)
		}

		homeCity, ok := s.ask(ctx, "Enter your current city (leave blank if same): ")
		if !ok {
			return s.inputErr(ctx)
		}

		plan, err := s.planner.PlanTrip(ctx, destination, homeCity)
		if plan != nil {
			s.write(RenderSnapshot(plan.Snapshot))
		}
		if err != nil {
			if !errors.Is(err, travel.ErrPersistence) {
				return fmt.Errorf("planning trip to %s: %w", destination, err)
			}
			s.write("\nThis lookup could not be saved to history.\n")
		}

		answer, ok := s.ask(ctx, "\nView your past travel queries? (yes/no): ")
		if !ok {
			return s.inputErr(ctx)
		}
		if strings.EqualFold(answer, "yes") {
			s.showHistory(ctx)
		}
		s.write("\n")
	}
}

// readLines feeds s.lines until input ends or stop is closed. The scanner is
// only touched here, so a blocked Scan never holds up Run.
func (s *Session) readLines(stop <-chan struct{}) {
	defer close(s.lines)
	for s.in.Scan() {
		select {
		case s.lines <- s.in.Text():
		case <-stop:
			return
		}
	}
}

// inputErr is the error Run returns once a prompt got no answer. Cancellation
// and a clean EOF both end the session normally.
func (s *Session) inputErr(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	// lines is closed, so the reader has returned.
	return s.in.Err()
}

func (s *Session) showHistory(ctx context.Context) {
	records, err := s.history.ListAll(ctx)
	if err != nil {
		s.log.Error("listing history failed", "err", err)
		s.write("History is unavailable right now.\n")
		return
	}
	s.write(RenderHistory(records))
}

// ask prompts once. ok is false when input is exhausted or ctx is done.
func (s *Session) ask(ctx context.Context, prompt string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	s.write(prompt)
	select {
	case <-ctx.Done():
		s.write("\n")
		return "", false
	case line, open := <-s.lines:
		if !open || ctx.Err() != nil {
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

func (s *Session) askNonBlank(ctx context.Context, prompt string) (string, bool) {
	for {
		answer, ok := s.ask(ctx, prompt)
		if !ok || answer != "" {
			return answer, ok
		}
	}
}

func (s *Session) write(text string) {
	if _, err := io.WriteString(s.out, text); err != nil {
		s.log.Debug("writing to terminal failed", "err", err)
	}
}
