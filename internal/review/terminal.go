package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Candidate is one generated message together with the prompt facts
// the user should see before committing it.
type Candidate struct {
	Message       string
	TokensUsed    int
	ExcludedFiles []string
}

// RegenerateFunc produces a fresh candidate honoring the given custom
// instructions.
type RegenerateFunc func(ctx context.Context, instructions string) (Candidate, error)

// CommitFunc applies the confirmed message to the repository.
type CommitFunc func(ctx context.Context, message string) error

// Options adjusts the terminal driver. Zero values select stdin,
// stdout, and the real editor.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Editor EditorFunc
}

func (o Options) withDefaults() Options {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Editor == nil {
		o.Editor = OpenEditor
	}
	return o
}

// Run reviews the initial candidate until the user commits or cancels.
// It reports whether a commit was applied.
func Run(ctx context.Context, initial Candidate, instructions string, regenerate RegenerateFunc, commit CommitFunc, opts Options) (bool, error) {
	opts = opts.withDefaults()
	session := NewSession(initial.Message, instructions)
	candidate := initial
	reader := bufio.NewScanner(opts.In)

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		printCandidate(opts.Out, candidate)
		fmt.Fprint(opts.Out, "What would you like to do? [c]ommit, [r]egenerate, [e]dit message, edit [i]nstructions, [q]uit: ")

		event, eof := nextEvent(reader)
		if !eof && event == nil {
			fmt.Fprintln(opts.Out, "Unrecognized choice.")
			fmt.Fprintln(opts.Out)
			continue
		}
		if eof {
			// Input ended; treat like an explicit cancel.
			event = &Event{Kind: Cancel}
		}

		outcome, err := session.Apply(*event)
		if err != nil {
			return false, err
		}

		if outcome == OutcomeOpenEditor {
			outcome, err = runEditor(ctx, session, opts.Editor)
			if err != nil {
				return false, err
			}
			candidate.Message = session.Message()
		}

		switch outcome {
		case OutcomeRegenerate:
			fmt.Fprintln(opts.Out, "Generating a new message...")
			fresh, rerr := regenerate(ctx, session.Instructions())
			if rerr != nil {
				return false, rerr
			}
			candidate = fresh
			session.SetMessage(fresh.Message)

		case OutcomeCommit:
			if cerr := commit(ctx, session.Message()); cerr != nil {
				return false, cerr
			}
			fmt.Fprintln(opts.Out, "Commit successful.")
			return true, nil

		case OutcomeAbort:
			fmt.Fprintln(opts.Out, "Commit cancelled.")
			return false, nil
		}
		fmt.Fprintln(opts.Out)
	}
}

// runEditor collects text for the state entered via OutcomeOpenEditor
// and feeds the result back into the session.
func runEditor(ctx context.Context, session *Session, editor EditorFunc) (Outcome, error) {
	text, saved, err := editor(ctx, session.EditorSeed())
	if err != nil {
		return OutcomeNone, err
	}
	event := Event{Kind: TextAborted}
	if saved {
		event = Event{Kind: TextSubmitted, Text: strings.TrimRight(text, "\n")}
	}
	return session.Apply(event)
}

func printCandidate(out io.Writer, candidate Candidate) {
	fmt.Fprintln(out, "Proposed commit message:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, candidate.Message)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Prompt tokens used: %d\n", candidate.TokensUsed)
	if len(candidate.ExcludedFiles) > 0 {
		fmt.Fprintf(out, "Files listed without content: %s\n", strings.Join(candidate.ExcludedFiles, ", "))
	}
	fmt.Fprintln(out)
}

// nextEvent maps one input line to an event. A nil event with eof false
// means the line was not a recognized choice.
func nextEvent(reader *bufio.Scanner) (event *Event, eof bool) {
	if !reader.Scan() {
		return nil, true
	}
	switch strings.ToLower(strings.TrimSpace(reader.Text())) {
	case "c", "commit":
		return &Event{Kind: Confirm}, false
	case "r", "regenerate":
		return &Event{Kind: Regenerate}, false
	case "e", "edit":
		return &Event{Kind: Edit}, false
	case "i", "instructions":
		return &Event{Kind: EditInstructions}, false
	case "q", "quit", "cancel":
		return &Event{Kind: Cancel}, false
	default:
		return nil, false
	}
}
