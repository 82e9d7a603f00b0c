package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/evanfield/guidepost"
	"github.com/evanfield/guidepost/internal/presentation/tui"
	"github.com/evanfield/guidepost/pkg/domain"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	ScriptDir string
	Language  string
	Debug     bool
	Plain     bool
}

// RunSession executes a single interactive dialogue session on the terminal.
// Node text is printed from the transcript entries each turn returns, so the
// prompt always follows the text it belongs to.
func RunSession(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if interactive && !opts.Plain {
		tui.PrintBanner()
	}

	var engineOpts []guidepost.Option
	if opts.Debug {
		engineOpts = append(engineOpts, guidepost.WithLogger(logger))
		engineOpts = append(engineOpts, guidepost.WithLifecycleHooks(createDebugHooks(logger)))
	}

	engine, err := guidepost.New(opts.ScriptDir, engineOpts...)
	if err != nil {
		return fmt.Errorf("error initializing guidepost: %w", err)
	}
	defer engine.Close()

	lang := domain.Language(opts.Language)
	if err := checkLanguage(engine, lang); err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	render := newLineRenderer(interactive && !opts.Plain)

	session, entries, err := engine.Start(sigCtx, lang)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	printEntries(render, entries)

	logger.Info("Session Started", "session_id", session.ID, "language", session.Language)

	reader := bufio.NewReader(os.Stdin)

	for !session.Ended() {
		if sigCtx.Err() != nil {
			break
		}

		input, err := readInput(reader, session)
		if err != nil {
			break
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return nil
		}

		switch session.Status {
		case domain.StatusAwaitingChoice:
			input = resolveChoiceInput(session, input)
			entries, err = engine.SubmitChoice(sigCtx, session, input)
		case domain.StatusAwaitingFreeText:
			entries, err = engine.SubmitText(sigCtx, session, input)
		}

		switch {
		case errors.Is(err, domain.ErrUnknownChoice):
			printSystemMessage("That is not one of the options. Please pick one of the answers shown.")
			continue
		case errors.Is(err, domain.ErrInputRejected):
			printSystemMessage("Please type something before pressing enter.")
			continue
		case err != nil:
			return fmt.Errorf("turn failed: %w", err)
		}

		printEntries(render, entries)
	}

	if sig := sigCtx.Signal(); sig != nil {
		fmt.Println()
		printSystemMessage("Interrupted at node %d.", session.CurrentID)
		return nil
	}
	if session.Ended() {
		printSystemMessage("Session complete. Thank you.")
	}
	return nil
}

// newLineRenderer returns the per-line text renderer. On a styled terminal
// node text goes through the markdown renderer; otherwise it passes through.
func newLineRenderer(styled bool) func(string) (string, error) {
	if styled {
		return tui.NewRenderer()
	}
	return func(s string) (string, error) { return s, nil }
}

func printEntries(render func(string) (string, error), entries []domain.TranscriptEntry) {
	for _, entry := range entries {
		if entry.Kind != domain.EntryNode {
			continue
		}
		for _, line := range entry.Lines {
			out, err := render(line)
			if err != nil {
				out = line
			}
			fmt.Print(strings.TrimRight(out, "\n") + "\n")
		}
	}
}

// readInput prompts according to the session status and reads one line.
func readInput(reader *bufio.Reader, session *domain.Session) (string, error) {
	if session.Status == domain.StatusAwaitingChoice {
		last := session.Transcript[len(session.Transcript)-1]
		for i, opt := range last.Options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}
	}
	fmt.Print("> ")
	text, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if err != nil && text == "" {
		return "", io.EOF
	}
	return strings.TrimSpace(text), nil
}

// resolveChoiceInput maps a 1-based option number to its label. Anything that
// is not a valid index passes through unchanged and is matched as a label.
func resolveChoiceInput(session *domain.Session, input string) string {
	last := session.Transcript[len(session.Transcript)-1]
	if idx, err := strconv.Atoi(input); err == nil && idx >= 1 && idx <= len(last.Options) {
		return last.Options[idx-1]
	}
	return input
}

func checkLanguage(engine *guidepost.Engine, lang domain.Language) error {
	available := engine.Languages()
	for _, l := range available {
		if l == lang {
			return nil
		}
	}
	names := make([]string, len(available))
	for i, l := range available {
		names[i] = string(l)
	}
	return fmt.Errorf("language %q not in catalog (available: %s)", lang, strings.Join(names, ", "))
}
