/*
Package guidepost is a deterministic dialogue-flow engine for guided,
multi-session conversational assessments. It walks a user through a scripted
dialogue that mixes informational content, multiple-choice screening
questions, free-text prompts and relaxation scripts, with branching driven by
accumulated answer scores and elapsed time between sessions.

# Concept

Guidepost treats the conversation as a graph of integer-identified nodes,
defined once per language in parallel id spaces so the same id always means
the same assessment step. The engine manages turn state, answer scoring and
branch rules; the host application manages rendering and input. This keeps
the core embeddable behind any surface: the bundled CLI, the HTTP adapter, or
your own.

# Key Features

  - Deterministic turns: given the same session state and input, the next
    node is always the same.
  - Precedence-ordered branch rules: score gates over screening blocks and
    an elapsed-time skip for same-day re-screens, declared as data and
    evaluated as pure functions.
  - Append-only transcript with an ordered, fire-and-forget narration sink.
  - Pluggable session persistence (in-memory or Redis) for multi-session use.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/evanfield/guidepost"
	)

	func main() {
		// Empty path loads the embedded default script.
		eng, err := guidepost.New("")
		if err != nil {
			log.Fatal(err)
		}
		defer eng.Close()

		ctx := context.Background()
		session, entries, err := eng.Start(ctx, "en")
		if err != nil {
			log.Fatal(err)
		}
		for _, entry := range entries {
			for _, line := range entry.Lines {
				fmt.Println(line)
			}
		}

		// Advance one turn.
		if _, err := eng.SubmitChoice(ctx, session, "Continue"); err != nil {
			log.Fatal(err)
		}
	}
*/
package guidepost
