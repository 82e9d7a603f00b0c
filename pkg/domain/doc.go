/*
Package domain contains the core domain models of the Guidepost dialogue engine.

It defines the fundamental entities of the scripted conversation: Nodes with
their Choices, the Session (response ledger, milestone clock facts, transcript)
and the branch rules that redirect the default flow. This package is kept pure
and free of I/O or persistence concerns so that adapters (storage, HTTP, CLI)
can depend on it without dragging in infrastructure.

# Key Entities

  - Node: one step of the scripted dialogue (display lines plus button choices
    or an explicit free-text expectation).
  - Choice: a selectable answer carrying a display label (which doubles as the
    numeric answer value when the label is a digit string) and a target node id.
  - Session: the runtime snapshot of one conversation (current node, status,
    ledger, milestones, transcript).
  - BranchRule: a precedence-ordered override that redirects a declared choice
    target based on accumulated scores or elapsed time between milestones.
*/
package domain
