package ports

// Narrator receives the text lines of newly pushed transcript nodes, in
// order, exactly once per push. It is fire-and-forget: the engine never
// blocks on, awaits or retries narration, so implementations may be slow or
// failing without delaying or corrupting session state.
type Narrator interface {
	Speak(lines []string)
}

// NarratorFunc adapts a plain function to the Narrator interface.
type NarratorFunc func(lines []string)

// Speak implements Narrator.
func (f NarratorFunc) Speak(lines []string) { f(lines) }
