package gameloop

// Emulator is the external emulation engine the loop drives. All calls are
// synchronous-return; the loop never inspects emulator internals.
type Emulator interface {
	// PressButton begins holding the named button.
	PressButton(action Action)

	// ReleaseButton releases the named button.
	ReleaseButton(action Action)

	// ScreenFrame captures the current screen as an opaque pixel buffer.
	// A nil return means no frame is available and the cycle is skipped.
	ScreenFrame() []byte

	// Reset restarts the loaded game.
	Reset()

	// Ready reports whether the emulator can accept input.
	Ready() bool
}
