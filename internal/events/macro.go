package events

// MacroKind discriminates the MacroCommand tagged union sent from
// scripts and the compositor to the macro engine (C3).
type MacroKind int

const (
	MacroMirror MacroKind = iota
	MacroInject
)

// MacroCommand is either a verbatim mirror of a physical event or a
// synthetic injection requested by a script via inject_key.
type MacroCommand struct {
	Kind MacroKind
	Raw  RawKeyEvent // valid when Kind == MacroMirror

	Code uint16 // valid when Kind == MacroInject
	Down bool
}

// Mirror builds a MacroCommand that republishes a physical key event
// verbatim.
func Mirror(raw RawKeyEvent) MacroCommand {
	return MacroCommand{Kind: MacroMirror, Raw: raw}
}

// Inject builds a MacroCommand that synthesizes a key event with no
// corresponding physical key.
func Inject(code uint16, down bool) MacroCommand {
	return MacroCommand{Kind: MacroInject, Code: code, Down: down}
}
