package transcript

import (
	"fmt"
	"strings"
)

// Mode selects which transcript granularities are produced.
type Mode int

const (
	ModeSentence Mode = iota + 1
	ModeWord
	ModeBoth
)

// ParseMode converts a config or payload value into a Mode.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sentence":
		return ModeSentence, nil
	case "word":
		return ModeWord, nil
	case "both":
		return ModeBoth, nil
	default:
		return 0, fmt.Errorf("unknown transcript mode %q (want sentence, word, or both)", raw)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeSentence:
		return "sentence"
	case ModeWord:
		return "word"
	case ModeBoth:
		return "both"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Sentences reports whether the mode produces a segment document.
func (m Mode) Sentences() bool { return m == ModeSentence || m == ModeBoth }

// Words reports whether the mode produces a word document.
func (m Mode) Words() bool { return m == ModeWord || m == ModeBoth }

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case ModeSentence, ModeWord, ModeBoth:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("invalid transcript mode %d", int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
