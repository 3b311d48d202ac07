package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectNerdFonts_EnvOverride(t *testing.T) {
	t.Setenv("VCORE_NERD_FONTS", "true")
	assert.True(t, detectNerdFonts())

	t.Setenv("VCORE_NERD_FONTS", "0")
	assert.False(t, detectNerdFonts())
}

func TestDetectNerdFonts_KnownTerminal(t *testing.T) {
	t.Setenv("VCORE_NERD_FONTS", "")
	t.Setenv("NERD_FONTS", "")
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("TERM_PROGRAM", "WezTerm")
	assert.True(t, detectNerdFonts())

	t.Setenv("TERM_PROGRAM", "Apple_Terminal")
	assert.False(t, detectNerdFonts())
}

func TestIconString_UsesFallbackWithoutNerdFonts(t *testing.T) {
	nerdFontDetected.Do(func() {})
	prev := useNerdFonts
	t.Cleanup(func() { useNerdFonts = prev })

	useNerdFonts = false
	assert.Equal(t, "✓", CheckOK.String())

	useNerdFonts = true
	assert.Equal(t, CheckOK.NerdFont, CheckOK.String())
}
