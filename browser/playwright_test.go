package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEngine(t *testing.T) {
	for input, expected := range map[string]string{
		"":          EngineChromium,
		"chrome":    EngineChromium,
		" Chromium": EngineChromium,
		"firefox":   EngineFirefox,
		"WebKit":    EngineWebKit,
		"safari":    EngineWebKit,
	} {
		engine, err := NormalizeEngine(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, expected, engine, "input %q", input)
	}

	_, err := NormalizeEngine("netscape")
	assert.Error(t, err)
}

func TestLauncherRejectsUnknownEngineBeforeStartingPlaywright(t *testing.T) {
	_, err := PlaywrightLauncher{Engine: "lynx"}.Start()
	assert.Error(t, err)
}
