package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json at info level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, false)

		log.Debug().Msg("hidden")
		log.Info().Str("file", "public/application.js").Msg("Built file")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, "Built file", line["message"])
		require.Equal(t, "public/application.js", line["file"])
		require.Contains(t, line, "time")
		require.Equal(t, zerolog.InfoLevel, log.GetLevel())
	})

	t.Run("console at debug level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, true)

		log.Debug().Msg("Renamed extracted stylesheet")

		require.Contains(t, buf.String(), "Renamed extracted stylesheet")
		require.Equal(t, zerolog.DebugLevel, log.GetLevel())
	})
}
