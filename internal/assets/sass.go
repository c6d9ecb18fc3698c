package assets

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/rs/zerolog/log"
	consolestream "github.com/wolfeidau/console-stream"
)

// StyleCompiler compiles a Sass stylesheet to CSS.
type StyleCompiler interface {
	Compile(ctx context.Context, path string) (string, error)
}

// EmbeddedSass talks to Dart Sass over the embedded protocol. The compiler
// process is started on first use and reused until Close.
type EmbeddedSass struct {
	binary     string
	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

func NewEmbeddedSass(binary string) *EmbeddedSass {
	return &EmbeddedSass{binary: binary}
}

func (s *EmbeddedSass) Compile(_ context.Context, path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read stylesheet: %w", err)
	}

	t, err := s.start()
	if err != nil {
		return "", err
	}

	res, err := t.Execute(godartsass.Args{
		Source:       string(src),
		URL:          "file://" + filepath.ToSlash(path),
		IncludePaths: []string{filepath.Dir(path)},
		OutputStyle:  godartsass.OutputStyleExpanded,
		SourceSyntax: godartsass.SourceSyntaxSCSS,
	})
	if err != nil {
		return "", fmt.Errorf("sass compile %s: %w", path, err)
	}

	return res.CSS, nil
}

func (s *EmbeddedSass) start() (*godartsass.Transpiler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transpiler != nil {
		return s.transpiler, nil
	}

	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: s.binary,
		Timeout:                  30 * time.Second,
		LogEventHandler: func(e godartsass.LogEvent) {
			log.Warn().Str("message", e.Message).Msg("Sass")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start dart sass: %w", err)
	}

	s.transpiler = t
	return t, nil
}

func (s *EmbeddedSass) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transpiler == nil {
		return nil
	}
	err := s.transpiler.Close()
	s.transpiler = nil
	return err
}

// CLISass runs the sass executable once per stylesheet.
type CLISass struct {
	binary string
}

func NewCLISass(binary string) *CLISass {
	return &CLISass{binary: binary}
}

func (s *CLISass) Compile(ctx context.Context, path string) (string, error) {
	out, err := os.CreateTemp("", "assetpack-*.css")
	if err != nil {
		return "", fmt.Errorf("failed to create sass output file: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()
	defer os.Remove(outPath)

	process := consolestream.NewProcess(s.binary, []string{"--no-source-map", path, outPath},
		consolestream.WithPipeMode(),
		consolestream.WithFlushInterval(100*time.Millisecond),
	)

	var output bytes.Buffer
	for event, err := range process.ExecuteAndStream(ctx) {
		if err != nil {
			return "", fmt.Errorf("sass failed: %w", err)
		}

		switch e := event.Event.(type) {
		case *consolestream.OutputData:
			output.Write(e.Data)
		case *consolestream.ProcessEnd:
			if e.ExitCode != 0 {
				return "", fmt.Errorf("sass exited with code %d: %s", e.ExitCode, strings.TrimSpace(output.String()))
			}
		}
	}

	if output.Len() > 0 {
		log.Debug().Str("path", path).Str("output", strings.TrimSpace(output.String())).Msg("Sass output")
	}

	css, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to read sass output: %w", err)
	}

	return string(css), nil
}
