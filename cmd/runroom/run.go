package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marildoC/runroom/internal/config"
	"github.com/marildoC/runroom/internal/lang"
	"github.com/marildoC/runroom/internal/runner"
)

var langFlag string

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a source file through a local interactive session",
	Long: `Run a source file with the same engine the server uses: the program
gets a pseudo-terminal, its output streams to stdout, and lines you
type are fed to its stdin. Plots the program writes are saved to the
current directory.

Examples:
  runroom run fib.py
  runroom run --lang cpp solution.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&langFlag, "lang", "", "Language key (default: inferred from the file extension)")
	rootCmd.AddCommand(runCmd)
}

// consoleEmitter renders session events on the terminal.
type consoleEmitter struct {
	once sync.Once
	done chan struct{}
}

func (c *consoleEmitter) Emit(event string, payload any) {
	switch event {
	case runner.EventOutput:
		if p, ok := payload.(runner.OutputPayload); ok {
			fmt.Print(p.Data)
		}
	case runner.EventSessionError:
		if p, ok := payload.(runner.ErrorPayload); ok {
			fmt.Fprintf(os.Stderr, "error: %s\n", p.Error)
		}
	case runner.EventPlotImage:
		if p, ok := payload.(runner.PlotPayload); ok {
			data, err := base64.StdEncoding.DecodeString(p.ImageBase64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: decoding plot %s: %v\n", p.Filename, err)
				return
			}
			if err := os.WriteFile(p.Filename, data, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "error: saving plot %s: %v\n", p.Filename, err)
				return
			}
			fmt.Printf("[saved plot %s]\n", p.Filename)
		}
	case runner.EventProcessEnded:
		c.once.Do(func() { close(c.done) })
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	langs := lang.Builtin()
	if cfg.Runner.LanguagesFile != "" {
		if err := langs.LoadFile(cfg.Runner.LanguagesFile); err != nil {
			return fmt.Errorf("loading languages: %w", err)
		}
	}

	path := args[0]
	key := langFlag
	if key == "" {
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		spec, ok := langs.ByExtension(ext)
		if !ok {
			return fmt.Errorf("cannot infer language from %q; use --lang", path)
		}
		key = spec.Key
	}

	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	engine := runner.New(langs, runner.Options{
		PollInterval:    cfg.Runner.PollInterval,
		MaxImageDim:     cfg.Runner.MaxImageDim,
		PrepopulatePath: cfg.Runner.PrepopulatePath,
	})

	em := &consoleEmitter{done: make(chan struct{})}
	id := uuid.New().String()
	if err := engine.Start(id, key, string(code), em); err != nil {
		// The emitter already put this on stderr.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return err
	}

	rl, err := readline.New("")
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	// Unblock the input loop once the program is done.
	go func() {
		<-em.done
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				engine.Kill(id, em)
			}
			break
		}
		engine.SendInput(id, line, em)
	}

	<-em.done
	return nil
}
