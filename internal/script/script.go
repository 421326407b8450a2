// Package script runs console scripts.
//
// A script is a text file with one console line per line, as typed at the
// console prompt. Blank lines and lines starting with "//" or "#" are
// skipped:
//
//	// autoexec.cfg
//	volume 0.8
//	name Player
//	exec binds.cfg
//
// The exec command is available once an Executor is registered with the
// console. Relative paths given to exec resolve against the directory of
// the script that issued it.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/gamelib/internal/command"
	"github.com/dshills/gamelib/internal/console"
	"github.com/dshills/gamelib/internal/event"
)

// DefaultMaxDepth bounds nested exec calls.
const DefaultMaxDepth = 8

// maxLineSize bounds a single script line.
const maxLineSize = 1 << 20

// ExecCommand is the name of the command registered by Register.
const ExecCommand = "exec"

// Errors returned by script execution.
var (
	// ErrDepthExceeded indicates exec calls nested deeper than allowed.
	ErrDepthExceeded = errors.New("exec depth exceeded")

	// ErrScriptNotFound indicates the script file doesn't exist.
	ErrScriptNotFound = errors.New("script not found")
)

// Result summarizes one script run.
type Result struct {
	// RunID correlates log entries of one run.
	RunID string
	// Source is the file path, or the name given with WithSource.
	Source string
	// Lines is the number of lines read.
	Lines int
	// Executed is the number of lines passed to the console.
	Executed int
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger for run progress and exec failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMaxDepth sets the exec nesting limit.
func WithMaxDepth(depth int) Option {
	return func(e *Executor) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithBaseDir sets the directory relative paths resolve against when no
// script is running. It defaults to the working directory.
func WithBaseDir(dir string) Option {
	return func(e *Executor) {
		e.baseDir = dir
	}
}

// Executor feeds scripts to a console.
type Executor struct {
	console  *console.Console
	logger   zerolog.Logger
	maxDepth int
	baseDir  string

	// dirs is the directory stack of the files being executed.
	dirs []string
	key  event.Key
	reg  bool
}

// NewExecutor creates an executor for c.
func NewExecutor(c *console.Console, opts ...Option) *Executor {
	e := &Executor{
		console:  c,
		logger:   zerolog.Nop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exec runs every line of r through the console. source names the script
// in logs and the result.
func (e *Executor) Exec(r io.Reader, source string) (Result, error) {
	res := Result{RunID: uuid.New().String(), Source: source}
	log := e.logger.With().Str("run_id", res.RunID).Str("script", source).Logger()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for scanner.Scan() {
		res.Lines++
		line := scanner.Text()
		if skipLine(line) {
			continue
		}
		e.console.Parse(line)
		res.Executed++
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Int("line", res.Lines+1).Msg("script read failed")
		return res, fmt.Errorf("reading script %s: %w", source, err)
	}

	log.Info().Int("lines", res.Lines).Int("executed", res.Executed).Msg("script executed")
	return res, nil
}

// ExecFile runs the script at path. Relative paths resolve against the
// directory of the running script, or the base directory.
func (e *Executor) ExecFile(path string) (Result, error) {
	if len(e.dirs) >= e.maxDepth {
		return Result{Source: path}, fmt.Errorf("%w: %s at depth %d", ErrDepthExceeded, path, len(e.dirs))
	}

	path = e.resolve(path)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Source: path}, fmt.Errorf("%w: %s", ErrScriptNotFound, path)
		}
		return Result{Source: path}, fmt.Errorf("opening script %s: %w", path, err)
	}
	defer f.Close()

	e.dirs = append(e.dirs, filepath.Dir(path))
	defer func() { e.dirs = e.dirs[:len(e.dirs)-1] }()

	return e.Exec(f, path)
}

// Depth returns the number of script files currently executing.
func (e *Executor) Depth() int {
	return len(e.dirs)
}

func (e *Executor) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if n := len(e.dirs); n > 0 {
		return filepath.Join(e.dirs[n-1], path)
	}
	if e.baseDir != "" {
		return filepath.Join(e.baseDir, path)
	}
	return path
}

// Register adds the exec command to the console and starts listening for
// it. Registering twice is a no-op.
func (e *Executor) Register() error {
	if e.reg {
		return nil
	}
	if _, err := e.console.RegisterCommand(command.Info{
		Name:        ExecCommand,
		Args:        1,
		Description: "Execute a console script.",
	}); err != nil {
		return err
	}
	key, err := e.console.AddCommandListener(ExecCommand, e.onExec)
	if err != nil {
		return fmt.Errorf("register exec listener: %w", err)
	}
	e.key = key
	e.reg = true
	return nil
}

// Unregister stops handling the exec command. The command signature stays
// registered.
func (e *Executor) Unregister() {
	if !e.reg {
		return
	}
	e.console.RemoveListener(e.key)
	e.reg = false
}

func (e *Executor) onExec(ev console.CommandSent) {
	path := ev.Command.Arg(0)
	if _, err := e.ExecFile(path); err != nil {
		e.logger.Error().Err(err).Str("script", path).Msg("exec failed")
	}
}

func skipLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#")
}

// Exec runs r through c with a one-off executor.
func Exec(c *console.Console, r io.Reader, opts ...Option) (Result, error) {
	return NewExecutor(c, opts...).Exec(r, "<reader>")
}

// ExecFile runs the script at path through c with a one-off executor.
func ExecFile(c *console.Console, path string, opts ...Option) (Result, error) {
	return NewExecutor(c, opts...).ExecFile(path)
}

// RegisterExec creates an executor for c and registers the exec command.
func RegisterExec(c *console.Console, opts ...Option) (*Executor, error) {
	e := NewExecutor(c, opts...)
	if err := e.Register(); err != nil {
		return nil, err
	}
	return e, nil
}
