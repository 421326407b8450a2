package app

import (
	"bufio"
	"context"
	"io"

	"github.com/dshills/gamelib/internal/config/watcher"
)

// Run feeds lines from in to the console until in is exhausted, the quit
// command runs, or ctx is cancelled. Watched scripts are re-executed when
// they change.
//
// The reader goroutine stops when Run returns, but only once its pending
// read of in completes. That line is dropped.
func (app *Application) Run(ctx context.Context, in io.Reader) error {
	if app.closed.Load() {
		return ErrShutdown
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go readLines(ctx, in, lines, readErr)

	var events <-chan watcher.Event
	var watchErrs <-chan error
	if app.watcher != nil {
		events = app.watcher.Events()
		watchErrs = app.watcher.Errors()
	}

	app.logger.Debug().Msg("event loop started")
	defer app.logger.Debug().Msg("event loop stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			app.execLine(line)
			if app.quit {
				return nil
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			app.reload(ev)

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			app.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// readLines sends each line of in on lines. The scan result is stored in
// errc before lines is closed.
func readLines(ctx context.Context, in io.Reader, lines chan<- string, errc chan<- error) {
	defer close(lines)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			errc <- nil
			return
		}
	}
	errc <- scanner.Err()
}

func (app *Application) reload(ev watcher.Event) {
	switch ev.Op {
	case watcher.OpRemove, watcher.OpRename:
		app.logger.Warn().Str("script", ev.Path).Stringer("op", ev.Op).Msg("watched script went away")
		return
	}
	app.logger.Info().Str("script", ev.Path).Stringer("op", ev.Op).Msg("reloading script")
	app.runScript(ev.Path)
}
