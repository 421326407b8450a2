package watcher

import "errors"

var (
	// ErrWatcherClosed indicates the watcher has been closed.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrNotWatching indicates the path is not on the watch list.
	ErrNotWatching = errors.New("path not watched")
)
