package logging

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
)

// filteredAppender wraps a Writer with the level-set and sender-path
// filters every XsmpLogger.properties appender entry can declare.
type filteredAppender struct {
	mu     sync.Mutex
	w      io.Writer
	layout Layout
	times  TimeSource

	levels map[Kind]bool // nil means "all levels"
	path   *regexp.Regexp
}

func (a *filteredAppender) Append(r Record) {
	if a.levels != nil && !a.levels[r.Kind] {
		return
	}
	if a.path != nil && !a.path.MatchString(r.Sender) {
		return
	}
	line := a.layout.Render(r, a.times)
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.w, line)
}

// ConsoleAppender writes filtered, laid-out records to stdout.
func ConsoleAppender(layout Layout, times TimeSource, levels map[Kind]bool, path *regexp.Regexp) Appender {
	return &filteredAppender{w: os.Stdout, layout: layout, times: times, levels: levels, path: path}
}

// FileAppender writes filtered, laid-out records to the named file,
// creating or truncating it.
func FileAppender(path string, layout Layout, times TimeSource, levels map[Kind]bool, pathFilter *regexp.Regexp) (Appender, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &filteredAppender{w: f, layout: layout, times: times, levels: levels, path: pathFilter}, nil
}
