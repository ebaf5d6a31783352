package logging

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Properties is a parsed XsmpLogger.properties file: a flat key=value (or
// key:value) table, colon/equals delimited, comments starting with '#' or
// '!' ignored, matching the legacy log4j-style dialect spec.md §6 names.
type Properties map[string]string

// ParseProperties reads key/value pairs from r.
func ParseProperties(r io.Reader) (Properties, error) {
	props := Properties{}
	scanner := bufio.NewScanner(r)
	var cont strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		if strings.HasSuffix(line, "\\") {
			cont.WriteString(strings.TrimSuffix(line, "\\"))
			continue
		}
		if cont.Len() > 0 {
			cont.WriteString(line)
			line = cont.String()
			cont.Reset()
		}
		key, value, ok := splitKV(line)
		if !ok {
			continue
		}
		props[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return props, nil
}

func splitKV(line string) (string, string, bool) {
	idx := strings.IndexAny(line, "=:")
	if idx < 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

// Appenders returns the names listed in log.rootLogger, comma-separated.
func (p Properties) Appenders() []string {
	raw, ok := p["log.rootLogger"]
	if !ok {
		return nil
	}
	return splitCSV(raw)
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Build constructs a Logger from props, attaching one appender per name
// listed in log.rootLogger. times feeds %S/%E/%M/%d pattern tokens; it may
// be nil.
func Build(props Properties, times TimeSource) (*Logger, error) {
	logger := New(times)
	for _, name := range props.Appenders() {
		appender, err := buildAppender(props, name, times)
		if err != nil {
			return nil, fmt.Errorf("logging: appender %q: %w", name, err)
		}
		logger.Attach(appender)
	}
	return logger, nil
}

func buildAppender(props Properties, name string, times TimeSource) (Appender, error) {
	prefix := "log.appender." + name
	kind := props[prefix]

	layout := buildLayout(props, prefix)
	levels := buildLevels(props[prefix+".levels"])
	pathFilter, err := buildPathFilter(props[prefix+".path"])
	if err != nil {
		return nil, err
	}

	switch kind {
	case "FileAppender":
		file := props[prefix+".File"]
		if file == "" {
			return nil, fmt.Errorf("FileAppender %q missing .File", name)
		}
		return FileAppender(file, layout, times, levels, pathFilter)
	case "ConsoleAppender", "":
		return ConsoleAppender(layout, times, levels, pathFilter), nil
	default:
		return nil, fmt.Errorf("unknown appender kind %q", kind)
	}
}

func buildLayout(props Properties, prefix string) Layout {
	switch props[prefix+".layout"] {
	case "PatternLayout":
		return NewPatternLayout(props[prefix+".layout.conversionPattern"])
	default:
		return SimpleLayout{}
	}
}

func buildLevels(raw string) map[Kind]bool {
	if raw == "" {
		return nil
	}
	levels := map[Kind]bool{}
	for _, name := range splitCSV(raw) {
		if k, ok := parseKind(name); ok {
			levels[k] = true
		}
	}
	return levels
}

func parseKind(name string) (Kind, bool) {
	switch name {
	case "Trace":
		return Trace, true
	case "Debug":
		return Debug, true
	case "Information", "Info":
		return Information, true
	case "Warning", "Warn":
		return Warning, true
	case "Error":
		return Error, true
	case "Fatal":
		return Fatal, true
	default:
		return 0, false
	}
}

func buildPathFilter(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}
