package logging_test

import (
	"strings"
	"testing"
	"time"

	"github.com/sarchlab/smp/logging"
)

type fakeAppender struct{ lines []string }

func (a *fakeAppender) Append(r logging.Record) {
	a.lines = append(a.lines, r.Kind.String()+"|"+r.Sender+"|"+r.Message)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition never became true")
}

func TestLogDeliversToAttachedAppender(t *testing.T) {
	l := logging.New(nil)
	defer l.Close()
	app := &fakeAppender{}
	l.Attach(app)

	l.Info("Models.sensor", "hello")
	waitFor(t, func() bool { return len(app.lines) == 1 })
	if app.lines[0] != "Information|Models.sensor|hello" {
		t.Fatalf("got %q", app.lines[0])
	}
}

type fakeTimes struct{ sim, mission, epoch time.Duration }

func (f fakeTimes) SimulationTime() time.Duration { return f.sim }
func (f fakeTimes) MissionTime() time.Duration    { return f.mission }
func (f fakeTimes) EpochTime() time.Duration      { return f.epoch }
func (f fakeTimes) ZuluTime() time.Time           { return time.Unix(0, 0).UTC() }

func TestPatternLayoutRendersAllTokens(t *testing.T) {
	times := fakeTimes{sim: 10 * time.Nanosecond, mission: 20 * time.Nanosecond, epoch: 30 * time.Nanosecond}
	layout := logging.NewPatternLayout("%k %p %m [%S/%M/%E]%n")
	out := layout.Render(logging.Record{Kind: logging.Warning, Sender: "Models.a", Message: "msg"}, times)
	if !strings.Contains(out, "Warning Models.a msg [10/20/30]") {
		t.Fatalf("got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected trailing newline from %%n, got %q", out)
	}
}

func TestParsePropertiesBuildsFilteredAppenders(t *testing.T) {
	raw := `
log.rootLogger = console
log.appender.console = ConsoleAppender
log.appender.console.layout = PatternLayout
log.appender.console.layout.conversionPattern = %k: %m
log.appender.console.levels = Warning, Error
log.appender.console.path = Models\..*
`
	props, err := logging.ParseProperties(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := props.Appenders(); len(got) != 1 || got[0] != "console" {
		t.Fatalf("got appenders %v", got)
	}

	logger, err := logging.Build(props, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer logger.Close()
}

func TestParsePropertiesIgnoresCommentsAndBlankLines(t *testing.T) {
	raw := "# comment\n\n! bang comment\nlog.rootLogger=console\n"
	props, err := logging.ParseProperties(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if props["log.rootLogger"] != "console" {
		t.Fatalf("got %q", props["log.rootLogger"])
	}
}
