package logs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		" WARN ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewRejectsUnknownOutput(t *testing.T) {
	if _, err := New(Options{Output: "syslog"}); err == nil {
		t.Fatal("expected unsupported output error")
	}
	if _, err := New(Options{Output: "file"}); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestFileOutputWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gate.log")
	log, err := New(Options{Output: "file", File: path, Format: "json", Level: "debug"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.WithField("tab", "t1").Debug("session loaded")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"tab":"t1"`) || !strings.Contains(string(data), "session loaded") {
		t.Fatalf("unexpected log content %q", data)
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&textFormatter{})
	log.WithFields(logrus.Fields{"b": 2, "a": 1}).Info("decision")

	line := buf.String()
	if !strings.HasPrefix(line, "INFO ") || !strings.HasSuffix(line, "decision a=1 b=2\n") {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestDualWriterStripsColor(t *testing.T) {
	var out, file bytes.Buffer
	w := &dualWriter{stdout: &out, file: &file}
	if _, err := w.Write([]byte("\x1b[32mINFO\x1b[0m ok\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if file.String() != "INFO ok\n" {
		t.Fatalf("expected stripped file output, got %q", file.String())
	}
}
