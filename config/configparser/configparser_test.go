package configparser

import (
	"os"
	"path/filepath"
	"testing"
)

func resetDirectives() {
	directives = map[string]directiveDef{}
}

func TestParseOptionsEqualsAndList(t *testing.T) {
	resetDirectives()
	var got []Option
	Register("DEV", func(opts []Option) error {
		got = opts
		return nil
	})

	line := &optionLine{line: "DEV ADDR=0C0 TYPE=1443 FILE=line.txt,START\n"}
	if err := line.parseLine(); err != nil {
		t.Fatal(err)
	}

	addr, ok := Get(got, "ADDR")
	if !ok || addr != "0C0" {
		t.Errorf("ADDR = %q,%v", addr, ok)
	}
	ty, ok := Get(got, "TYPE")
	if !ok || ty != "1443" {
		t.Errorf("TYPE = %q,%v", ty, ok)
	}
	file, ok := Get(got, "FILE")
	if !ok || file != "line.txt" {
		t.Errorf("FILE = %q,%v", file, ok)
	}
}

func TestParseQuotedValue(t *testing.T) {
	resetDirectives()
	var got []Option
	Register("LOG", func(opts []Option) error {
		got = opts
		return nil
	})

	line := &optionLine{line: `LOG FILE="trace log.txt" LEVEL=TRACE,DEVICE` + "\n"}
	if err := line.parseLine(); err != nil {
		t.Fatal(err)
	}
	file, _ := Get(got, "FILE")
	if file != "trace log.txt" {
		t.Errorf("quoted FILE = %q, want %q", file, "trace log.txt")
	}
}

func TestUnregisteredDirectiveErrors(t *testing.T) {
	resetDirectives()
	line := &optionLine{line: "BOGUS FOO=1\n"}
	if err := line.parseLine(); err == nil {
		t.Error("expected error for unregistered directive")
	}
}

func TestCommentAndBlankLinesIgnored(t *testing.T) {
	resetDirectives()
	called := false
	Register("CPU", func(opts []Option) error {
		called = true
		return nil
	})

	for _, text := range []string{"# just a comment\n", "\n", "   \n"} {
		line := &optionLine{line: text}
		if err := line.parseLine(); err != nil {
			t.Fatal(err)
		}
	}
	if called {
		t.Error("comment/blank lines must not invoke a directive")
	}
}

func TestLoadConfigFile(t *testing.T) {
	resetDirectives()
	var gotCPU, gotLog []Option
	Register("CPU", func(opts []Option) error {
		gotCPU = opts
		return nil
	})
	Register("LOG", func(opts []Option) error {
		gotLog = opts
		return nil
	})

	dir := t.TempDir()
	name := filepath.Join(dir, "test.cfg")
	content := "# comment\nCPU MODEL=2030 MEM=65536\nLOG FILE=trace.log LEVEL=TRACE\n"
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfigFile(name); err != nil {
		t.Fatal(err)
	}

	if m, _ := Get(gotCPU, "MODEL"); m != "2030" {
		t.Errorf("CPU MODEL = %q", m)
	}
	if f, _ := Get(gotLog, "FILE"); f != "trace.log" {
		t.Errorf("LOG FILE = %q", f)
	}
}
