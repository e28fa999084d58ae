package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/matzehuels/scribe/pkg/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	cfg, path, err := Load(LoadOptions{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty without config file", path)
	}

	if cfg.Render.IndentWidth != 1 || cfg.Render.MaxDepth != 256 || !cfg.Render.TrailingNewline {
		t.Errorf("render defaults = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("cache.backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Cache.Dir != filepath.Join("/tmp/xdg-cache", AppName) {
		t.Errorf("cache.dir = %q", cfg.Cache.Dir)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[render]
tabs = true
max_depth = 8

[cache]
backend = "memory"
ttl = "90m"
memory_entries = 64

[redis]
addr = "redis:6379"
db = 2
`)

	cfg, path, err := Load(LoadOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q", path)
	}
	if !cfg.Render.Tabs || cfg.Render.MaxDepth != 8 {
		t.Errorf("render = %+v", cfg.Render)
	}
	// Untouched keys keep defaults.
	if !cfg.Render.TrailingNewline {
		t.Error("trailing_newline default lost")
	}
	if cfg.Cache.Backend != BackendMemory || cfg.Cache.TTL != 90*time.Minute || cfg.Cache.MemoryEntries != 64 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[render]
indent_width = 2
max_depth = 10
`)
	t.Setenv("SCRIBE_RENDER_INDENT_WIDTH", "3")
	t.Setenv("SCRIBE_RENDER_MAX_DEPTH", "20")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("indent", 1, "")
	fs.Int("max-depth", 0, "")
	if err := fs.Parse([]string{"--indent=4"}); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(LoadOptions{
		Dir:   dir,
		Flags: fs,
		Bindings: map[string]string{
			"render.indent_width": "indent",
			"render.max_depth":    "max-depth",
			"render.tabs":         "missing-flag",
		},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Changed flag beats env, env beats file.
	if cfg.Render.IndentWidth != 4 {
		t.Errorf("indent_width = %d, want 4 from flag", cfg.Render.IndentWidth)
	}
	if cfg.Render.MaxDepth != 20 {
		t.Errorf("max_depth = %d, want 20 from env", cfg.Render.MaxDepth)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[server]\naddr = \":9999\"\n")

	cfg, got, err := Load(LoadOptions{File: path})
	if err != nil {
		t.Fatal(err)
	}
	if got != path || cfg.Server.Addr != ":9999" {
		t.Errorf("Load(File) = %q, %q", got, cfg.Server.Addr)
	}

	_, _, err = Load(LoadOptions{File: filepath.Join(t.TempDir(), "nope.toml")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"bad toml", "[render\n", errors.ErrCodeInvalidInput},
		{"bad backend", "[cache]\nbackend = \"mongo\"\n", errors.ErrCodeInvalidInput},
		{"negative width", "[render]\nindent_width = -1\n", errors.ErrCodeInvalidIndent},
		{"zero width", "[render]\nindent_width = 0\n", errors.ErrCodeInvalidIndent},
		{"negative depth", "[render]\nmax_depth = -1\n", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.body)
			_, _, err := Load(LoadOptions{Dir: dir})
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Render.Tabs = true
	cfg.Render.MaxDepth = 5

	opts := cfg.PipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.IndentUnit != "\t" || opts.MaxDepth != 5 || !opts.TrailingNewline {
		t.Errorf("PipelineOptions = %+v", opts)
	}
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	if d, _ := Dir(); d != filepath.Join("/tmp/cfg", AppName) {
		t.Errorf("Dir() = %q", d)
	}
	if d, _ := CacheDir(); d != filepath.Join("/tmp/cache", AppName) {
		t.Errorf("CacheDir() = %q", d)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	home, _ := os.UserHomeDir()
	if d, _ := CacheDir(); d != filepath.Join(home, ".cache", AppName) {
		t.Errorf("CacheDir() without XDG = %q", d)
	}
}
