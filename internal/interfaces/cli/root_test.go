package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appchem "github.com/chem4word/chem4word/internal/application/chemistry"
	"github.com/chem4word/chem4word/internal/config"
	"github.com/chem4word/chem4word/internal/infrastructure/messaging/kafka"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/telemetry"
	"github.com/chem4word/chem4word/internal/infrastructure/storage/minio"
	"github.com/chem4word/chem4word/pkg/errors"
)

const ethanolCML = `<cml>
  <molecule id="m1">
    <atomArray>
      <atom id="a1" elementType="C" x2="0" y2="0"/>
      <atom id="a2" elementType="C" x2="1.5" y2="0.75"/>
      <atom id="a3" elementType="O" x2="3" y2="0"/>
    </atomArray>
    <bondArray>
      <bond id="b1" atomRefs2="a1 a2" order="S"/>
      <bond id="b2" atomRefs2="a2 a3" order="S"/>
    </bondArray>
  </molecule>
</cml>`

const brokenAtomCML = `<cml>
  <molecule id="m1">
    <atom id="a1" elementType="C"/>
    <atom id="a2" elementType="C"/>
  </molecule>
</cml>`

// ─── Fakes ──────────────────────────────────────────────────────────────────

type memBackend struct {
	mu    sync.Mutex
	parts map[string]string
}

func newMemBackend() *memBackend { return &memBackend{parts: map[string]string{}} }

func (m *memBackend) Put(_ context.Context, guid, text string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parts[guid] = text
	return nil
}

func (m *memBackend) Get(_ context.Context, guid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.parts[guid]
	if !ok {
		return "", errors.New(errors.CodePartNotFound, "part not found").WithDetail(guid)
	}
	return text, nil
}

func (m *memBackend) Delete(_ context.Context, guid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.parts[guid]; !ok {
		return errors.New(errors.CodePartNotFound, "part not found").WithDetail(guid)
	}
	delete(m.parts, guid)
	return nil
}

func (m *memBackend) List(context.Context) ([]minio.PartInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []minio.PartInfo
	for guid, text := range m.parts {
		out = append(out, minio.PartInfo{GUID: guid, Size: int64(len(text))})
	}
	return out, nil
}

type countingCache struct {
	entries map[string]string
	hits    int
}

func (c *countingCache) GetOrLoad(ctx context.Context, guid string, load func(context.Context) (string, error)) (string, bool, error) {
	if v, ok := c.entries[guid]; ok {
		c.hits++
		return v, true, nil
	}
	v, err := load(ctx)
	if err != nil {
		return "", false, err
	}
	c.entries[guid] = v
	return v, false, nil
}

func (c *countingCache) Set(_ context.Context, guid, text string) error {
	c.entries[guid] = text
	return nil
}

func (c *countingCache) Delete(_ context.Context, guid string) error {
	delete(c.entries, guid)
	return nil
}

type scriptedSource struct {
	events []telemetry.Event
	closed bool
}

func (s *scriptedSource) Run(ctx context.Context, handler kafka.EventHandler) error {
	for _, ev := range s.events {
		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

func memProviders(store *memBackend) Providers {
	return Providers{
		Store: func(context.Context, *config.Config, logging.Logger) (PartBackend, func() error, error) {
			return store, func() error { return nil }, nil
		},
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, cfg *config.Config, providers Providers, args ...string) cliResult {
	t.Helper()
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	cmd := NewRootCommand(WithConfig(cfg), WithLogger(logging.NewNopLogger()), WithProviders(providers))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ─── Root ───────────────────────────────────────────────────────────────────

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "chem4word", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"inspect", "convert", "store", "watch", "telemetry", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "log-level", "format", "verbose", "no-color", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %q", flag)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestRoot_UnknownFormat(t *testing.T) {
	res := runCLI(t, nil, Providers{}, "--format", "yaml", "version")
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.CodeInvalidParam))
}

func TestRoot_UnknownSubcommand(t *testing.T) {
	res := runCLI(t, nil, Providers{}, "unknownsubcommand")
	assert.Error(t, res.err)
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := newVersionCmd()
	cmd.SetContext(context.Background())
	_, err := GetCLIContext(cmd)
	assert.True(t, errors.IsCode(err, errors.CodeInternal))
}

// ─── Version ────────────────────────────────────────────────────────────────

func TestVersion(t *testing.T) {
	orig := Version
	Version = "1.2.3"
	defer func() { Version = orig }()

	res := runCLI(t, nil, Providers{}, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "chem4word 1.2.3")

	res = runCLI(t, nil, Providers{}, "--format", "json", "version")
	require.NoError(t, res.err)
	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, "1.2.3", info.Version)
}

// ─── Inspect ────────────────────────────────────────────────────────────────

func TestInspect_Text(t *testing.T) {
	path := writeFile(t, "ethanol.cml", ethanolCML)

	res := runCLI(t, nil, Providers{}, "inspect", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Formula:  C 2 H 6 O 1")
	assert.Contains(t, res.stdout, "1 molecule(s), 3 atom(s), 2 bond(s)")
	assert.Contains(t, res.stdout, "- m1  C 2 H 6 O 1  atoms=3 bonds=2 rings=0")
}

func TestInspect_JSON(t *testing.T) {
	path := writeFile(t, "ethanol.cml", ethanolCML)

	res := runCLI(t, nil, Providers{}, "--format", "json", "inspect", path)
	require.NoError(t, res.err)

	var result InspectResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &result))
	assert.Equal(t, 3, result.Atoms)
	assert.Equal(t, 2, result.Bonds)
	require.Len(t, result.Molecules, 1)
	assert.Equal(t, "m1", result.Molecules[0].ID)
	assert.Equal(t, "C 2 H 6 O 1", result.Molecules[0].Formula)
	assert.InDelta(t, 46.07, result.Molecules[0].Weight, 0.05)
	assert.Empty(t, result.Errors)
}

func TestInspect_Table(t *testing.T) {
	path := writeFile(t, "ethanol.cml", ethanolCML)

	res := runCLI(t, nil, Providers{}, "--format", "table", "inspect", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "m1")
	assert.Contains(t, res.stdout, "C 2 H 6 O 1")
}

func TestInspect_Diagnostics(t *testing.T) {
	path := writeFile(t, "broken.cml", brokenAtomCML)

	res := runCLI(t, nil, Providers{}, "--no-color", "inspect", path)
	require.NoError(t, res.err)
	assert.Equal(t, 2, strings.Count(res.stdout, "error:"))

	res = runCLI(t, nil, Providers{}, "inspect", "--strict", path)
	assert.True(t, errors.IsCode(res.err, errors.CodeValidation))

	cfg := config.NewDefaultConfig()
	cfg.CML.MaxErrors = 1
	res = runCLI(t, cfg, Providers{}, "inspect", path)
	assert.True(t, errors.IsCode(res.err, errors.CodeCMLTooManyErrs))
}

func TestInspect_Failures(t *testing.T) {
	res := runCLI(t, nil, Providers{}, "inspect", filepath.Join(t.TempDir(), "missing.cml"))
	assert.True(t, errors.IsCode(res.err, errors.CodeInvalidParam))

	res = runCLI(t, nil, Providers{}, "inspect", writeFile(t, "bad.cml", "<cml>"))
	assert.True(t, errors.IsCode(res.err, errors.CodeCMLParse))

	res = runCLI(t, nil, Providers{}, "inspect")
	assert.Error(t, res.err)
}

// ─── Convert ────────────────────────────────────────────────────────────────

func TestConvert_Stdout(t *testing.T) {
	path := writeFile(t, "ethanol.cml", ethanolCML)

	res := runCLI(t, nil, Providers{}, "convert", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `<cml:atom id="a1" elementType="C" x2="0" y2="0"/>`)

	res = runCLI(t, nil, Providers{}, "convert", "--default-namespace", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `<atom id="a1" elementType="C" x2="0" y2="0"/>`)
	assert.NotContains(t, res.stdout, "cml:atom")

	res = runCLI(t, nil, Providers{}, "convert", "--indent", "0", path)
	require.NoError(t, res.err)
	assert.Equal(t, 1, strings.Count(res.stdout, "\n"))

	res = runCLI(t, nil, Providers{}, "convert", "--indent=-1", path)
	assert.True(t, errors.IsCode(res.err, errors.CodeInvalidParam))
}

func TestConvert_File(t *testing.T) {
	in := writeFile(t, "ethanol.cml", ethanolCML)
	out := filepath.Join(t.TempDir(), "out.cml")

	res := runCLI(t, nil, Providers{}, "--no-color", "convert", in, "-o", out)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "OK: wrote "+out)

	written, err := os.ReadFile(out)
	require.NoError(t, err)

	again := runCLI(t, nil, Providers{}, "convert", out)
	require.NoError(t, again.err)
	assert.Equal(t, string(written), again.stdout, "canonical output is stable")
}

// ─── Store ──────────────────────────────────────────────────────────────────

func TestStore_Lifecycle(t *testing.T) {
	backend := newMemBackend()
	providers := memProviders(backend)
	path := writeFile(t, "ethanol.cml", ethanolCML)

	res := runCLI(t, nil, providers, "store", "put", path)
	require.NoError(t, res.err)
	guid := strings.TrimSpace(res.stdout)
	require.NotEmpty(t, guid)
	require.Contains(t, backend.parts, guid)

	res = runCLI(t, nil, providers, "store", "get", guid)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, guid)
	assert.Contains(t, res.stdout, `<cml:atom id="a3" elementType="O" x2="3" y2="0"/>`)

	res = runCLI(t, nil, providers, "--format", "json", "store", "list")
	require.NoError(t, res.err)
	var list PartList
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &list))
	require.Len(t, list.Parts, 1)
	assert.Equal(t, guid, list.Parts[0].GUID)

	res = runCLI(t, nil, providers, "--no-color", "store", "delete", guid)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "OK: deleted "+guid)

	res = runCLI(t, nil, providers, "store", "get", guid)
	assert.True(t, errors.IsNotFound(res.err))

	res = runCLI(t, nil, providers, "store", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "no parts")
}

func TestStore_PutJSON(t *testing.T) {
	backend := newMemBackend()
	path := writeFile(t, "ethanol.cml", ethanolCML)

	res := runCLI(t, nil, memProviders(backend), "--format", "json", "store", "put", path)
	require.NoError(t, res.err)
	var saved SavedPart
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &saved))
	assert.Equal(t, "C 2 H 6 O 1", saved.Formula)
	assert.Contains(t, backend.parts, saved.GUID)
}

func TestStore_GetToFile(t *testing.T) {
	backend := newMemBackend()
	backend.parts["g1"] = ethanolCML
	out := filepath.Join(t.TempDir(), "g1.cml")

	res := runCLI(t, nil, memProviders(backend), "store", "get", "g1", "-o", out)
	require.NoError(t, res.err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "g1")
}

func TestStore_UsesCacheWhenEnabled(t *testing.T) {
	backend := newMemBackend()
	backend.parts["g1"] = ethanolCML
	cache := &countingCache{entries: map[string]string{}}
	providers := memProviders(backend)
	providers.Cache = func(context.Context, *config.Config, logging.Logger) (appchem.PartCache, func() error, error) {
		return cache, func() error { return nil }, nil
	}
	cfg := config.NewDefaultConfig()
	cfg.Cache.Enabled = true

	require.NoError(t, runCLI(t, cfg, providers, "store", "get", "g1").err)
	require.NoError(t, runCLI(t, cfg, providers, "store", "get", "g1").err)
	assert.Equal(t, 1, cache.hits)
}

func TestStore_CacheUnavailableIsNotFatal(t *testing.T) {
	backend := newMemBackend()
	backend.parts["g1"] = ethanolCML
	providers := memProviders(backend)
	providers.Cache = func(context.Context, *config.Config, logging.Logger) (appchem.PartCache, func() error, error) {
		return nil, nil, errors.New(errors.CodeCache, "connection refused")
	}
	cfg := config.NewDefaultConfig()
	cfg.Cache.Enabled = true

	assert.NoError(t, runCLI(t, cfg, providers, "store", "get", "g1").err)
}

func TestStore_Unavailable(t *testing.T) {
	providers := Providers{
		Store: func(context.Context, *config.Config, logging.Logger) (PartBackend, func() error, error) {
			return nil, nil, errors.New(errors.CodeStorage, "endpoint unreachable")
		},
	}
	res := runCLI(t, nil, providers, "store", "list")
	assert.True(t, errors.IsCode(res.err, errors.CodeStorage))

	res = runCLI(t, nil, Providers{}, "store", "list")
	assert.True(t, errors.IsCode(res.err, errors.CodeConfigInvalid))
}

// ─── Telemetry ──────────────────────────────────────────────────────────────

func TestTelemetryTail(t *testing.T) {
	src := &scriptedSource{events: []telemetry.Event{
		{
			Time:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Source:  "chem4word.service",
			Level:   telemetry.LevelInformation,
			Message: "part saved",
			Fields:  map[string]string{"part_guid": "g1", "formula": "C 2 H 6 O 1"},
		},
	}}
	providers := Providers{
		TelemetrySource: func(*config.Config, logging.Logger) (TelemetrySource, error) { return src, nil },
	}
	cfg := config.NewDefaultConfig()
	cfg.Telemetry.Enabled = true

	res := runCLI(t, cfg, providers, "telemetry", "tail")
	require.NoError(t, res.err)
	assert.Equal(t, "2024-05-01T12:00:00Z [Information] chem4word.service: part saved formula=C 2 H 6 O 1 part_guid=g1\n", res.stdout)
	assert.True(t, src.closed)
}

func TestTelemetryTail_Disabled(t *testing.T) {
	res := runCLI(t, nil, Providers{}, "telemetry", "tail")
	assert.True(t, errors.IsCode(res.err, errors.CodeConfigInvalid))
}

func TestTelemetrySinkReceivesServiceEvents(t *testing.T) {
	sink := &telemetry.MemorySink{}
	backend := newMemBackend()
	providers := memProviders(backend)
	providers.TelemetrySink = func(*config.Config, logging.Logger) (telemetry.Sink, error) { return sink, nil }
	cfg := config.NewDefaultConfig()
	cfg.Telemetry.MachineID = "box-7"

	res := runCLI(t, cfg, providers, "store", "put", writeFile(t, "ethanol.cml", ethanolCML))
	require.NoError(t, res.err)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "part saved", events[0].Message)
	assert.Equal(t, "box-7", events[0].MachineID)
}

func TestFormatEvent_NoFields(t *testing.T) {
	ev := telemetry.Event{
		Time:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		MachineID: "m",
		Source:    "s",
		Level:     telemetry.LevelError,
		Message:   "boom",
	}
	assert.Equal(t, "2024-01-02T03:04:05Z [Error] s: boom machine=m", formatEvent(ev))
}
