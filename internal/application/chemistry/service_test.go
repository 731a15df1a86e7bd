package chemistry

import (
	"context"
	stderrors "errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	chem "github.com/chem4word/chem4word/internal/domain/chemistry"
	"github.com/chem4word/chem4word/internal/infrastructure/cml"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/prometheus"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/telemetry"
	"github.com/chem4word/chem4word/internal/testutil"
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

// Two atoms without coordinates give two error messages.
const twoErrorsCML = `<cml>
  <molecule id="m1">
    <atom id="a1" elementType="C"/>
    <atom id="a2" elementType="C"/>
  </molecule>
</cml>`

// ─── Fakes ──────────────────────────────────────────────────────────────────

type memStore struct {
	mu    sync.Mutex
	parts map[string]string
	meta  map[string]map[string]string
	gets  int
}

func newMemStore() *memStore {
	return &memStore{parts: map[string]string{}, meta: map[string]map[string]string{}}
}

func (s *memStore) Put(_ context.Context, guid, text string, meta map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts[guid] = text
	s.meta[guid] = meta
	return nil
}

func (s *memStore) Get(_ context.Context, guid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	text, ok := s.parts[guid]
	if !ok {
		return "", errors.New(errors.CodePartNotFound, "part not found").WithDetail(guid)
	}
	return text, nil
}

func (s *memStore) Delete(_ context.Context, guid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parts[guid]; !ok {
		return errors.New(errors.CodePartNotFound, "part not found").WithDetail(guid)
	}
	delete(s.parts, guid)
	return nil
}

type memCache struct {
	entries map[string]string
	setErr  error
}

func newMemCache() *memCache { return &memCache{entries: map[string]string{}} }

func (c *memCache) GetOrLoad(ctx context.Context, guid string, load func(context.Context) (string, error)) (string, bool, error) {
	if v, ok := c.entries[guid]; ok {
		return v, true, nil
	}
	v, err := load(ctx)
	if err != nil {
		return "", false, err
	}
	c.entries[guid] = v
	return v, false, nil
}

func (c *memCache) Set(_ context.Context, guid, text string) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[guid] = text
	return nil
}

func (c *memCache) Delete(_ context.Context, guid string) error {
	delete(c.entries, guid)
	return nil
}

type MockPartStore struct {
	mock.Mock
}

func (m *MockPartStore) Put(ctx context.Context, guid, text string, meta map[string]string) error {
	return m.Called(ctx, guid, text, meta).Error(0)
}

func (m *MockPartStore) Get(ctx context.Context, guid string) (string, error) {
	args := m.Called(ctx, guid)
	return args.String(0), args.Error(1)
}

func (m *MockPartStore) Delete(ctx context.Context, guid string) error {
	return m.Called(ctx, guid).Error(0)
}

type failingCodec struct{ err error }

func (f failingCodec) Import(string) (*chem.Model, error) { return nil, f.err }
func (f failingCodec) Export(*chem.Model) (string, error) { return "", f.err }

// ─── Helpers ────────────────────────────────────────────────────────────────

type fixture struct {
	svc   Service
	store *memStore
	cache *memCache
	sink  *telemetry.MemorySink
	log   *testutil.MockLogger
}

func newFixture(cfg ServiceConfig) *fixture {
	f := &fixture{
		store: newMemStore(),
		cache: newMemCache(),
		sink:  &telemetry.MemorySink{},
		log:   testutil.NewMockLogger(),
	}
	f.svc = NewService(cml.NewConverter(), cfg,
		WithPartStore(f.store),
		WithPartCache(f.cache),
		WithTelemetry(telemetry.NewEmitter(f.sink, "machine-1", nil)),
		WithLogger(f.log),
	)
	return f
}

func scrape(t *testing.T, c prometheus.MetricsCollector) string {
	t.Helper()
	srv := httptest.NewServer(c.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// ─── Import / Export ────────────────────────────────────────────────────────

func TestImport_Success(t *testing.T) {
	f := newFixture(ServiceConfig{})

	md, err := f.svc.Import(context.Background(), ethanolCML)
	require.NoError(t, err)
	assert.Len(t, md.AllAtoms(), 3)
	assert.Len(t, md.AllBonds(), 2)
	assert.Empty(t, f.sink.Events())
}

func TestImport_TooManyErrors(t *testing.T) {
	f := newFixture(ServiceConfig{MaxErrors: 1})

	_, err := f.svc.Import(context.Background(), twoErrorsCML)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCMLTooManyErrs))
	assert.Contains(t, err.Error(), "errors=2 limit=1")

	events := f.sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, telemetry.LevelError, events[0].Level)
	assert.Equal(t, "CML_003", events[0].Fields["code"])
	assert.Equal(t, "import", events[0].Fields["component"])
	assert.Equal(t, "machine-1", events[0].MachineID)
	assert.True(t, f.log.HasMessage("error", "import failed"))
}

func TestImport_ErrorLimitBoundary(t *testing.T) {
	for _, limit := range []int{0, 2, 5} {
		f := newFixture(ServiceConfig{MaxErrors: limit})
		md, err := f.svc.Import(context.Background(), twoErrorsCML)
		require.NoError(t, err, "limit %d", limit)
		assert.Len(t, md.Errors(), 2)
	}
}

func TestImport_Malformed(t *testing.T) {
	f := newFixture(ServiceConfig{})

	_, err := f.svc.Import(context.Background(), "<cml><molecule>")
	assert.True(t, errors.IsCode(err, errors.CodeCMLParse))
	require.Len(t, f.sink.Events(), 1)
	assert.Equal(t, "CML_001", f.sink.Events()[0].Fields["code"])
}

func TestImport_CancelledContext(t *testing.T) {
	f := newFixture(ServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Import(ctx, ethanolCML)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExport(t *testing.T) {
	f := newFixture(ServiceConfig{})
	md, err := f.svc.Import(context.Background(), ethanolCML)
	require.NoError(t, err)

	text, err := f.svc.Export(context.Background(), md)
	require.NoError(t, err)
	assert.Contains(t, text, `<cml:atom id="a3" elementType="O" x2="3" y2="0"/>`)

	_, err = f.svc.Export(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidArgument))
}

func TestExport_CodecFailure(t *testing.T) {
	sink := &telemetry.MemorySink{}
	svc := NewService(failingCodec{err: errors.New(errors.CodeCMLSerialize, "boom")}, ServiceConfig{},
		WithTelemetry(telemetry.NewEmitter(sink, "", nil)))

	_, err := svc.Export(context.Background(), chem.NewModel())
	assert.True(t, errors.IsCode(err, errors.CodeCMLSerialize))
	require.Len(t, sink.Events(), 1)
	assert.Equal(t, "export", sink.Events()[0].Fields["component"])
}

func TestImportExport_Metrics(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "svc"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewChemistryMetrics(collector)
	svc := NewService(cml.NewConverter(), ServiceConfig{MaxErrors: 1}, WithMetrics(metrics))

	md, err := svc.Import(context.Background(), ethanolCML)
	require.NoError(t, err)
	_, err = svc.Export(context.Background(), md)
	require.NoError(t, err)
	_, err = svc.Import(context.Background(), twoErrorsCML)
	require.Error(t, err)

	out := scrape(t, collector)
	assert.Contains(t, out, `svc_cml_imports_total{status="success"} 1`)
	assert.Contains(t, out, `svc_cml_imports_total{status="failure"} 1`)
	assert.Contains(t, out, `svc_cml_exports_total{status="success"} 1`)
	assert.Contains(t, out, `svc_errors_total{code="CML_003",component="import"} 1`)
	assert.Contains(t, out, `svc_cml_document_atoms_sum{direction="export"} 3`)
}

// ─── Parts ──────────────────────────────────────────────────────────────────

func TestSaveLoad_RoundTrip(t *testing.T) {
	f := newFixture(ServiceConfig{})
	ctx := context.Background()
	md, err := f.svc.Import(ctx, ethanolCML)
	require.NoError(t, err)
	require.Empty(t, md.CustomXMLPartGUID)

	guid, err := f.svc.Save(ctx, md)
	require.NoError(t, err)
	assert.NotEmpty(t, guid)
	assert.Equal(t, guid, md.CustomXMLPartGUID)
	assert.Contains(t, f.store.parts[guid], guid)
	assert.Equal(t, map[string]string{"molecules": "1", "atoms": "3"}, f.store.meta[guid])
	assert.Equal(t, f.store.parts[guid], f.cache.entries[guid])

	loaded, err := f.svc.Load(ctx, guid)
	require.NoError(t, err)
	assert.Equal(t, guid, loaded.CustomXMLPartGUID)
	assert.Equal(t, md.ConciseFormula(), loaded.ConciseFormula())
	assert.Equal(t, 0, f.store.gets, "load is served from the cache")

	var messages []string
	for _, ev := range f.sink.Events() {
		messages = append(messages, ev.Message)
	}
	assert.Equal(t, []string{"part saved", "part loaded"}, messages)
}

func TestSave_KeepsExistingGUID(t *testing.T) {
	f := newFixture(ServiceConfig{})
	md, err := f.svc.Import(context.Background(), ethanolCML)
	require.NoError(t, err)
	md.CustomXMLPartGUID = "fixed-guid"

	guid, err := f.svc.Save(context.Background(), md)
	require.NoError(t, err)
	assert.Equal(t, "fixed-guid", guid)
}

func TestSave_CacheFailureIsNotFatal(t *testing.T) {
	f := newFixture(ServiceConfig{})
	f.cache.setErr = errors.New(errors.CodeCache, "redis down")
	md, err := f.svc.Import(context.Background(), ethanolCML)
	require.NoError(t, err)

	_, err = f.svc.Save(context.Background(), md)
	require.NoError(t, err)
	assert.True(t, f.log.HasMessage("warn", "failed to cache saved part"))
}

func TestSave_StoreFailure(t *testing.T) {
	store := new(MockPartStore)
	store.On("Put", mock.Anything, "g1", mock.Anything, mock.Anything).
		Return(errors.New(errors.CodeStorage, "bucket unavailable"))
	sink := &telemetry.MemorySink{}
	svc := NewService(cml.NewConverter(), ServiceConfig{},
		WithPartStore(store), WithTelemetry(telemetry.NewEmitter(sink, "", nil)))

	md := chem.NewModel()
	md.CustomXMLPartGUID = "g1"
	_, err := svc.Save(context.Background(), md)
	assert.True(t, errors.IsCode(err, errors.CodeStorage))
	require.Len(t, sink.Events(), 1)
	assert.Equal(t, "g1", sink.Events()[0].Fields["part_guid"])
	assert.Equal(t, "STORE_002", sink.Events()[0].Fields["code"])
	store.AssertExpectations(t)
}

func TestSave_FailureKeepsModelGUID(t *testing.T) {
	store := new(MockPartStore)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New(errors.CodeStorage, "bucket unavailable"))
	svc := NewService(cml.NewConverter(), ServiceConfig{}, WithPartStore(store))

	fresh := chem.NewModel()
	_, err := svc.Save(context.Background(), fresh)
	require.Error(t, err)
	assert.Empty(t, fresh.CustomXMLPartGUID)

	existing := chem.NewModel()
	existing.CustomXMLPartGUID = "g1"
	_, err = svc.Save(context.Background(), existing)
	require.Error(t, err)
	assert.Equal(t, "g1", existing.CustomXMLPartGUID)
	store.AssertNumberOfCalls(t, "Put", 2)

	broken := NewService(failingCodec{err: errors.New(errors.CodeCMLSerialize, "boom")}, ServiceConfig{},
		WithPartStore(new(MockPartStore)))
	unsaved := chem.NewModel()
	_, err = broken.Save(context.Background(), unsaved)
	assert.True(t, errors.IsCode(err, errors.CodeCMLSerialize))
	assert.Empty(t, unsaved.CustomXMLPartGUID)
}

func TestSave_Preconditions(t *testing.T) {
	f := newFixture(ServiceConfig{})
	_, err := f.svc.Save(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidArgument))

	bare := NewService(cml.NewConverter(), ServiceConfig{})
	_, err = bare.Save(context.Background(), chem.NewModel())
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
	_, err = bare.Load(context.Background(), "g1")
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
	assert.True(t, errors.IsCode(bare.Delete(context.Background(), "g1"), errors.CodeConfigInvalid))
}

func TestLoad_WithoutCache(t *testing.T) {
	store := new(MockPartStore)
	store.On("Get", mock.Anything, "g1").Return(ethanolCML, nil)
	svc := NewService(cml.NewConverter(), ServiceConfig{}, WithPartStore(store))

	md, err := svc.Load(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", md.CustomXMLPartGUID, "GUID is taken from the key when the text has none")
	store.AssertExpectations(t)
}

func TestLoad_MissFillsCache(t *testing.T) {
	f := newFixture(ServiceConfig{})
	f.store.parts["g1"] = ethanolCML

	_, err := f.svc.Load(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.gets)
	assert.Equal(t, ethanolCML, f.cache.entries["g1"])

	_, err = f.svc.Load(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.gets)
}

func TestLoad_NotFound(t *testing.T) {
	f := newFixture(ServiceConfig{})

	_, err := f.svc.Load(context.Background(), "missing")
	assert.True(t, errors.IsCode(err, errors.CodePartNotFound))
	assert.True(t, errors.IsNotFound(err))
	_, cached := f.cache.entries["missing"]
	assert.False(t, cached)
}

func TestLoad_CorruptPart(t *testing.T) {
	f := newFixture(ServiceConfig{})
	f.store.parts["g1"] = "not xml"

	_, err := f.svc.Load(context.Background(), "g1")
	assert.True(t, errors.IsCode(err, errors.CodeCMLParse))
}

func TestDelete(t *testing.T) {
	f := newFixture(ServiceConfig{})
	f.store.parts["g1"] = ethanolCML
	f.cache.entries["g1"] = ethanolCML

	require.NoError(t, f.svc.Delete(context.Background(), "g1"))
	assert.Empty(t, f.store.parts)
	assert.Empty(t, f.cache.entries)
	assert.True(t, f.log.HasMessage("info", "deleted part"))

	err := f.svc.Delete(context.Background(), "g1")
	assert.True(t, errors.IsNotFound(err))
}

func TestTelemetryFailureIsNotFatal(t *testing.T) {
	sink := &telemetry.MemorySink{}
	require.NoError(t, sink.Close())
	store := newMemStore()
	svc := NewService(cml.NewConverter(), ServiceConfig{},
		WithPartStore(store), WithTelemetry(telemetry.NewEmitter(sink, "", nil)))

	md, err := svc.Import(context.Background(), ethanolCML)
	require.NoError(t, err)
	_, err = svc.Save(context.Background(), md)
	assert.NoError(t, err)
}

func TestNewSessionUsesConfiguredDepth(t *testing.T) {
	f := newFixture(ServiceConfig{UndoDepth: 1})
	md, err := f.svc.Import(context.Background(), ethanolCML)
	require.NoError(t, err)

	s := f.svc.NewSession(md)
	require.NoError(t, s.MoveMolecule("m1", 1, 0))
	require.NoError(t, s.MoveMolecule("m1", 1, 0))
	require.NoError(t, s.Undo())
	assert.False(t, s.CanUndo())
}

func TestFailingCodecImport(t *testing.T) {
	svc := NewService(failingCodec{err: stderrors.New("plain")}, ServiceConfig{})
	_, err := svc.Import(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "plain"))
}
