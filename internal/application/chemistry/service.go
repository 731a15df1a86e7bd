// Package chemistry provides the application-level document service and the
// editing session used by the CLI.  It ties the CML codec to the part store,
// the part cache, telemetry and metrics.
package chemistry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	chem "github.com/chem4word/chem4word/internal/domain/chemistry"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/prometheus"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/telemetry"
	"github.com/chem4word/chem4word/pkg/errors"
)

const telemetrySource = "chem4word.service"

// Codec converts between CML text and models.
type Codec interface {
	Import(text string) (*chem.Model, error)
	Export(md *chem.Model) (string, error)
}

// PartStore is the durable home of document parts.
type PartStore interface {
	Put(ctx context.Context, guid, cml string, meta map[string]string) error
	Get(ctx context.Context, guid string) (string, error)
	Delete(ctx context.Context, guid string) error
}

// PartCache fronts the part store.
type PartCache interface {
	GetOrLoad(ctx context.Context, guid string, load func(ctx context.Context) (string, error)) (string, bool, error)
	Set(ctx context.Context, guid, cml string) error
	Delete(ctx context.Context, guid string) error
}

// TelemetryEmitter receives usage and failure events.
type TelemetryEmitter interface {
	Emit(ctx context.Context, source string, level telemetry.Level, message string, fields map[string]string) error
}

// Service defines the document operations.
type Service interface {
	Import(ctx context.Context, text string) (*chem.Model, error)
	Export(ctx context.Context, md *chem.Model) (string, error)
	Save(ctx context.Context, md *chem.Model) (string, error)
	Load(ctx context.Context, guid string) (*chem.Model, error)
	Delete(ctx context.Context, guid string) error
	NewSession(md *chem.Model) *Session
}

// ServiceConfig holds the tunables of the service.
type ServiceConfig struct {
	// MaxErrors rejects imports with more error messages.  Zero disables
	// the check.
	MaxErrors int
	// UndoDepth bounds the undo history of sessions created by the service.
	UndoDepth int
}

// ServiceOption configures the service.
type ServiceOption func(*serviceImpl)

// WithPartStore sets the part store used by Save, Load and Delete.
func WithPartStore(s PartStore) ServiceOption {
	return func(svc *serviceImpl) { svc.store = s }
}

// WithPartCache sets the cache consulted before the part store.
func WithPartCache(c PartCache) ServiceOption {
	return func(svc *serviceImpl) { svc.cache = c }
}

// WithTelemetry sets the telemetry emitter.
func WithTelemetry(t TelemetryEmitter) ServiceOption {
	return func(svc *serviceImpl) { svc.telemetry = t }
}

// WithMetrics sets the metric families.
func WithMetrics(m *prometheus.ChemistryMetrics) ServiceOption {
	return func(svc *serviceImpl) {
		if m != nil {
			svc.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) ServiceOption {
	return func(svc *serviceImpl) {
		if l != nil {
			svc.logger = l
		}
	}
}

type serviceImpl struct {
	codec     Codec
	cfg       ServiceConfig
	store     PartStore
	cache     PartCache
	telemetry TelemetryEmitter
	metrics   *prometheus.ChemistryMetrics
	logger    logging.Logger
	now       func() time.Time
}

// NewService creates the document service.
func NewService(codec Codec, cfg ServiceConfig, opts ...ServiceOption) Service {
	s := &serviceImpl{
		codec:   codec,
		cfg:     cfg,
		metrics: prometheus.NewNoopChemistryMetrics(),
		logger:  logging.NewNopLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── Codec ──────────────────────────────────────────────────────────────────

func (s *serviceImpl) Import(ctx context.Context, text string) (*chem.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := s.now()
	md, err := s.codec.Import(text)
	if err == nil && s.cfg.MaxErrors > 0 && len(md.Errors()) > s.cfg.MaxErrors {
		err = errors.New(errors.CodeCMLTooManyErrs, "CML document has too many errors").
			WithDetail(fmt.Sprintf("errors=%d limit=%d", len(md.Errors()), s.cfg.MaxErrors))
	}
	elapsed := s.now().Sub(start)

	if err != nil {
		prometheus.RecordImport(s.metrics, len(text), 0, 0, 0, elapsed, err)
		s.recordFailure(ctx, "import", err, nil)
		return nil, err
	}

	prometheus.RecordImport(s.metrics, len(text), len(md.AllAtoms()), len(md.Errors()), len(md.Warnings()), elapsed, nil)
	for _, msg := range md.Errors() {
		s.logger.Debug("import error", logging.PartGUID(md.CustomXMLPartGUID), logging.String("message", msg))
	}
	return md, nil
}

func (s *serviceImpl) Export(ctx context.Context, md *chem.Model) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if md == nil {
		return "", errors.InvalidArgument("model is nil")
	}
	start := s.now()
	text, err := s.codec.Export(md)
	elapsed := s.now().Sub(start)
	prometheus.RecordExport(s.metrics, len(text), len(md.AllAtoms()), elapsed, err)
	if err != nil {
		s.recordFailure(ctx, "export", err, map[string]string{"part_guid": md.CustomXMLPartGUID})
		return "", err
	}
	return text, nil
}

// ─── Parts ──────────────────────────────────────────────────────────────────

func (s *serviceImpl) requireStore() error {
	if s.store == nil {
		return errors.New(errors.CodeConfigInvalid, "part store not configured")
	}
	return nil
}

// Save exports md and stores it under its custom XML part GUID, assigning
// one first when md has none.  It returns the GUID.  A GUID assigned here is
// removed again when the save fails.
func (s *serviceImpl) Save(ctx context.Context, md *chem.Model) (string, error) {
	if md == nil {
		return "", errors.InvalidArgument("model is nil")
	}
	if err := s.requireStore(); err != nil {
		return "", err
	}
	assigned := md.CustomXMLPartGUID == ""
	guid := md.EnsureCustomXMLPartGUID()
	rollback := func() {
		if assigned {
			md.CustomXMLPartGUID = ""
		}
	}
	text, err := s.Export(ctx, md)
	if err != nil {
		rollback()
		return "", err
	}

	meta := map[string]string{
		"molecules": strconv.Itoa(len(md.Molecules())),
		"atoms":     strconv.Itoa(len(md.AllAtoms())),
	}
	start := s.now()
	err = s.store.Put(ctx, guid, text, meta)
	prometheus.RecordStoreOp(s.metrics, "put", s.now().Sub(start), err)
	if err != nil {
		s.recordFailure(ctx, "store", err, map[string]string{"part_guid": guid})
		rollback()
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, guid, text); err != nil {
			s.logger.Warn("failed to cache saved part", logging.PartGUID(guid), logging.Err(err))
		}
	}

	s.logger.Info("saved part", logging.PartGUID(guid), logging.Int("bytes", len(text)))
	s.emit(ctx, telemetry.LevelInformation, "part saved", map[string]string{
		"part_guid": guid,
		"formula":   md.ConciseFormula(),
	})
	return guid, nil
}

// Load fetches a part, from the cache when possible, and imports it.  The
// loaded model carries guid even when the stored text has no GUID element.
func (s *serviceImpl) Load(ctx context.Context, guid string) (*chem.Model, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	var (
		text string
		err  error
	)
	if s.cache != nil {
		var hit bool
		text, hit, err = s.cache.GetOrLoad(ctx, guid, func(ctx context.Context) (string, error) {
			return s.fetch(ctx, guid)
		})
		if err == nil {
			prometheus.RecordCacheAccess(s.metrics, hit)
		}
	} else {
		text, err = s.fetch(ctx, guid)
	}
	if err != nil {
		return nil, err
	}

	md, err := s.Import(ctx, text)
	if err != nil {
		return nil, err
	}
	if md.CustomXMLPartGUID == "" {
		md.CustomXMLPartGUID = guid
	}
	s.emit(ctx, telemetry.LevelInformation, "part loaded", map[string]string{"part_guid": guid})
	return md, nil
}

func (s *serviceImpl) fetch(ctx context.Context, guid string) (string, error) {
	start := s.now()
	text, err := s.store.Get(ctx, guid)
	prometheus.RecordStoreOp(s.metrics, "get", s.now().Sub(start), err)
	if err != nil {
		s.recordFailure(ctx, "store", err, map[string]string{"part_guid": guid})
		return "", err
	}
	return text, nil
}

// Delete removes a part from the store and evicts it from the cache.
func (s *serviceImpl) Delete(ctx context.Context, guid string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	start := s.now()
	err := s.store.Delete(ctx, guid)
	prometheus.RecordStoreOp(s.metrics, "delete", s.now().Sub(start), err)
	if err != nil {
		s.recordFailure(ctx, "store", err, map[string]string{"part_guid": guid})
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, guid); err != nil {
			s.logger.Warn("failed to evict deleted part", logging.PartGUID(guid), logging.Err(err))
		}
	}
	s.logger.Info("deleted part", logging.PartGUID(guid))
	s.emit(ctx, telemetry.LevelInformation, "part deleted", map[string]string{"part_guid": guid})
	return nil
}

// NewSession starts an editing session on md.
func (s *serviceImpl) NewSession(md *chem.Model) *Session {
	return NewSession(md, s.cfg.UndoDepth, s.metrics, s.logger)
}

// ─── Reporting ──────────────────────────────────────────────────────────────

func (s *serviceImpl) recordFailure(ctx context.Context, component string, err error, fields map[string]string) {
	code := errors.GetCode(err)
	prometheus.RecordError(s.metrics, component, code.String())
	s.logger.Error(component+" failed", logging.String("code", code.String()), logging.Err(err))

	if fields == nil {
		fields = map[string]string{}
	}
	fields["component"] = component
	fields["code"] = code.String()
	s.emit(ctx, telemetry.LevelError, err.Error(), fields)
}

func (s *serviceImpl) emit(ctx context.Context, level telemetry.Level, message string, fields map[string]string) {
	if s.telemetry == nil {
		return
	}
	err := s.telemetry.Emit(ctx, telemetrySource, level, message, fields)
	prometheus.RecordTelemetry(s.metrics, string(level), err)
}
