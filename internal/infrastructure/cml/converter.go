package cml

import (
	"github.com/chem4word/chem4word/internal/domain/chemistry"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
)

// Converter imports and exports CML.  It holds no per-call state and may be
// shared by concurrent callers as long as each works on its own Model.
type Converter struct {
	tables           chemistry.Tables
	locator          *Locator
	logger           logging.Logger
	indent           int
	defaultNamespace bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithTables sets the element and functional group tables used to resolve
// atom symbols.
func WithTables(t chemistry.Tables) Option {
	return func(c *Converter) { c.tables = t }
}

// WithLocator replaces the element locator.
func WithLocator(l *Locator) Option {
	return func(c *Converter) {
		if l != nil {
			c.locator = l
		}
	}
}

// WithLogger sets the logger receiving import diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIndent sets the number of spaces per level on export.  Zero writes a
// single line.
func WithIndent(n int) Option {
	return func(c *Converter) { c.indent = n }
}

// WithDefaultNamespace makes Export write unprefixed elements in the default
// CML namespace.
func WithDefaultNamespace(on bool) Option {
	return func(c *Converter) { c.defaultNamespace = on }
}

// NewConverter returns a Converter using the shared tables, the process
// default logger, two-space indentation and the cml: prefix unless
// configured otherwise.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		tables:  chemistry.DefaultTables(),
		locator: NewLocator(),
		logger:  logging.Default(),
		indent:  2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultConverter = NewConverter()

// Import parses text with the default Converter.
func Import(text string) (*chemistry.Model, error) { return defaultConverter.Import(text) }

// Export serializes md with the default Converter.
func Export(md *chemistry.Model) (string, error) { return defaultConverter.Export(md) }
