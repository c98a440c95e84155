package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/columns"
	"github.com/agentstation/tablemerge/pkg/constants"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	MergerFunc       func(...tablemerge.Option) (tablemerge.Merger, error)
	ColumnsFunc      func() []columns.Column
	OutputPathFunc   func() string
	OutputFormatFunc func() string
	LoggerFunc       func() *zerolog.Logger
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Merger returns a merger using the mock function or tablemerge.New.
func (m *Mock) Merger(opts ...tablemerge.Option) (tablemerge.Merger, error) {
	if m.MergerFunc != nil {
		return m.MergerFunc(opts...)
	}
	return tablemerge.New(opts...)
}

// Columns returns columns using the mock function or the default layout.
func (m *Mock) Columns() []columns.Column {
	if m.ColumnsFunc != nil {
		return m.ColumnsFunc()
	}
	return columns.Default()
}

// OutputPath returns the path using the mock function or the default path.
func (m *Mock) OutputPath() string {
	if m.OutputPathFunc != nil {
		return m.OutputPathFunc()
	}
	return constants.DefaultOutputPath
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
