// Package sinks defines where merged records are written.
package sinks

import (
	"context"

	"github.com/agentstation/tablemerge/pkg/columns"
	"github.com/agentstation/tablemerge/pkg/records"
)

// Writer serializes merged records using a fixed column layout. Fields
// outside cols are ignored; columns a record lacks are written empty.
type Writer interface {
	Write(ctx context.Context, recs []*records.Record, cols []columns.Column) error
}

// WriterFunc adapts an ordinary function to the Writer interface.
type WriterFunc func(ctx context.Context, recs []*records.Record, cols []columns.Column) error

// Write calls f(ctx, recs, cols).
func (f WriterFunc) Write(ctx context.Context, recs []*records.Record, cols []columns.Column) error {
	return f(ctx, recs, cols)
}

// Row returns the values of r in column order.
func Row(r *records.Record, cols []columns.Column) []string {
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = r.Value(c.ID)
	}
	return row
}
