// Package pipeline sequences the question-to-result flow: translate the
// natural-language question, normalize the completion, validate the SQL,
// execute it. Each run produces exactly one terminal state — success or a
// single stage-tagged failure — and never retries on its own.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/askdb/askdb/internal/model"
	"github.com/askdb/askdb/internal/sqlsafe"
)

// Translator turns a natural-language question into a raw model completion.
// The schema description gives the model the table/column context.
type Translator interface {
	Translate(ctx context.Context, question, schemaDescription string) (string, error)
}

// Executor runs a validated read-only statement and returns the result set.
// Implementations must refuse anything that is not a SELECT; the validator
// is the primary gate, the executor the secondary one.
type Executor interface {
	Query(ctx context.Context, sql string) (columns []string, rows [][]any, err error)
}

// SchemaSource produces the schema snapshot used for prompting and
// validation, typically by introspecting the live database.
type SchemaSource interface {
	Introspect(ctx context.Context) (*model.Schema, error)
}

// Pipeline orchestrates one-way data flow from question to result. The
// schema snapshot is loaded once on first use and shared read-only across
// runs, so concurrent runs need no locking beyond that initialization.
type Pipeline struct {
	translator Translator
	executor   Executor
	source     SchemaSource
	logger     *slog.Logger

	schemaOnce sync.Once
	schema     *model.Schema
}

// New assembles a Pipeline from its three collaborators.
func New(source SchemaSource, translator Translator, executor Executor, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		translator: translator,
		executor:   executor,
		source:     source,
		logger:     logger,
	}
}

// Schema returns the process-wide schema snapshot, introspecting on first
// call. Introspection failure degrades to an empty snapshot — validation
// against the schema is then skipped, not failed — and is never surfaced
// as a pipeline error.
func (p *Pipeline) Schema(ctx context.Context) *model.Schema {
	p.schemaOnce.Do(func() {
		schema, err := p.source.Introspect(ctx)
		if err != nil {
			p.logger.Warn("schema introspection failed; validation degraded", "error", err)
			schema = &model.Schema{}
		} else {
			p.logger.Info("schema snapshot loaded", "tables", len(schema.Tables))
		}
		p.schema = schema
	})
	return p.schema
}

// Run processes one natural-language question end to end. The generated SQL
// is preserved on the result as soon as it exists, so validation and
// execution failures still carry it for display.
func (p *Pipeline) Run(ctx context.Context, question string) *model.Result {
	schema := p.Schema(ctx)
	res := &model.Result{}

	raw, err := p.translator.Translate(ctx, question, schema.Describe())
	if err != nil {
		return fail(res, model.StageTranslation, err)
	}

	sql, err := sqlsafe.Normalize(raw)
	if err != nil {
		return fail(res, model.StageTranslation, err)
	}
	res.SQL = sql
	p.logger.Debug("generated SQL", "sql", sql)

	verdict := sqlsafe.NewValidator(schema).Validate(sql)
	if !verdict.OK {
		return fail(res, model.StageValidation, errors.New(verdict.Reason))
	}

	columns, rows, err := p.executor.Query(ctx, sql)
	if err != nil {
		return fail(res, model.StageExecution, err)
	}

	res.Stage = model.StageExecution
	res.Columns = columns
	res.Rows = rows
	p.logger.Info("query executed", "rows", len(rows))
	return res
}

// Check normalizes and validates a raw statement without executing it. The
// returned SQL is the normalized form when normalization succeeded, empty
// otherwise.
func (p *Pipeline) Check(ctx context.Context, raw string) (string, sqlsafe.Verdict) {
	sql, err := sqlsafe.Normalize(raw)
	if err != nil {
		return "", sqlsafe.Verdict{OK: false, Reason: err.Error()}
	}
	return sql, sqlsafe.NewValidator(p.Schema(ctx)).Validate(sql)
}

func fail(res *model.Result, stage model.Stage, err error) *model.Result {
	res.Stage = stage
	res.Err = &model.StageError{Stage: stage, Err: err}
	return res
}
