// Package service provides the import orchestration: it parses a batch of
// statement files concurrently, merges them in input order, deduplicates and
// applies the batch to the transaction store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/parser"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/storage"
)

const tracerName = "github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/service"

var (
	// ErrNoInbox is returned by inbox operations when no inbox was configured.
	ErrNoInbox = errors.New("no statement inbox configured")
	// ErrNothingImported is returned when every file of a batch failed, in
	// which case the store is left untouched.
	ErrNothingImported = errors.New("no statement file could be read")
)

// Source is one statement file handed in by the caller.
type Source struct {
	Name string
	Data []byte
}

// FileSummary reports what happened to one file of a batch.
type FileSummary struct {
	Name    string `json:"nome"`
	Rows    int    `json:"linhas"`
	Parsed  int    `json:"importadas"`
	Skipped int    `json:"ignoradas"`
	Error   string `json:"erro,omitempty"`
}

// Warning is a skipped row tagged with its file.
type Warning struct {
	File string `json:"arquivo"`
	parser.ParseError
}

// Result is the merged outcome of a batch, before it touches the store.
type Result struct {
	Transactions []transactions.Transaction `json:"-"`
	Imported     int                        `json:"importadas"`
	Duplicates   int                        `json:"duplicadas"`
	TotalRows    int                        `json:"totalLinhas"`
	Files        []FileSummary              `json:"arquivos"`
	Warnings     []Warning                  `json:"avisos"`
}

// ImportReport is a Result plus what the store did with it.
type ImportReport struct {
	*Result
	Policy          transactions.ImportPolicy `json:"politica"`
	Stored          int                       `json:"armazenadas"`
	StoreDuplicates int                       `json:"jaExistentes"`
}

// loader returns the name and contents of file i of a batch.
type loader func(ctx context.Context, i int) (string, []byte, error)

// ImportService orchestrates batch ingestion.
type ImportService struct {
	parser  *parser.Parser
	store   *transactions.Store
	inbox   storage.Inbox // optional
	metrics *Metrics      // optional
	tracer  trace.Tracer
	logger  *slog.Logger
	now     func() time.Time
	workers int
	policy  transactions.ImportPolicy
}

// NewImportService creates an import service writing into store.
func NewImportService(p *parser.Parser, store *transactions.Store, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{
		parser:  p,
		store:   store,
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
		now:     time.Now,
		workers: runtime.GOMAXPROCS(0),
		policy:  transactions.PolicyOverwrite,
	}
}

// WithInbox enables ScanInbox.
func (s *ImportService) WithInbox(inbox storage.Inbox) *ImportService {
	s.inbox = inbox
	return s
}

// WithMetrics records ingestion metrics.
func (s *ImportService) WithMetrics(m *Metrics) *ImportService {
	s.metrics = m
	return s
}

// WithWorkers bounds how many files are read and parsed at once.
func (s *ImportService) WithWorkers(n int) *ImportService {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithClock replaces time.Now, which stamps each batch.
func (s *ImportService) WithClock(now func() time.Time) *ImportService {
	s.now = now
	return s
}

// WithDefaultPolicy sets the policy used when a call passes an empty one.
func (s *ImportService) WithDefaultPolicy(p transactions.ImportPolicy) *ImportService {
	if p != "" {
		s.policy = p
	}
	return s
}

// DefaultPolicy returns the policy applied when none is requested.
func (s *ImportService) DefaultPolicy() transactions.ImportPolicy {
	return s.policy
}

// Ingest parses sources and merges them. The store is not touched.
func (s *ImportService) Ingest(ctx context.Context, sources []Source) (*Result, error) {
	return s.run(ctx, len(sources), func(ctx context.Context, i int) (string, []byte, error) {
		return sources[i].Name, sources[i].Data, nil
	})
}

// IngestInbox reads the named inbox files and merges them. A file that cannot
// be read is logged and skipped.
func (s *ImportService) IngestInbox(ctx context.Context, names []string) (*Result, error) {
	if s.inbox == nil {
		return nil, ErrNoInbox
	}
	return s.run(ctx, len(names), func(ctx context.Context, i int) (string, []byte, error) {
		data, err := s.inbox.Read(ctx, names[i])
		return names[i], data, err
	})
}

// Import ingests sources and applies them to the store under policy.
func (s *ImportService) Import(ctx context.Context, sources []Source, policy transactions.ImportPolicy) (*ImportReport, error) {
	result, err := s.Ingest(ctx, sources)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, result, policy)
}

// ScanInbox ingests every statement file in the inbox, in name order, and
// applies the batch to the store. An empty inbox leaves the store untouched.
func (s *ImportService) ScanInbox(ctx context.Context, policy transactions.ImportPolicy) (*ImportReport, error) {
	if s.inbox == nil {
		return nil, ErrNoInbox
	}

	ctx, span := s.tracer.Start(ctx, "import.ScanInbox")
	defer span.End()

	files, err := s.inbox.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list inbox")
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	span.SetAttributes(attribute.Int("import.files", len(names)))

	result, err := s.IngestInbox(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return &ImportReport{Result: result, Policy: s.resolvePolicy(policy)}, nil
	}
	return s.apply(ctx, result, policy)
}

func (s *ImportService) resolvePolicy(p transactions.ImportPolicy) transactions.ImportPolicy {
	if p == "" {
		return s.policy
	}
	return p
}

func (s *ImportService) apply(ctx context.Context, result *Result, policy transactions.ImportPolicy) (*ImportReport, error) {
	policy = s.resolvePolicy(policy)
	if allFailed(result.Files) {
		return &ImportReport{Result: result, Policy: policy}, ErrNothingImported
	}

	stored, dups, err := s.store.Import(ctx, result.Transactions, policy)
	report := &ImportReport{
		Result:          result,
		Policy:          policy,
		Stored:          stored,
		StoreDuplicates: dups,
	}
	if err != nil {
		return report, err
	}

	s.logger.Info("import applied",
		slog.String("policy", string(policy)),
		slog.Int("imported", result.Imported),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("stored", stored),
		slog.Int("total", s.store.Len()),
	)
	return report, nil
}

func allFailed(files []FileSummary) bool {
	if len(files) == 0 {
		return false
	}
	for _, f := range files {
		if f.Error == "" {
			return false
		}
	}
	return true
}

// fileOutcome is the parse result of one file, kept at its input position.
type fileOutcome struct {
	name   string
	result *parser.ParseResult
	err    error
}

// run loads and parses n files concurrently, then merges them strictly in
// input order so duplicate resolution does not depend on completion order.
func (s *ImportService) run(ctx context.Context, n int, load loader) (*Result, error) {
	start := time.Now()
	batchTime := s.now()

	ctx, span := s.tracer.Start(ctx, "import.Ingest", trace.WithAttributes(
		attribute.Int("import.files", n),
	))
	defer span.End()

	outcomes := make([]fileOutcome, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.parseOne(gctx, i, load, batchTime)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingest cancelled")
		return nil, fmt.Errorf("import cancelled: %w", err)
	}

	result := merge(outcomes)
	span.SetAttributes(
		attribute.Int("import.rows", result.TotalRows),
		attribute.Int("import.imported", result.Imported),
		attribute.Int("import.duplicates", result.Duplicates),
	)
	s.metrics.observe(result, time.Since(start).Seconds())

	s.logger.Info("import batch parsed",
		slog.Int("files", n),
		slog.Int("rows", result.TotalRows),
		slog.Int("imported", result.Imported),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (s *ImportService) parseOne(ctx context.Context, i int, load loader, batchTime time.Time) fileOutcome {
	name, data, err := load(ctx, i)
	if err != nil {
		s.logger.Warn("failed to read statement",
			slog.String("file", name),
			slog.Any("error", err),
		)
		return fileOutcome{name: name, err: err}
	}

	_, span := s.tracer.Start(ctx, "import.ParseFile", trace.WithAttributes(
		attribute.String("import.file", name),
		attribute.Int("import.bytes", len(data)),
	))
	defer span.End()

	res, err := s.parser.Parse(name, data, batchTime)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse")
		s.logger.Warn("failed to parse statement",
			slog.String("file", name),
			slog.Any("error", err),
		)
		return fileOutcome{name: name, err: err}
	}
	return fileOutcome{name: name, result: res}
}

// merge concatenates outcomes in order, keeps the first record per
// identifier and sorts newest first.
func merge(outcomes []fileOutcome) *Result {
	result := &Result{
		Files:    make([]FileSummary, 0, len(outcomes)),
		Warnings: []Warning{},
	}

	var all []transactions.Transaction
	for _, o := range outcomes {
		summary := FileSummary{Name: o.name}
		if o.err != nil {
			summary.Error = o.err.Error()
			result.Files = append(result.Files, summary)
			continue
		}

		summary.Rows = o.result.TotalRows
		summary.Parsed = o.result.ParsedRows
		summary.Skipped = o.result.SkippedRows
		result.Files = append(result.Files, summary)

		result.TotalRows += o.result.TotalRows
		all = append(all, o.result.Transactions...)
		for _, w := range o.result.Warnings {
			result.Warnings = append(result.Warnings, Warning{File: o.name, ParseError: w})
		}
	}

	unique, duplicates := transactions.Dedup(all)
	transactions.SortByDateDesc(unique)

	result.Transactions = unique
	result.Imported = len(unique)
	result.Duplicates = duplicates
	return result
}
