package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/xmlsyntax/internal/logging"
	"github.com/yaklabco/xmlsyntax/pkg/fsutil"
	"github.com/yaklabco/xmlsyntax/pkg/parser"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

// Runner parses many files with one parser, so every worker shares the
// parser's node cache.
type Runner struct {
	Parser *parser.Parser
}

// New creates a Runner. A nil parser means parser.New().
func New(p *parser.Parser) *Runner {
	if p == nil {
		p = parser.New()
	}
	return &Runner{Parser: p}
}

// Run discovers files under opts.Paths and parses them concurrently.
// Outcomes are in discovery order regardless of completion order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: Stats{DiagnosticsByCode: make(map[syntax.ErrorID]int)},
	}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	p := r.Parser
	if opts.Parser != nil {
		p = opts.Parser
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	logging.FromContext(ctx).Debug("parsing files", logging.FieldFiles, len(files), logging.FieldJobs, jobs)

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Go(func() {
			worker(ctx, p, workCh, outCh)
		})
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}
	return result, nil
}

func worker(ctx context.Context, p *parser.Parser, workCh <-chan string, outCh chan<- FileOutcome) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		outcome := ParseFile(ctx, p, path)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// ParseFile reads and parses a single file.
func ParseFile(ctx context.Context, p *parser.Parser, path string) FileOutcome {
	outcome := FileOutcome{Path: path}

	src, err := fsutil.ReadSource(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	root := syntax.CreateRed(p.Parse(src.Buffer()))
	outcome.Source = src
	outcome.Root = root
	outcome.Diagnostics = root.AllDiagnostics()

	logging.FromContext(ctx).Debug("parsed file",
		logging.FieldPath, path,
		logging.FieldDiagnostics, len(outcome.Diagnostics))
	return outcome
}
