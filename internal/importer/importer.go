package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/lmsseed/internal/files/filesystem"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// Importer runs the loader passes against a Store.
type Importer struct {
	store  lmsseed.Store
	fs     filesystem.FileSystemProvider
	logger lmsseed.Logger
	hasher lmsseed.Hasher
	remap  lmsseed.RemapStrategy
	now    func() time.Time
}

// Option customizes an Importer.
type Option func(*Importer)

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h lmsseed.Hasher) Option {
	return func(im *Importer) { im.hasher = h }
}

// WithRemap replaces the default comment user-id remap.
func WithRemap(r lmsseed.RemapStrategy) Option {
	return func(im *Importer) { im.remap = r }
}

// WithClock replaces time.Now, for deterministic durations in tests.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) { im.now = now }
}

// New creates an Importer. It panics if store, fsys or logger is nil.
func New(store lmsseed.Store, fsys filesystem.FileSystemProvider, logger lmsseed.Logger, opts ...Option) *Importer {
	if store == nil {
		panic("store cannot be nil")
	}
	if fsys == nil {
		panic("filesystem cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	im := &Importer{
		store:  store,
		fs:     fsys,
		logger: logger,
		hasher: NewBcryptHasher(0),
		remap:  NewThresholdRemap(lmsseed.DefaultRemapConfig()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Run executes every pass in order over the files in dataDir. The report is
// always returned; the error is Report.Err().
func (im *Importer) Run(ctx context.Context, dataDir string) (*Report, error) {
	report := &Report{
		RunID:   uuid.New(),
		DataDir: dataDir,
		Started: im.now(),
	}
	im.logger.Verbose("Run %s reading from %s", report.RunID, dataDir)

	for _, p := range Passes {
		path := filepath.Join(dataDir, p.File())
		if err := ctx.Err(); err != nil {
			report.Passes = append(report.Passes, PassResult{Pass: p, Source: path, Err: err})
			continue
		}
		report.Passes = append(report.Passes, im.RunPass(ctx, p, path))
	}

	report.Elapsed = im.now().Sub(report.Started)
	im.logger.Info("")
	im.logger.Info("-------------------------------------")
	im.logger.Info("Data import finished.")
	im.logger.Info("Total time: %.3f seconds", report.Elapsed.Seconds())
	im.logger.Info("-------------------------------------")

	return report, report.Err()
}

// RunPass executes a single pass reading from path.
func (im *Importer) RunPass(ctx context.Context, p Pass, path string) PassResult {
	switch p {
	case PassUsers:
		return im.ImportUsers(ctx, path)
	case PassCourses:
		return im.ImportCourses(ctx, path)
	case PassMembers:
		return im.ImportMembers(ctx, path)
	case PassContents:
		return im.ImportContents(ctx, path)
	case PassComments:
		return im.ImportComments(ctx, path)
	default:
		return PassResult{Pass: p, Source: path, Err: fmt.Errorf("unknown pass %d", int(p))}
	}
}

// run wraps a pass body with progress output and timing.
func (im *Importer) run(p Pass, path string, body func(res *PassResult)) PassResult {
	if p != PassUsers {
		im.logger.Info("")
	}
	im.logger.Info("Importing %s...", p.Title())

	start := im.now()
	res := PassResult{Pass: p, Source: path}
	body(&res)
	res.Duration = im.now().Sub(start)

	im.summarize(res)
	return res
}

func (im *Importer) summarize(res PassResult) {
	switch {
	case res.SourceMissing():
		im.logger.Error("%s not found in %s", res.Pass.File(), filepath.Dir(res.Source))
	case res.Err != nil:
		im.logger.Error("importing %s: %v", res.Pass, res.Err)
	case res.Created > 0:
		im.logger.Info("-> Created %d %s.", res.Created, res.Pass.Noun())
	default:
		im.logger.Info("-> No new %s to create.", res.Pass)
	}

	counts := res.SkipCounts()
	for _, reason := range sortedReasons(counts) {
		im.logger.Verbose("%s: %d skipped (%s)", res.Pass, counts[reason], reason)
	}
	if res.Duplicates > 0 {
		im.logger.Verbose("%s: %d already present", res.Pass, res.Duplicates)
	}
	im.logger.Verbose("%s: read %d records in %s", res.Pass, res.Read, res.Duration)
}

func (im *Importer) skip(res *PassResult, pos int, reason SkipReason, detail string) {
	s := Skip{Location: res.Pass.location(pos), Reason: reason, Detail: detail}
	res.Skipped = append(res.Skipped, s)
	if detail != "" {
		im.logger.Info("Skipping %s (%s): %s", s.Location, reason, detail)
	} else {
		im.logger.Info("Skipping %s: %s", s.Location, reason)
	}
}

// commit performs the pass's single batch create.
func commit[T any](ctx context.Context, res *PassResult, staged []T, create func(context.Context, []T) (int, error)) {
	if len(staged) == 0 {
		return
	}
	n, err := create(ctx, staged)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", lmsseed.ErrBatchRejected, err)
		return
	}
	res.Created = n
}
