package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"github.com/secmon-lab/intake/pkg/service/extract"
	"github.com/secmon-lab/intake/pkg/service/metrics"
	"github.com/secmon-lab/intake/pkg/service/repair"
	"github.com/secmon-lab/intake/pkg/utils/async"
)

// ErrTagUnsupported marks operations the configured repository cannot serve
var ErrTagUnsupported = goerr.NewTag("unsupported")

const (
	sourceText = "text"
	sourceRow  = "row"
)

// SubmitOptions controls one submission
type SubmitOptions struct {
	// DryRun runs the whole pipeline, including code assignment, without appending
	DryRun bool
}

// IntakeOption is a functional option for configuring Intake
type IntakeOption func(*Intake)

// WithPrefiller enables the language model draft merged into empty columns
func WithPrefiller(p interfaces.Prefiller) IntakeOption {
	return func(u *Intake) {
		u.prefiller = p
	}
}

// WithNotifier enables the notification sent after each saved record
func WithNotifier(n interfaces.Notifier) IntakeOption {
	return func(u *Intake) {
		u.notifier = n
	}
}

// WithClock replaces time.Now for the reported-at timestamp and fallback codes
func WithClock(now func() time.Time) IntakeOption {
	return func(u *Intake) {
		u.now = now
	}
}

// Intake turns free text or upstream rows into validated, coded records
type Intake struct {
	extractor *extract.Extractor
	repairer  *repair.Repairer
	repo      interfaces.Repository
	prefiller interfaces.Prefiller
	notifier  interfaces.Notifier
	now       func() time.Time

	// serializes code lookup and append so concurrent submissions get distinct codes
	commitMu sync.Mutex
}

// NewIntake creates a new Intake instance
func NewIntake(x *extract.Extractor, repairer *repair.Repairer, repo interfaces.Repository, opts ...IntakeOption) *Intake {
	u := &Intake{
		extractor: x,
		repairer:  repairer,
		repo:      repo,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Parse interprets free text without any side effect: no code is assigned and
// nothing is validated or persisted.
func (u *Intake) Parse(ctx context.Context, text string) (*model.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, model.ErrEmptyText
	}

	rec, advisories := u.interpret(ctx, text)
	return &model.Outcome{
		Entry:      &model.Entry{Record: rec},
		Summary:    rec.Summary(),
		Advisories: advisories,
	}, nil
}

// Submit runs the whole pipeline on free text: heuristics, optional draft merge,
// repair, validation, code assignment and append.
func (u *Intake) Submit(ctx context.Context, text string, opts SubmitOptions) (*model.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		metrics.RecordSubmission(sourceText, metrics.ResultFailed)
		return nil, model.ErrEmptyText
	}

	rec, advisories := u.interpret(ctx, text)
	return u.commit(ctx, sourceText, rec, advisories, opts)
}

// RepairRow normalizes and repairs a pipe-delimited row. Nothing is validated,
// coded or persisted.
func (u *Intake) RepairRow(ctx context.Context, line string) (*model.Outcome, error) {
	if isEmptyRow(line) {
		return nil, goerr.New("row is empty", goerr.T(model.ErrTagEmptyInput))
	}

	rec, advisories := model.ParseRow(line)
	repaired, more := u.repairer.Repair(rec)
	advisories = append(advisories, more...)
	metrics.RecordRepairs(len(advisories))

	return &model.Outcome{
		Entry:      &model.Entry{Record: repaired},
		Summary:    repaired.Summary(),
		Advisories: advisories,
	}, nil
}

// SubmitRow repairs a pipe-delimited row produced upstream and commits it.
// Any code present in the row is replaced by a freshly assigned one.
func (u *Intake) SubmitRow(ctx context.Context, line string, opts SubmitOptions) (*model.Outcome, error) {
	if isEmptyRow(line) {
		metrics.RecordSubmission(sourceRow, metrics.ResultFailed)
		return nil, goerr.New("row is empty", goerr.T(model.ErrTagEmptyInput))
	}

	rec, advisories := model.ParseRow(line)
	rec.Set(types.ColumnCode, "")

	repaired, more := u.repairer.Repair(rec)
	advisories = append(advisories, more...)
	return u.commit(ctx, sourceRow, repaired, advisories, opts)
}

func isEmptyRow(line string) bool {
	return strings.Trim(line, "| \t\r\n") == ""
}

func (u *Intake) interpret(ctx context.Context, text string) (model.Record, []model.Advisory) {
	logger := ctxlog.From(ctx)
	policy := u.repairer.Policy()

	rec := Assemble(u.extractor, policy, text)
	var advisories []model.Advisory

	if u.prefiller != nil {
		draft, err := u.prefiller.Prefill(ctx, text)
		if err != nil {
			metrics.RecordPrefill("error")
			logger.Warn("language model prefill failed, using heuristics only", "error", err)
		} else {
			metrics.RecordPrefill("ok")
			repairedDraft, draftAdvisories := u.repairer.Repair(draft)
			advisories = append(advisories, draftAdvisories...)
			filled := mergeDraft(&rec, repairedDraft, policy)
			if filled > 0 {
				// the draft may have supplied the close time
				rec.Set(types.ColumnStatus, repair.DeriveStatus(&rec).String())
			}
			logger.Debug("merged language model draft", "filled", filled)
		}
	}

	repaired, more := u.repairer.Repair(rec)
	advisories = append(advisories, more...)
	return repaired, advisories
}

func (u *Intake) commit(ctx context.Context, source string, rec model.Record, advisories []model.Advisory, opts SubmitOptions) (*model.Outcome, error) {
	logger := ctxlog.From(ctx)
	metrics.RecordRepairs(len(advisories))

	if err := u.repairer.Validate(&rec); err != nil {
		metrics.RecordSubmission(source, metrics.ResultIncomplete)
		return nil, goerr.Wrap(err, "record is incomplete", goerr.T(model.ErrTagValidation))
	}

	u.commitMu.Lock()
	defer u.commitMu.Unlock()

	id, err := types.NewSubmissionID()
	if err != nil {
		metrics.RecordSubmission(source, metrics.ResultFailed)
		return nil, goerr.Wrap(err, "failed to generate submission ID")
	}

	now := u.now().In(u.extractor.Location())
	rec.Set(types.ColumnCode, u.assignCode(ctx, &rec, now))

	entry := &model.Entry{
		ID:         id,
		Record:     rec,
		ReportedAt: now,
	}
	outcome := &model.Outcome{
		Entry:      entry,
		Summary:    rec.Summary(),
		Advisories: advisories,
	}

	if opts.DryRun {
		metrics.RecordSubmission(source, metrics.ResultDryRun)
		return outcome, nil
	}

	if err := u.repo.AppendRecord(ctx, entry); err != nil {
		metrics.RecordSubmission(source, metrics.ResultFailed)
		return nil, goerr.Wrap(err, "failed to append record", goerr.V("code", entry.Code()))
	}
	outcome.Saved = true
	metrics.RecordSubmission(source, metrics.ResultSaved)

	logger.Info("record saved",
		"code", entry.Code(),
		"id", entry.ID,
		"advisories", len(advisories),
	)

	if u.notifier != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return u.notifier.Notify(ctx, entry)
		})
	}

	return outcome, nil
}

// assignCode reads the issued codes fresh and returns the next one for the open
// date, or today when the record has none. A failed lookup yields a fallback code.
func (u *Intake) assignCode(ctx context.Context, rec *model.Record, now time.Time) string {
	day, month := now.Day(), now.Month()
	if opened, ok := rec.OpenedAt(u.extractor.Location()); ok {
		day, month = opened.Day(), opened.Month()
	}

	codes, err := u.repo.ListCodes(ctx)
	if err != nil {
		metrics.RecordCodeFallback()
		code := model.FallbackCode(now)
		ctxlog.From(ctx).Warn("failed to read issued codes, using fallback code",
			"error", err,
			"code", code,
		)
		return code
	}
	return model.NextCode(day, month, codes)
}

// Record returns a previously saved entry when the repository supports lookup
func (u *Intake) Record(ctx context.Context, id types.SubmissionID) (*model.Entry, error) {
	reader, ok := u.repo.(interfaces.RecordReader)
	if !ok {
		return nil, goerr.New("repository does not support record lookup", goerr.T(ErrTagUnsupported))
	}

	entry, err := reader.GetRecord(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up record", goerr.V("id", id))
	}
	return entry, nil
}
