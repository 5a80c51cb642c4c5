package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/narrative"
	"github.com/alexanderramin/strengthscope/internal/questionnaire"
	"github.com/alexanderramin/strengthscope/internal/report"
	"github.com/alexanderramin/strengthscope/internal/repository"
	"github.com/alexanderramin/strengthscope/internal/scoring"
)

// ErrNoReport is returned when a session has not produced a report yet.
var ErrNoReport = errors.New("no report generated for session")

// Recorder receives business counters. *metrics.Metrics implements it.
type Recorder interface {
	SessionStarted(edition string)
	ReportGenerated(fallback bool)
}

type noopRecorder struct{}

func (noopRecorder) SessionStarted(string) {}
func (noopRecorder) ReportGenerated(bool)  {}

type assessmentService struct {
	catalog  *catalog.Catalog
	sessions repository.SessionRepo
	narrator *narrative.Service
	recorder Recorder
	observer UseCaseObserver
	now      func() time.Time
}

// NewAssessmentService wires the questionnaire pipeline. A nil recorder
// disables business counters.
func NewAssessmentService(
	cat *catalog.Catalog,
	sessions repository.SessionRepo,
	narrator *narrative.Service,
	recorder Recorder,
	observers ...UseCaseObserver,
) AssessmentService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if narrator == nil {
		narrator = narrative.NewService(nil)
	}
	return &assessmentService{
		catalog:  cat,
		sessions: sessions,
		narrator: narrator,
		recorder: recorder,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *assessmentService) Editions(ctx context.Context) []EditionInfo {
	editions := s.catalog.ListEditions()
	out := make([]EditionInfo, 0, len(editions))
	for _, e := range editions {
		traits, err := s.catalog.ActiveTraits(e.ID)
		if err != nil {
			continue
		}
		info := EditionInfo{ID: e.ID, Name: e.Name, TraitCount: len(traits)}
		seen := map[string]bool{}
		for _, t := range traits {
			info.StatementCount += len(t.Statements)
			if c, ok := s.catalog.CategoryOf(t.ID); ok && !seen[c.ID] {
				seen[c.ID] = true
				info.Categories = append(info.Categories, c.ID)
			}
		}
		out = append(out, info)
	}
	return out
}

func (s *assessmentService) Start(ctx context.Context, req StartRequest) (sess *questionnaire.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"edition": req.EditionID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "start-session",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	seed := questionnaire.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	sess, err = questionnaire.Assemble(s.catalog, req.EditionID, seed)
	if err != nil {
		return nil, err
	}
	sess.Subject = req.Subject
	fields["session"] = sess.ID
	fields["items"] = len(sess.Items)

	if err = s.sessions.Save(ctx, &repository.SessionRecord{Session: sess}); err != nil {
		return nil, err
	}
	s.recorder.SessionStarted(sess.EditionID)
	return sess, nil
}

func (s *assessmentService) Get(ctx context.Context, id string) (*repository.SessionRecord, error) {
	return s.sessions.Get(ctx, id)
}

func (s *assessmentService) SaveAnswers(ctx context.Context, id string, req AnswersRequest) (*questionnaire.Session, error) {
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess := rec.Session

	if req.Subject != nil {
		sess.Subject = *req.Subject
	}
	if len(req.Positional) > 0 {
		if err := sess.AnswerPositional(req.Positional); err != nil {
			return nil, err
		}
	}
	if len(req.Answers) > 0 {
		if err := sess.AnswerAll(req.Answers); err != nil {
			return nil, err
		}
	}
	if req.FillDefaults {
		sess.FillDefaults()
	}

	// Answers changed, so any earlier report no longer describes them.
	rec.Report = nil
	if err := s.sessions.Save(ctx, rec); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *assessmentService) GenerateReport(ctx context.Context, id string) (*report.Report, error) {
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rep, err := s.BuildReport(ctx, rec.Session, ReportOptions{})
	if err != nil {
		return nil, err
	}
	rec.Report = rep
	if err := s.sessions.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *assessmentService) LastReport(ctx context.Context, id string) (*report.Report, error) {
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Report == nil {
		return nil, fmt.Errorf("session %s: %w", id, ErrNoReport)
	}
	return rec.Report, nil
}

func (s *assessmentService) BuildReport(ctx context.Context, sess *questionnaire.Session, opts ReportOptions) (rep *report.Report, err error) {
	startedAt := time.Now()
	fields := map[string]any{"session": sess.ID, "edition": sess.EditionID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "generate-report",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if err = sess.Validate(); err != nil {
		return nil, err
	}

	var result *scoring.Result
	result, err = scoring.Evaluate(s.catalog, sess)
	if err != nil {
		return nil, fmt.Errorf("scoring session %s: %w", sess.ID, err)
	}

	var narr narrative.Narrative
	if !opts.SkipNarrative {
		narr = s.narrator.Narrate(ctx, narrative.Request{
			Subject: sess.Subject,
			Result:  result,
			Catalog: s.catalog,
		})
		fields["narrative_fallback"] = narr.Fallback
		fields["narrative_cached"] = narr.Cached
	}

	rep, err = report.Build(s.catalog, report.Input{
		Subject:           sess.Subject,
		Result:            result,
		NarrativeText:     narr.Text,
		NarrativeFallback: narr.Fallback,
		Model:             narr.Model,
		GeneratedAt:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	if !opts.SkipNarrative {
		s.recorder.ReportGenerated(narr.Fallback)
	}
	return rep, nil
}
