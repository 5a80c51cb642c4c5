package service

import (
	"context"

	"github.com/alexanderramin/strengthscope/internal/questionnaire"
	"github.com/alexanderramin/strengthscope/internal/report"
	"github.com/alexanderramin/strengthscope/internal/repository"
)

// EditionInfo describes a selectable questionnaire edition.
type EditionInfo struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	TraitCount     int      `json:"trait_count"`
	StatementCount int      `json:"statement_count"`
	Categories     []string `json:"categories"`
}

// StartRequest opens a new questionnaire session.
type StartRequest struct {
	EditionID string  `json:"edition"`
	Subject   string  `json:"subject,omitempty"`
	Seed      *uint64 `json:"seed,omitempty"`
}

// AnswersRequest records answers, either keyed by statement ID or in
// display order. FillDefaults answers every remaining statement neutrally.
type AnswersRequest struct {
	Subject      *string                 `json:"subject,omitempty"`
	Answers      questionnaire.AnswerSet `json:"answers,omitempty"`
	Positional   []int                   `json:"positional,omitempty"`
	FillDefaults bool                    `json:"fill_defaults,omitempty"`
}

// ReportOptions tunes report assembly.
type ReportOptions struct {
	SkipNarrative bool
}

type AssessmentService interface {
	Editions(ctx context.Context) []EditionInfo
	Start(ctx context.Context, req StartRequest) (*questionnaire.Session, error)
	Get(ctx context.Context, id string) (*repository.SessionRecord, error)
	SaveAnswers(ctx context.Context, id string, req AnswersRequest) (*questionnaire.Session, error)
	GenerateReport(ctx context.Context, id string) (*report.Report, error)
	LastReport(ctx context.Context, id string) (*report.Report, error)

	// BuildReport scores a completed session that is not held in the
	// session store.
	BuildReport(ctx context.Context, sess *questionnaire.Session, opts ReportOptions) (*report.Report, error)
}
