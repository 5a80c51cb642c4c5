package questionnaire

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/google/uuid"
)

// Likert bounds and the neutral value used to pre-fill form controls.
const (
	MinAnswer     = 1
	MaxAnswer     = 5
	DefaultAnswer = 3
)

var (
	ErrMissingSubject   = errors.New("subject name is required")
	ErrIncomplete       = errors.New("answer set is incomplete")
	ErrOutOfRange       = errors.New("answer out of range")
	ErrUnknownStatement = errors.New("unknown statement")
)

// Item is one statement as displayed to the respondent.
type Item struct {
	TraitID     string `json:"trait_id"`
	StatementID string `json:"statement_id"`
	Text        string `json:"text"`
}

// AnswerSet maps statement IDs to Likert values.
type AnswerSet map[string]int

// Session owns the fixed display order for one questionnaire run together
// with the answers collected so far. The order never changes once assembled.
type Session struct {
	ID        string    `json:"id"`
	EditionID string    `json:"edition"`
	Seed      uint64    `json:"seed"`
	Subject   string    `json:"subject,omitempty"`
	Items     []Item    `json:"items"`
	Answers   AnswerSet `json:"answers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSeed returns a fresh random permutation seed.
func NewSeed() uint64 {
	return rand.Uint64()
}

// StatementID builds the stable identifier of the n-th (0-based) statement of a trait.
func StatementID(traitID string, n int) string {
	return traitID + "." + strconv.Itoa(n+1)
}

// ParseStatementID splits a statement ID into its trait ID and 0-based index.
func ParseStatementID(id string) (string, int, bool) {
	i := strings.LastIndexByte(id, '.')
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return id[:i], n - 1, true
}

// Assemble flattens every statement of the edition's traits and permutes them
// with a PRNG seeded by seed. The same catalog, edition and seed always give
// the same order.
func Assemble(cat *catalog.Catalog, editionID string, seed uint64) (*Session, error) {
	traits, err := cat.ActiveTraits(editionID)
	if err != nil {
		return nil, err
	}
	edition, _ := cat.Edition(editionID)

	var items []Item
	for _, t := range traits {
		for n, text := range t.Statements {
			items = append(items, Item{
				TraitID:     t.ID,
				StatementID: StatementID(t.ID, n),
				Text:        text,
			})
		}
	}

	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	return &Session{
		ID:        uuid.New().String(),
		EditionID: edition.ID,
		Seed:      seed,
		Items:     items,
		Answers:   make(AnswerSet, len(items)),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Session) has(statementID string) bool {
	for _, it := range s.Items {
		if it.StatementID == statementID {
			return true
		}
	}
	return false
}

// Answer records the answer for one statement.
func (s *Session) Answer(statementID string, value int) error {
	if !s.has(statementID) {
		return fmt.Errorf("%w: %s", ErrUnknownStatement, statementID)
	}
	if value < MinAnswer || value > MaxAnswer {
		return fmt.Errorf("%w: %s=%d (want %d..%d)", ErrOutOfRange, statementID, value, MinAnswer, MaxAnswer)
	}
	if s.Answers == nil {
		s.Answers = make(AnswerSet, len(s.Items))
	}
	s.Answers[statementID] = value
	return nil
}

// AnswerAll records a batch of answers keyed by statement ID. Nothing is
// recorded if any entry is rejected.
func (s *Session) AnswerAll(answers AnswerSet) error {
	for id, v := range answers {
		if !s.has(id) {
			return fmt.Errorf("%w: %s", ErrUnknownStatement, id)
		}
		if v < MinAnswer || v > MaxAnswer {
			return fmt.Errorf("%w: %s=%d (want %d..%d)", ErrOutOfRange, id, v, MinAnswer, MaxAnswer)
		}
	}
	for id, v := range answers {
		_ = s.Answer(id, v)
	}
	return nil
}

// AnswerPositional records answers given in display order.
func (s *Session) AnswerPositional(values []int) error {
	if len(values) != len(s.Items) {
		return fmt.Errorf("%w: got %d answers for %d statements", ErrIncomplete, len(values), len(s.Items))
	}
	batch := make(AnswerSet, len(values))
	for i, v := range values {
		batch[s.Items[i].StatementID] = v
	}
	return s.AnswerAll(batch)
}

// FillDefaults sets every unanswered statement to DefaultAnswer.
func (s *Session) FillDefaults() {
	for _, it := range s.Items {
		if _, ok := s.Answers[it.StatementID]; !ok {
			_ = s.Answer(it.StatementID, DefaultAnswer)
		}
	}
}

// Unanswered returns the statement IDs without an answer, in display order.
func (s *Session) Unanswered() []string {
	var out []string
	for _, it := range s.Items {
		if _, ok := s.Answers[it.StatementID]; !ok {
			out = append(out, it.StatementID)
		}
	}
	return out
}

// Validate reports whether the session is ready for scoring.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Subject) == "" {
		return ErrMissingSubject
	}
	if missing := s.Unanswered(); len(missing) > 0 {
		return fmt.Errorf("%w: %d of %d statements unanswered", ErrIncomplete, len(missing), len(s.Items))
	}
	for id, v := range s.Answers {
		if !s.has(id) {
			return fmt.Errorf("%w: %s", ErrUnknownStatement, id)
		}
		if v < MinAnswer || v > MaxAnswer {
			return fmt.Errorf("%w: %s=%d", ErrOutOfRange, id, v)
		}
	}
	return nil
}
