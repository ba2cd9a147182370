package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"adaptive-quiz-service/internal/bank"
	"adaptive-quiz-service/internal/domain"
)

const (
	// DefaultMaxWeek is the last syllabus week.
	DefaultMaxWeek = 16
	// HistoryLimit bounds the history endpoint.
	HistoryLimit = 200

	msgCorrect   = "Correct! Do you want to continue?"
	msgIncorrect = "Incorrect. Do you want to continue?"
	msgFinished  = "Thanks for practising! Back to the dashboard."
	msgExhausted = "You finished every available question for this topic and difficulty."
)

// AnswerResult is the outcome of one submission.
type AnswerResult struct {
	Correct    bool   `json:"correct"`
	Message    string `json:"message"`
	Difficulty int    `json:"difficulty"`
}

// NextResult is either the next question or the end of the run.
type NextResult struct {
	End      bool
	Message  string
	Question domain.QuestionView
}

// QuizService contains the quiz flow use cases.
type QuizService struct {
	sessions     SessionRepository
	interactions InteractionRepository
	audit        Auditor
	questions    *bank.Bank
	difficulty   DifficultyController
	maxWeek      int
	now          func() time.Time
}

// Option customises a QuizService.
type Option func(*QuizService)

// WithMaxWeek sets the upper bound weeks are clamped to.
func WithMaxWeek(week int) Option {
	return func(s *QuizService) {
		if week > 0 {
			s.maxWeek = week
		}
	}
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(store SessionRepository, interactions InteractionRepository, questions *bank.Bank, audit Auditor, opts ...Option) *QuizService {
	if audit == nil {
		audit = nopAuditor{}
	}
	s := &QuizService{
		sessions:     store,
		interactions: interactions,
		audit:        audit,
		questions:    questions,
		difficulty:   NewDifficultyController(questions),
		maxWeek:      DefaultMaxWeek,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetWeek selects the syllabus week, clamped to 1..maxWeek. Any running quiz is
// abandoned.
func (s *QuizService) SetWeek(ctx context.Context, token string, week int) (int, error) {
	session, err := s.session(ctx, token)
	if err != nil {
		return 0, err
	}

	if week < 1 {
		week = 1
	}
	if week > s.maxWeek {
		week = s.maxWeek
	}
	session.Week = week
	session.Stage = StageWeekSelected
	session.Current = nil

	if err := s.sessions.Save(ctx, session); err != nil {
		return 0, fmt.Errorf("save session: %w", err)
	}
	return week, nil
}

// Catalog lists the topics and difficulties available for the selected week.
func (s *QuizService) Catalog(ctx context.Context, token string) (domain.Catalog, error) {
	session, err := s.session(ctx, token)
	if err != nil {
		return domain.Catalog{}, err
	}
	if session.Week == 0 {
		return domain.Catalog{}, domain.ErrWeekNotSelected
	}

	topics := s.questions.AvailableTopics(session.Week)
	return domain.Catalog{
		Week:         session.Week,
		Topics:       topics,
		Difficulties: s.questions.AvailableDifficulties(topics, session.Week),
	}, nil
}

// Start begins a new run with the given comma-joined topic filter and
// difficulty ceiling. It returns domain.ErrNoCandidates when nothing matches.
func (s *QuizService) Start(ctx context.Context, token, topics string, difficulty int) (domain.QuestionView, error) {
	session, err := s.session(ctx, token)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if difficulty < 1 {
		return domain.QuestionView{}, fmt.Errorf("%w: difficulty must be at least 1", domain.ErrInvalidInput)
	}
	if session.Week == 0 {
		return domain.QuestionView{}, domain.ErrWeekNotSelected
	}

	session.Topics = strings.TrimSpace(topics)
	session.Difficulty = difficulty
	session.AnsweredOK = nil
	session.Recent = nil
	session.Current = nil
	session.Stage = StageWeekSelected

	id, ok := s.pick(ctx, session)
	if ok {
		session.serve(id)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.QuestionView{}, fmt.Errorf("save session: %w", err)
	}
	if !ok {
		return domain.QuestionView{}, domain.ErrNoCandidates
	}
	return s.view(id)
}

// Current returns the question being worked on.
func (s *QuizService) Current(ctx context.Context, token string) (domain.QuestionView, error) {
	session, err := s.session(ctx, token)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if session.Current == nil {
		return domain.QuestionView{}, domain.ErrNoActiveQuestion
	}
	return s.view(*session.Current)
}

// Answer grades raw against the active question, records the interaction and
// adapts the difficulty. Nothing in the session changes if recording fails.
func (s *QuizService) Answer(ctx context.Context, token, raw string) (AnswerResult, error) {
	session, err := s.session(ctx, token)
	if err != nil {
		return AnswerResult{}, err
	}
	if session.Stage != StageQuestionActive || session.Current == nil {
		return AnswerResult{}, domain.ErrNoActiveQuestion
	}
	question, ok := s.questions.Get(*session.Current)
	if !ok {
		return AnswerResult{}, domain.ErrQuestionNotFound
	}

	correct := ValidateAnswer(raw, question)
	recorded, err := s.interactions.Append(ctx, domain.Interaction{
		UserID:     session.UserID,
		QuestionID: question.ID,
		Success:    correct,
		Timestamp:  s.now().UTC(),
	})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("record interaction: %w", err)
	}
	if err := s.audit.InteractionRecorded(domain.InteractionRecord{Interaction: recorded, Email: session.Email}); err != nil {
		log.Printf("audit interaction for user %d: %v", session.UserID, err)
	}

	if correct {
		session.markAnswered(question.ID)
	}
	difficulty := s.difficulty.Update(&session, correct)
	session.Stage = StageAnswered

	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("interaction %d for user %d recorded but session not saved: %v", recorded.ID, session.UserID, err)
		return AnswerResult{}, fmt.Errorf("save session: %w", err)
	}

	msg := msgIncorrect
	if correct {
		msg = msgCorrect
	}
	return AnswerResult{Correct: correct, Message: msg, Difficulty: difficulty}, nil
}

// Next ends the run when cont is false, otherwise serves another question.
// Questions answered correctly in this run are never served again.
func (s *QuizService) Next(ctx context.Context, token string, cont bool) (NextResult, error) {
	session, err := s.session(ctx, token)
	if err != nil {
		return NextResult{}, err
	}
	if !session.runStarted() {
		return NextResult{}, domain.ErrQuizNotStarted
	}

	if !cont {
		session.Current = nil
		session.Stage = StageWeekSelected
		if err := s.sessions.Save(ctx, session); err != nil {
			return NextResult{}, fmt.Errorf("save session: %w", err)
		}
		return NextResult{End: true, Message: msgFinished}, nil
	}

	id, ok := s.pick(ctx, session)
	if ok {
		session.serve(id)
	} else {
		session.Current = nil
		session.Stage = StageExhausted
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return NextResult{}, fmt.Errorf("save session: %w", err)
	}
	if !ok {
		return NextResult{End: true, Message: msgExhausted}, nil
	}

	view, err := s.view(id)
	if err != nil {
		return NextResult{}, err
	}
	return NextResult{Question: view}, nil
}

// History returns the user's latest interactions, newest first.
func (s *QuizService) History(ctx context.Context, token string) ([]domain.Interaction, error) {
	session, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	items, err := s.interactions.Recent(ctx, session.UserID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return items, nil
}

func (s *QuizService) session(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, domain.ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return Session{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

func (s *QuizService) pick(ctx context.Context, session Session) (int, bool) {
	return s.questions.Pick(bank.Query{
		Week:          session.Week,
		Topics:        bank.ParseTopics(session.Topics),
		MaxDifficulty: session.Difficulty,
		Exclude:       session.excluded(),
	}, s.seen(ctx, session.UserID))
}

// seen loads the user's answered question ids. Lookup failures only cost the
// unseen-first ordering, so they are logged and treated as no history.
func (s *QuizService) seen(ctx context.Context, userID int64) map[int]struct{} {
	ids, err := s.interactions.SeenQuestionIDs(ctx, userID)
	if err != nil {
		log.Printf("history lookup for user %d failed, picking without it: %v", userID, err)
		return nil
	}
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s *QuizService) view(id int) (domain.QuestionView, error) {
	q, ok := s.questions.Get(id)
	if !ok {
		return domain.QuestionView{}, domain.ErrQuestionNotFound
	}
	return domain.QuestionView{
		QuestionID: q.ID,
		HTML:       q.HTML,
		Topics:     strings.Join(q.Topics, ","),
		Difficulty: q.Difficulty,
		Week:       q.Week,
	}, nil
}
