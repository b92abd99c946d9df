// Package eligibility generates scheme eligibility quizzes and evaluates
// the answers with a language model, falling back to fixed questions and a
// yes-ratio heuristic whenever the model is unavailable or unparsable.
package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// FallbackQuestions are served when no model-generated quiz is available.
var FallbackQuestions = []string{
	"Are you above 18 years of age?",
	"Do you meet the income criteria mentioned in the scheme?",
	"Are you a citizen of India?",
	"Do you have the required documents?",
	"Do you meet the category requirements?",
}

// Heuristic thresholds and reasons.
const (
	PassPercentage = 80

	ReasonPass = "You meet most of the eligibility criteria based on your answers"
	ReasonFail = "You don't meet enough eligibility criteria based on your answers"
)

// Quiz is a set of yes/no questions. Fallback marks the fixed list.
type Quiz struct {
	Questions []string `json:"questions"`
	Fallback  bool     `json:"-"`
}

// Result is an eligibility verdict.
type Result struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
	Score    int    `json:"score"`
}

// Service generates and evaluates quizzes. A nil Generator always falls back.
type Service struct {
	llm Generator
	log *zap.Logger
}

// NewService returns a Service.
func NewService(llm Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{llm: llm, log: logger}
}

func fallbackQuiz() Quiz {
	q := make([]string, len(FallbackQuestions))
	copy(q, FallbackQuestions)
	return Quiz{Questions: q, Fallback: true}
}

// GenerateQuiz asks the model for five questions testing criteria.
// It never fails; any problem yields the fallback quiz.
func (s *Service) GenerateQuiz(ctx context.Context, criteria, schemeName string) Quiz {
	if s.llm == nil {
		return fallbackQuiz()
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.LLM(), s.log, "eligibility quiz")
	defer cancel()

	text, err := s.llm.GenerateJSON(ctx, quizPrompt(criteria, schemeName), quizSchema)
	if err != nil {
		s.log.Warn("quiz generation failed; using fallback questions",
			zap.String("scheme", schemeName), zap.Error(err))
		return fallbackQuiz()
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := parseObject(text, &out); err != nil {
		s.log.Warn("quiz response unparsable; using fallback questions",
			zap.String("scheme", schemeName), zap.Error(err))
		return fallbackQuiz()
	}

	questions := make([]string, 0, len(out.Questions))
	for _, q := range out.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		s.log.Warn("quiz response had no questions; using fallback questions",
			zap.String("scheme", schemeName))
		return fallbackQuiz()
	}
	return Quiz{Questions: questions}
}

// Evaluate judges the answers against criteria. It never fails; any
// problem yields Heuristic(questions, answers).
func (s *Service) Evaluate(ctx context.Context, questions []string, answers []bool, criteria string) Result {
	if s.llm == nil {
		return Heuristic(questions, answers)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.LLM(), s.log, "eligibility evaluation")
	defer cancel()

	text, err := s.llm.GenerateJSON(ctx, evalPrompt(criteria, questions, answers), resultSchema)
	if err != nil {
		s.log.Warn("eligibility evaluation failed; using heuristic", zap.Error(err))
		return Heuristic(questions, answers)
	}

	var out struct {
		Eligible *bool   `json:"eligible"`
		Reason   string  `json:"reason"`
		Score    float64 `json:"score"`
	}
	if err := parseObject(text, &out); err != nil || out.Eligible == nil {
		s.log.Warn("evaluation response unparsable; using heuristic", zap.Error(err))
		return Heuristic(questions, answers)
	}
	return Result{
		Eligible: *out.Eligible,
		Reason:   out.Reason,
		Score:    clampScore(out.Score),
	}
}

// Heuristic scores the share of "yes" answers. Answers beyond the
// questions are ignored and missing answers count as "no".
func Heuristic(questions []string, answers []bool) Result {
	if len(questions) == 0 {
		return Result{Eligible: false, Reason: ReasonFail, Score: 0}
	}
	yes := 0
	for i := range questions {
		if answerAt(answers, i) {
			yes++
		}
	}
	pct := float64(yes) / float64(len(questions)) * 100
	r := Result{Score: int(math.Round(pct))}
	if pct >= PassPercentage {
		r.Eligible = true
		r.Reason = ReasonPass
	} else {
		r.Reason = ReasonFail
	}
	return r
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

var objectRe = regexp.MustCompile(`(?s)\{.*\}`)

var errNoJSON = errors.New("no JSON object in model output")

// parseObject decodes text strictly, then retries on the outermost {...}
// span for replies wrapped in prose or code fences.
func parseObject(text string, dst any) error {
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), dst); err == nil {
		return nil
	}
	m := objectRe.FindString(text)
	if m == "" {
		return errNoJSON
	}
	return json.Unmarshal([]byte(m), dst)
}
