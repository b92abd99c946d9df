// internal/app/features/eligibility/quiz.go
package eligibility

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	allschemestore "github.com/jansethu/mysarkar/internal/app/store/allschemes"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/eligibility"
	"github.com/jansethu/mysarkar/internal/app/system/normalize"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GetQuiz handles GET /eligibility/quiz/{schemeId}.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "schemeId")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "quiz scheme lookup")
	defer cancel()

	doc, err := h.Schemes.GetByID(ctx, id)
	if errors.Is(err, allschemestore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Scheme not found")
		return
	}
	if err != nil {
		h.Log.Error("quiz: scheme lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to generate quiz", err)
		return
	}
	name := models.AllSchemeName(doc)

	questions, hit := h.Cache.Get(r.Context(), raw)
	if !hit {
		quiz := h.Quiz.GenerateQuiz(r.Context(), models.AllSchemeCriteria(doc), name)
		questions = quiz.Questions
		if !quiz.Fallback {
			h.Cache.Set(r.Context(), raw, questions)
		}
	}

	respond.OK(w, map[string]any{
		"schemeId":   raw,
		"schemeName": name,
		"questions":  questions,
	})
}

type checkInput struct {
	SchemeID  string               `json:"schemeId"`
	Questions []string             `json:"questions"`
	Answers   []eligibility.Answer `json:"answers"`
}

// Check handles POST /eligibility/check. The verdict is stored as the
// caller's PreApplication for the scheme, replacing any earlier one.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var in checkInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Missing required data", err)
		return
	}
	if in.SchemeID == "" || in.Questions == nil || in.Answers == nil {
		respond.Message(w, http.StatusBadRequest, "Missing required data")
		return
	}
	schemeID, err := primitive.ObjectIDFromHex(in.SchemeID)
	if err != nil {
		respond.Message(w, http.StatusNotFound, "User or scheme not found")
		return
	}

	user, doc, err := h.loadUserAndScheme(r.Context(), uid, schemeID)
	if err != nil {
		h.Log.Error("eligibility check: lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Eligibility check failed", err)
		return
	}
	if user == nil || doc == nil {
		respond.Message(w, http.StatusNotFound, "User or scheme not found")
		return
	}

	answers := eligibility.Bools(in.Answers)
	result := h.Quiz.Evaluate(r.Context(), in.Questions, answers, models.AllSchemeCriteria(doc))

	userAnswers := make(map[string]string, len(in.Questions))
	for i, q := range in.Questions {
		userAnswers[q] = normalize.Answer(i < len(answers) && answers[i])
	}
	status := models.EligibilityNotEligible
	if result.Eligible {
		status = models.EligibilityEligible
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "save pre_application")
	defer cancel()

	if err := h.PreApps.Upsert(ctx, models.PreApplication{
		UserID:            uid,
		SchemeID:          schemeID,
		EligibilityStatus: status,
		AIResponse: models.AIResponse{
			Eligible:  result.Eligible,
			Reason:    result.Reason,
			Score:     result.Score,
			Questions: in.Questions,
		},
		UserAnswers: userAnswers,
	}); err != nil {
		h.Log.Error("eligibility check: save failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Eligibility check failed", err)
		return
	}

	h.Log.Info("eligibility checked",
		zap.String("user_id", uid.Hex()),
		zap.String("scheme_id", in.SchemeID),
		zap.Bool("eligible", result.Eligible),
		zap.Int("score", result.Score))
	respond.OK(w, map[string]any{
		"schemeId":   in.SchemeID,
		"schemeName": models.AllSchemeName(doc),
		"eligible":   result.Eligible,
		"reason":     result.Reason,
		"score":      result.Score,
	})
}

// loadUserAndScheme fetches both documents concurrently. A missing document
// is reported as nil without an error.
func (h *Handler) loadUserAndScheme(parent context.Context, uid, schemeID primitive.ObjectID) (*models.User, models.AllScheme, error) {
	ctx, cancel := timeouts.WithTimeout(parent, timeouts.Short(), h.Log, "eligibility lookups")
	defer cancel()

	var (
		user *models.User
		doc  models.AllScheme
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := h.Users.GetByID(gctx, uid)
		if errors.Is(err, userstore.ErrNotFound) {
			return nil
		}
		user = u
		return err
	})
	g.Go(func() error {
		d, err := h.Schemes.GetByID(gctx, schemeID)
		if errors.Is(err, allschemestore.ErrNotFound) {
			return nil
		}
		doc = d
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return user, doc, nil
}
