// Package services – Verifier
//
// Verifier recomputes every aggregate from the fact tables in memory and
// compares the results with the stored columns. It shares no code with the
// SQL aggregation queries used by the write path, so a bug in either shows
// up as a mismatch. Repair rewrites the mismatching rows through the write
// path's recompute helpers.
package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// Aggregate field names reported in mismatches.
const (
	FieldVoteScore         = "vote_score"
	FieldCommentCount      = "comment_count"
	FieldAnswerCount       = "answer_count"
	FieldHasAcceptedAnswer = "has_accepted_answer"
	FieldAcceptedAnswerID  = "accepted_answer_id"
	FieldAcceptedAnswers   = "accepted_answers"
	FieldReputationScore   = "reputation_score"
	FieldQuestionsCount    = "questions_count"
	FieldAnswersCount      = "answers_count"
	FieldUsageCount        = "usage_count"
)

// Verifier checks and repairs stored aggregates.
type Verifier struct {
	DB         *gorm.DB
	Log        *zerolog.Logger
	MaxRetries int
}

// factSet is one consistent snapshot of every table.
type factSet struct {
	users        []domain.User
	questions    []domain.Question
	answers      []domain.Answer
	votes        []domain.Vote
	tags         []domain.Tag
	questionTags []domain.QuestionTag
	comments     []domain.Comment
}

func loadFacts(ctx context.Context, tx *gorm.DB) (*factSet, error) {
	var (
		f   factSet
		err error
	)
	if f.users, err = repo.ListUsers(ctx, tx); err != nil {
		return nil, err
	}
	if f.questions, err = repo.ListQuestions(ctx, tx); err != nil {
		return nil, err
	}
	if f.answers, err = repo.ListAnswers(ctx, tx); err != nil {
		return nil, err
	}
	if f.votes, err = repo.ListVotes(ctx, tx); err != nil {
		return nil, err
	}
	if f.tags, err = repo.ListTags(ctx, tx); err != nil {
		return nil, err
	}
	if f.questionTags, err = repo.ListQuestionTags(ctx, tx); err != nil {
		return nil, err
	}
	if f.comments, err = repo.ListComments(ctx, tx); err != nil {
		return nil, err
	}
	return &f, nil
}

// Verify returns every stored aggregate that disagrees with its value
// recomputed from the facts. An empty result means the database is
// consistent. The mismatch gauge is updated as a side effect.
func (v *Verifier) Verify(ctx context.Context) ([]domain.Mismatch, error) {
	ctx, span := otel.Tracer("services/Verifier").Start(ctx, "Verify")
	defer span.End()

	var out []domain.Mismatch
	read := func(tx *gorm.DB) error {
		facts, err := loadFacts(ctx, tx)
		if err != nil {
			return err
		}
		out = compare(facts)
		return nil
	}
	var err error
	if opts := repo.SnapshotTxOptions(v.DB); opts != nil {
		err = v.DB.WithContext(ctx).Transaction(read, opts)
	} else {
		err = v.DB.WithContext(ctx).Transaction(read)
	}
	if err != nil {
		return nil, &PersistenceError{Op: "verify", Err: err}
	}
	consistencyMismatches.Set(float64(len(out)))
	span.SetAttributes(attribute.Int("mismatches", len(out)))
	return out, nil
}

// Repair rewrites every mismatching aggregate in one transaction and returns
// the mismatches it fixed. A question with more than one accepted answer
// keeps the oldest; the others are unaccepted before recomputation.
func (v *Verifier) Repair(ctx context.Context) ([]domain.Mismatch, error) {
	p := &Propagator{DB: v.DB, Log: v.Log, MaxRetries: v.MaxRetries}
	var fixed []domain.Mismatch
	err := p.run(ctx, "repair", nil, func(ctx context.Context, tx *gorm.DB) error {
		facts, err := loadFacts(ctx, tx)
		if err != nil {
			return err
		}
		found := compare(facts)
		if len(found) == 0 {
			fixed = nil
			return nil
		}

		var answers, questions, users, tags []string
		for _, m := range found {
			switch m.Entity {
			case domain.EntityAnswer:
				answers = append(answers, m.ID)
			case domain.EntityQuestion:
				questions = append(questions, m.ID)
			case domain.EntityUser:
				users = append(users, m.ID)
			case domain.EntityTag:
				tags = append(tags, m.ID)
			}
		}
		answers, questions = uniqueIDs(answers), uniqueIDs(questions)
		sort.Strings(questions)

		if _, err := repo.LockAnswers(ctx, tx, answers...); err != nil {
			return err
		}
		for _, qid := range questions {
			if _, err := repo.LockQuestion(ctx, tx, qid); err != nil {
				return err
			}
		}

		for _, qid := range questions {
			keep, err := repo.AcceptedAnswerID(ctx, tx, qid)
			if err != nil {
				return err
			}
			if keep != nil {
				prev, err := repo.ListAcceptedAnswers(ctx, tx, qid)
				if err != nil {
					return err
				}
				for _, a := range prev {
					users = append(users, a.AuthorID)
				}
				if _, err := repo.ClearAcceptedAnswers(ctx, tx, qid, *keep); err != nil {
					return err
				}
			}
		}
		if _, err := repo.LockUsers(ctx, tx, users...); err != nil {
			return err
		}
		if _, err := repo.LockTags(ctx, tx, tags...); err != nil {
			return err
		}

		for _, id := range answers {
			if err := recomputeAnswer(ctx, tx, id); err != nil {
				return err
			}
		}
		for _, id := range questions {
			if err := recomputeQuestion(ctx, tx, id); err != nil {
				return err
			}
		}
		if err := recomputeUsers(ctx, tx, users...); err != nil {
			return err
		}
		if err := recomputeTags(ctx, tx, tags...); err != nil {
			return err
		}
		fixed = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	aggregatesRepaired.Add(float64(len(fixed)))
	consistencyMismatches.Set(0)
	return fixed, nil
}

// compare recomputes every aggregate from facts and lists the differences,
// ordered by entity, id and field.
func compare(f *factSet) []domain.Mismatch {
	answerScore := map[string]int{}
	upvotes := map[string]int{}
	downvotes := map[string]int{}
	for _, v := range f.votes {
		if v.IsUpvote {
			answerScore[v.AnswerID]++
			upvotes[v.AnswerID]++
		} else {
			answerScore[v.AnswerID]--
			downvotes[v.AnswerID]++
		}
	}
	commentCount := map[string]int{}
	for _, c := range f.comments {
		commentCount[c.AnswerID]++
	}

	questionScore := map[string]int{}
	answerCount := map[string]int{}
	accepted := map[string][]domain.Answer{}
	reputation := map[string]int{}
	answersBy := map[string]int{}
	for _, a := range f.answers {
		questionScore[a.QuestionID] += answerScore[a.ID]
		answerCount[a.QuestionID]++
		answersBy[a.AuthorID]++
		reputation[a.AuthorID] += repo.ReputationPerUpvote*upvotes[a.ID] + repo.ReputationPerDownvote*downvotes[a.ID]
		if a.IsAccepted {
			accepted[a.QuestionID] = append(accepted[a.QuestionID], a)
			reputation[a.AuthorID] += repo.ReputationPerAccepted
		}
	}
	questionsBy := map[string]int{}
	for _, q := range f.questions {
		questionsBy[q.AuthorID]++
	}
	usage := map[string]int{}
	for _, qt := range f.questionTags {
		usage[qt.TagID]++
	}

	var out []domain.Mismatch
	add := func(entity, id, field string, stored, expected any) {
		out = append(out, domain.Mismatch{Entity: entity, ID: id, Field: field, Stored: stored, Expected: expected})
	}

	for _, a := range f.answers {
		if a.VoteScore != answerScore[a.ID] {
			add(domain.EntityAnswer, a.ID, FieldVoteScore, a.VoteScore, answerScore[a.ID])
		}
		if a.CommentCount != commentCount[a.ID] {
			add(domain.EntityAnswer, a.ID, FieldCommentCount, a.CommentCount, commentCount[a.ID])
		}
	}
	for _, q := range f.questions {
		if q.VoteScore != questionScore[q.ID] {
			add(domain.EntityQuestion, q.ID, FieldVoteScore, q.VoteScore, questionScore[q.ID])
		}
		if q.AnswerCount != answerCount[q.ID] {
			add(domain.EntityQuestion, q.ID, FieldAnswerCount, q.AnswerCount, answerCount[q.ID])
		}
		acc := accepted[q.ID]
		if len(acc) > 1 {
			add(domain.EntityQuestion, q.ID, FieldAcceptedAnswers, len(acc), 1)
		}
		var wantID *string
		if len(acc) > 0 {
			sort.Slice(acc, func(i, j int) bool {
				if !acc[i].CreatedAt.Equal(acc[j].CreatedAt) {
					return acc[i].CreatedAt.Before(acc[j].CreatedAt)
				}
				return acc[i].ID < acc[j].ID
			})
			id := acc[0].ID
			wantID = &id
		}
		if q.HasAcceptedAnswer != (wantID != nil) {
			add(domain.EntityQuestion, q.ID, FieldHasAcceptedAnswer, q.HasAcceptedAnswer, wantID != nil)
		}
		if !sameID(q.AcceptedAnswerID, wantID) {
			add(domain.EntityQuestion, q.ID, FieldAcceptedAnswerID, q.AcceptedAnswerID, wantID)
		}
	}
	for _, u := range f.users {
		if u.ReputationScore != reputation[u.ID] {
			add(domain.EntityUser, u.ID, FieldReputationScore, u.ReputationScore, reputation[u.ID])
		}
		if u.QuestionsCount != questionsBy[u.ID] {
			add(domain.EntityUser, u.ID, FieldQuestionsCount, u.QuestionsCount, questionsBy[u.ID])
		}
		if u.AnswersCount != answersBy[u.ID] {
			add(domain.EntityUser, u.ID, FieldAnswersCount, u.AnswersCount, answersBy[u.ID])
		}
	}
	for _, t := range f.tags {
		if t.UsageCount != usage[t.ID] {
			add(domain.EntityTag, t.ID, FieldUsageCount, t.UsageCount, usage[t.ID])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Entity != out[j].Entity {
			return out[i].Entity < out[j].Entity
		}
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
