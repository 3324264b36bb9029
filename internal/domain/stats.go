package domain

import "fmt"

// UserStats is the read view of a user's stored aggregates.
type UserStats struct {
	UserID          string `json:"user_id"`
	ReputationScore int    `json:"reputation_score"`
	QuestionsCount  int    `json:"questions_count"`
	AnswersCount    int    `json:"answers_count"`
}

// QuestionStats is the read view of a question's stored aggregates.
type QuestionStats struct {
	QuestionID        string  `json:"question_id"`
	VoteScore         int     `json:"vote_score"`
	AnswerCount       int     `json:"answer_count"`
	HasAcceptedAnswer bool    `json:"has_accepted_answer"`
	AcceptedAnswerID  *string `json:"accepted_answer_id"`
}

// AnswerStats is the read view of an answer's stored aggregates.
type AnswerStats struct {
	AnswerID     string `json:"answer_id"`
	QuestionID   string `json:"question_id"`
	VoteScore    int    `json:"vote_score"`
	CommentCount int    `json:"comment_count"`
	IsAccepted   bool   `json:"is_accepted"`
}

// TagStats is the read view of a tag's stored aggregates.
type TagStats struct {
	TagID      string `json:"tag_id"`
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
}

// Entity names used in Mismatch reports.
const (
	EntityUser     = "user"
	EntityQuestion = "question"
	EntityAnswer   = "answer"
	EntityTag      = "tag"
)

// Mismatch describes one stored aggregate that disagrees with the value
// recomputed from the fact tables.
type Mismatch struct {
	Entity   string `json:"entity"`
	ID       string `json:"id"`
	Field    string `json:"field"`
	Stored   any    `json:"stored"`
	Expected any    `json:"expected"`
}

// String renders the mismatch as "entity/id.field: stored=x expected=y".
func (m Mismatch) String() string {
	return fmt.Sprintf("%s/%s.%s: stored=%v expected=%v", m.Entity, m.ID, m.Field, show(m.Stored), show(m.Expected))
}

func show(v any) any {
	if p, ok := v.(*string); ok {
		if p == nil {
			return "<nil>"
		}
		return *p
	}
	return v
}
