// Package domain defines the persistence models for the StackIt forum:
// users, questions, answers, votes, tags, comments, and notifications.
// These types are mapped with GORM and form the core data layer of the
// statistics propagator.
//
// Fields documented as "derived" are aggregates owned by the services
// package. No other code path may write them.
package domain

import "time"

// User is a forum member. Identity fields are written at registration; the
// counters are derived from the user's questions, answers and the votes
// those answers received.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username / Email: unique identity columns.
//   - ReputationScore: derived, 10 per upvote, -2 per downvote, 15 per accepted answer.
//   - QuestionsCount / AnswersCount: derived row counts.
type User struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	Username        string    `json:"username"         gorm:"type:varchar(50);not null;uniqueIndex"`
	Email           string    `json:"email"            gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName        string    `json:"full_name"        gorm:"type:varchar(100)"`
	ReputationScore int       `json:"reputation_score" gorm:"not null;default:0;index:ix_users_reputation"`
	QuestionsCount  int       `json:"questions_count"  gorm:"not null;default:0"`
	AnswersCount    int       `json:"answers_count"    gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Question is owned by its author. Everything except the content columns
// and IsClosed is derived from the question's answers and their votes.
//
// AcceptedAnswerID is a plain nullable column rather than an association:
// answers reference questions, so a second foreign key in the other
// direction would make the two tables mutually dependent at migration time.
type Question struct {
	ID                string    `json:"id"                  gorm:"type:char(36);primaryKey"`
	AuthorID          string    `json:"author_id"           gorm:"type:char(36);not null;index:ix_questions_author"`
	Title             string    `json:"title"               gorm:"type:varchar(200);not null"`
	Description       string    `json:"description"         gorm:"type:text;not null"`
	ViewCount         int       `json:"view_count"          gorm:"not null;default:0"`
	IsClosed          bool      `json:"is_closed"           gorm:"not null;default:false"`
	VoteScore         int       `json:"vote_score"          gorm:"not null;default:0"`
	AnswerCount       int       `json:"answer_count"        gorm:"not null;default:0"`
	HasAcceptedAnswer bool      `json:"has_accepted_answer" gorm:"not null;default:false"`
	AcceptedAnswerID  *string   `json:"accepted_answer_id"  gorm:"type:char(36)"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Author User `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Question.
func (Question) TableName() string { return "questions" }

// Answer belongs to exactly one question. VoteScore and CommentCount are
// derived; IsAccepted is a fact set only through accept/unaccept.
type Answer struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	QuestionID   string    `json:"question_id"   gorm:"type:char(36);not null;index:ix_answers_question;index:ix_answers_accepted,priority:2"`
	AuthorID     string    `json:"author_id"     gorm:"type:char(36);not null;index:ix_answers_author"`
	Content      string    `json:"content"       gorm:"type:text;not null"`
	IsAccepted   bool      `json:"is_accepted"   gorm:"not null;default:false;index:ix_answers_accepted,priority:1"`
	VoteScore    int       `json:"vote_score"    gorm:"not null;default:0"`
	CommentCount int       `json:"comment_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author   User     `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Answer.
func (Answer) TableName() string { return "answers" }

// Vote is a single user's polarity on an answer. The unique index makes
// (user_id, answer_id) the natural key so a second vote replaces the first.
type Vote struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:char(36);not null;uniqueIndex:ux_votes_user_answer,priority:1"`
	AnswerID  string    `json:"answer_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_votes_user_answer,priority:2"`
	IsUpvote  bool      `json:"is_upvote" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Answer Answer `json:"-" gorm:"foreignKey:AnswerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User   User   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string { return "votes" }

// Tag categorises questions. Name matching is exact and case-sensitive.
type Tag struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"        gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	Color       string    `json:"color"       gorm:"type:varchar(7)"`
	UsageCount  int       `json:"usage_count" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }

// QuestionTag joins questions and tags; one row per distinct pair.
type QuestionTag struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	QuestionID string    `json:"question_id" gorm:"type:char(36);not null;uniqueIndex:uq_question_tag,priority:1"`
	TagID      string    `json:"tag_id"      gorm:"type:char(36);not null;index;uniqueIndex:uq_question_tag,priority:2"`
	CreatedAt  time.Time `json:"created_at"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tag      Tag      `json:"-" gorm:"foreignKey:TagID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for QuestionTag.
func (QuestionTag) TableName() string { return "question_tags" }

// Comment is a short remark on an answer; counted by Answer.CommentCount.
type Comment struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	AnswerID  string    `json:"answer_id"  gorm:"type:char(36);not null;index"`
	AuthorID  string    `json:"author_id"  gorm:"type:char(36);not null;index"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Answer Answer `json:"-" gorm:"foreignKey:AnswerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author User   `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }
