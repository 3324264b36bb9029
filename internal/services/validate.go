package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check validates a tagged input struct and converts the first failure into
// a ValidationError.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return &ValidationError{Field: strings.ToLower(fe.Field()), Reason: reason}
	}
	return &ValidationError{Field: "input", Reason: err.Error()}
}

// NormalizeTagName trims surrounding space and applies Unicode NFC so that
// visually identical names map to the same row. Case is preserved: "Go" and
// "go" are different tags.
func NormalizeTagName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

type voteInput struct {
	UserID   string `validate:"required"`
	AnswerID string `validate:"required"`
}

type answerInput struct {
	QuestionID string `validate:"required"`
	AuthorID   string `validate:"required"`
	Content    string `validate:"required"`
}

type acceptInput struct {
	QuestionID  string `validate:"required"`
	AnswerID    string `validate:"required"`
	RequesterID string `validate:"required"`
}

// Limits mirror the column widths in the domain models.
type tagInput struct {
	QuestionID string `validate:"required"`
	Name       string `validate:"required,max=50"`
}

type tagNameInput struct {
	Name string `validate:"required,max=50"`
}

type questionInput struct {
	AuthorID    string `validate:"required"`
	Title       string `validate:"required,max=200"`
	Description string `validate:"required"`
}

type commentInput struct {
	AnswerID string `validate:"required"`
	AuthorID string `validate:"required"`
	Content  string `validate:"required"`
}

type ownedQuestionInput struct {
	QuestionID  string `validate:"required"`
	RequesterID string `validate:"required"`
}

type answerRefInput struct {
	AnswerID string `validate:"required"`
}

type ownedCommentInput struct {
	CommentID   string `validate:"required"`
	RequesterID string `validate:"required"`
}
