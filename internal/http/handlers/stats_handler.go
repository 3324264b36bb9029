// Stats and consistency HTTP handlers.
//
//   - GET /users/{id}/stats
//   - GET /questions/{id}/stats
//   - GET /answers/{id}/stats
//   - GET /tags/{id}/stats
//   - GET /consistency?limit=N
//
// All routes are read-only. Stats return the stored aggregates as last
// committed by the propagator; consistency recomputes every aggregate from
// the fact tables and lists the disagreements.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/utils"
)

const (
	defaultMismatchLimit = 100
	maxMismatchLimit     = 1000
)

// StatsReader returns stored aggregate snapshots.
type StatsReader interface {
	UserStats(ctx context.Context, id string) (*domain.UserStats, error)
	QuestionStats(ctx context.Context, id string) (*domain.QuestionStats, error)
	AnswerStats(ctx context.Context, id string) (*domain.AnswerStats, error)
	TagStats(ctx context.Context, id string) (*domain.TagStats, error)
}

// ConsistencyChecker recomputes aggregates and reports mismatches.
type ConsistencyChecker interface {
	Verify(ctx context.Context) ([]domain.Mismatch, error)
}

// Handlers groups the diagnostics endpoints.
type Handlers struct {
	stats   StatsReader
	checker ConsistencyChecker
}

// New binds the handlers to their services.
func New(stats StatsReader, checker ConsistencyChecker) *Handlers {
	return &Handlers{stats: stats, checker: checker}
}

// ConsistencyReport is the body of GET /consistency.
type ConsistencyReport struct {
	Consistent bool              `json:"consistent"`
	Total      int               `json:"total"`
	Truncated  bool              `json:"truncated"`
	Mismatches []domain.Mismatch `json:"mismatches"`
}

// statsHandler adapts one StatsReader method into a gin handler.
func statsHandler[T any](get func(context.Context, string) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := get(c.Request.Context(), c.Param("id"))
		if err != nil {
			failErr(c, err)
			return
		}
		okCached(c, st)
	}
}

// UserStats serves GET /users/:id/stats.
func (h *Handlers) UserStats(c *gin.Context) { statsHandler(h.stats.UserStats)(c) }

// QuestionStats serves GET /questions/:id/stats.
func (h *Handlers) QuestionStats(c *gin.Context) { statsHandler(h.stats.QuestionStats)(c) }

// AnswerStats serves GET /answers/:id/stats.
func (h *Handlers) AnswerStats(c *gin.Context) { statsHandler(h.stats.AnswerStats)(c) }

// TagStats serves GET /tags/:id/stats.
func (h *Handlers) TagStats(c *gin.Context) { statsHandler(h.stats.TagStats)(c) }

// Consistency serves GET /consistency. limit caps the listed mismatches
// (default 100, max 1000); Total always counts all of them.
func (h *Handlers) Consistency(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), defaultMismatchLimit, maxMismatchLimit)

	found, err := h.checker.Verify(c.Request.Context())
	if err != nil {
		status, _, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
			fail(c, status, ErrCodeVerifyFailed, msg)
			return
		}
		failErr(c, err)
		return
	}

	rep := ConsistencyReport{
		Consistent: len(found) == 0,
		Total:      len(found),
		Mismatches: found,
	}
	if rep.Mismatches == nil {
		rep.Mismatches = []domain.Mismatch{}
	}
	if len(found) > limit {
		rep.Mismatches = found[:limit]
		rep.Truncated = true
	}
	c.JSON(http.StatusOK, rep)
}
