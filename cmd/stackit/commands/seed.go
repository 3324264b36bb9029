package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/chiragbiradar/StackIt-odoo/cmd/stackit/output"
	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
	"github.com/chiragbiradar/StackIt-odoo/internal/services"
)

var seedTags = []string{"go", "sql", "gorm", "postgres", "sqlite", "http", "testing", "concurrency"}

type seedOptions struct {
	users     int
	questions int
	seed      int64
	prefix    string
}

type seedCounts struct {
	Users     int `json:"users"`
	Questions int `json:"questions"`
	Answers   int `json:"answers"`
	Votes     int `json:"votes"`
	Comments  int `json:"comments"`
	Accepted  int `json:"accepted"`
}

func (c seedCounts) asMap() map[string]int {
	return map[string]int{
		"users": c.Users, "questions": c.Questions, "answers": c.Answers,
		"votes": c.Votes, "comments": c.Comments, "accepted": c.Accepted,
	}
}

func newSeedCmd(gf *globalFlags) *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the store with a random forum",
		Long: `Generate users, questions, answers, votes, comments and acceptances through
the propagator, so every aggregate is maintained the same way as in production.
The same --seed always produces the same forum shape.

Examples:
  stackit seed --users 20 --questions 50
  stackit seed --seed 7 --prefix demo`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.users < 2 {
				return fmt.Errorf("--users must be at least 2")
			}
			if opts.questions < 0 {
				return fmt.Errorf("--questions must not be negative")
			}
			a, err := openApp(gf)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := repo.AutoMigrate(a.db.WithContext(cmd.Context())); err != nil {
				return err
			}
			counts, err := seedForum(cmd.Context(), a.propagator(), opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if gf.jsonOut {
				return json.NewEncoder(w).Encode(counts)
			}
			output.Section(w, "seeded")
			output.Counts(w, []string{"users", "questions", "answers", "votes", "comments", "accepted"}, counts.asMap())
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.users, "users", 10, "number of users to create")
	f.IntVar(&opts.questions, "questions", 25, "number of questions to create")
	f.Int64Var(&opts.seed, "seed", 1, "random seed")
	f.StringVar(&opts.prefix, "prefix", "user", "username prefix")
	return cmd
}

// seedForum drives every write through p. Authors never vote on their own
// answers and only question authors accept.
func seedForum(ctx context.Context, p *services.Propagator, opts seedOptions) (seedCounts, error) {
	rng := rand.New(rand.NewSource(opts.seed))
	var counts seedCounts

	users := make([]*domain.User, 0, opts.users)
	for i := 0; i < opts.users; i++ {
		name := fmt.Sprintf("%s%03d", opts.prefix, i)
		u, err := repo.CreateUser(ctx, p.DB, name, name+"@example.com", "Seed "+name)
		if err != nil {
			return counts, fmt.Errorf("create user %s: %w", name, err)
		}
		users = append(users, u)
	}
	counts.Users = len(users)

	for i := 0; i < opts.questions; i++ {
		author := users[rng.Intn(len(users))]
		tags := pickTags(rng, 1+rng.Intn(3))
		q, err := p.CreateQuestion(ctx, author.ID,
			fmt.Sprintf("Seed question %d", i),
			fmt.Sprintf("How do I handle case %d?", i), tags)
		if err != nil {
			return counts, err
		}
		counts.Questions++

		var answers []*domain.Answer
		for n := rng.Intn(4); n > 0; n-- {
			responder := users[rng.Intn(len(users))]
			ans, err := p.CreateAnswer(ctx, q.ID, responder.ID, fmt.Sprintf("Try approach %d.", rng.Intn(100)))
			if err != nil {
				return counts, err
			}
			answers = append(answers, ans)
			counts.Answers++

			for _, voter := range users {
				if voter.ID == ans.AuthorID || rng.Intn(3) != 0 {
					continue
				}
				if err := p.CastOrChangeVote(ctx, voter.ID, ans.ID, rng.Intn(4) != 0); err != nil {
					return counts, err
				}
				counts.Votes++
			}
			if rng.Intn(2) == 0 {
				commenter := users[rng.Intn(len(users))]
				if _, err := p.AddComment(ctx, ans.ID, commenter.ID, "Thanks, that helped."); err != nil {
					return counts, err
				}
				counts.Comments++
			}
		}
		if len(answers) > 0 && rng.Intn(2) == 0 {
			pick := answers[rng.Intn(len(answers))]
			if err := p.AcceptAnswer(ctx, q.ID, pick.ID, author.ID); err != nil {
				return counts, err
			}
			counts.Accepted++
		}
	}
	return counts, nil
}

func pickTags(rng *rand.Rand, n int) []string {
	idx := rng.Perm(len(seedTags))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, seedTags[i])
	}
	return out
}
