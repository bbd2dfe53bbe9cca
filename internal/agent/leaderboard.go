package agent

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/sync/errgroup"

	"ruby-bot/internal/graph"
	"ruby-bot/internal/relationship"
)

// Leaderboard is one snapshot of cross-user relationship standings,
// gathered only when someone asks a "who is your favorite" style
// question. Nil fields mean nobody qualifies yet.
type Leaderboard struct {
	Favorite          *graph.RankedUser
	HighAffinity      *graph.RankedUser
	LowAffinity       *graph.RankedUser
	HighTrust         *graph.RankedUser
	LowTrust          *graph.RankedUser
	HighJealousy      *graph.RankedUser
	NeverJealous      *graph.RankedUser
	MostInsults       *graph.RankedUser
	NeverInsulted     *graph.RankedUser
	MostCompliments   *graph.RankedUser
	NeverComplimented *graph.RankedUser
}

// relationship words that, together with "who", mark a standings question
var leaderboardKeywords = []string{
	"favorite", "favourite", "like", "love", "hate", "trust",
	"jealous", "insult", "compliment", "friend", "enemy", "best", "worst",
}

// WantsLeaderboard is the keyword heuristic that keeps the aggregation
// off the hot path: the text must contain "who" plus at least one
// relationship keyword.
func WantsLeaderboard(text string) bool {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "who") {
		return false
	}
	for _, kw := range leaderboardKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// LeaderboardAggregator resolves ranked cross-user queries.
type LeaderboardAggregator struct {
	store Store
	pick  func(n int) int
}

// NewLeaderboardAggregator creates a leaderboard aggregator
func NewLeaderboardAggregator(store Store) *LeaderboardAggregator {
	return &LeaderboardAggregator{store: store, pick: rand.Intn}
}

// Aggregate gathers every standing. The ranked queries are independent,
// so they run concurrently.
func (l *LeaderboardAggregator) Aggregate(ctx context.Context) (*Leaderboard, error) {
	var lb Leaderboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { lb.Favorite, err = l.favorite(ctx); return })
	g.Go(func() (err error) { lb.HighAffinity, err = l.store.RankRelationships(ctx, graph.PropAffinity, "DESC"); return })
	g.Go(func() (err error) { lb.LowAffinity, err = l.store.RankRelationships(ctx, graph.PropAffinity, "ASC"); return })
	g.Go(func() (err error) { lb.HighTrust, err = l.store.RankRelationships(ctx, graph.PropTrust, "DESC"); return })
	g.Go(func() (err error) { lb.LowTrust, err = l.store.RankRelationships(ctx, graph.PropTrust, "ASC"); return })
	g.Go(func() (err error) { lb.HighJealousy, err = l.store.RankRelationships(ctx, graph.PropJealousy, "DESC"); return })
	g.Go(func() (err error) { lb.MostInsults, err = l.store.RankRelationships(ctx, graph.PropInsults, "DESC"); return })
	g.Go(func() (err error) { lb.MostCompliments, err = l.store.RankRelationships(ctx, graph.PropCompliments, "DESC"); return })
	g.Go(func() (err error) { lb.NeverJealous, err = l.randomZero(ctx, graph.PropJealousy); return })
	g.Go(func() (err error) { lb.NeverInsulted, err = l.randomZero(ctx, graph.PropInsults); return })
	g.Go(func() (err error) { lb.NeverComplimented, err = l.randomZero(ctx, graph.PropCompliments); return })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &lb, nil
}

// favorite prefers an operator-crowned baby over a score-earned favorite.
func (l *LeaderboardAggregator) favorite(ctx context.Context) (*graph.RankedUser, error) {
	if u, err := l.store.FindUserWithRole(ctx, relationship.RoleBaby); err != nil || u != nil {
		return u, err
	}
	return l.store.FindUserWithRole(ctx, relationship.RoleFavorite)
}

// randomZero picks uniformly among users whose counter is exactly zero,
// so the same name is not repeated every time many tie at zero.
func (l *LeaderboardAggregator) randomZero(ctx context.Context, property string) (*graph.RankedUser, error) {
	users, err := l.store.UsersWithZeroCounter(ctx, property)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[l.pick(len(users))], nil
}

// PromptContext renders the standings as prompt lines.
func (lb *Leaderboard) PromptContext() string {
	var b strings.Builder
	writeLine(&b, "Favorite person", lb.Favorite)
	writeLine(&b, "Liked the most", lb.HighAffinity)
	writeLine(&b, "Liked the least", lb.LowAffinity)
	writeLine(&b, "Trusted the most", lb.HighTrust)
	writeLine(&b, "Trusted the least", lb.LowTrust)
	writeLine(&b, "Makes you most jealous", lb.HighJealousy)
	writeLine(&b, "Never made you jealous", lb.NeverJealous)
	writeLine(&b, "Insulted you the most", lb.MostInsults)
	writeLine(&b, "Never insulted you", lb.NeverInsulted)
	writeLine(&b, "Complimented you the most", lb.MostCompliments)
	writeLine(&b, "Never complimented you", lb.NeverComplimented)
	return b.String()
}

func writeLine(b *strings.Builder, label string, u *graph.RankedUser) {
	if u == nil {
		fmt.Fprintf(b, "%s: nobody yet\n", label)
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, u.Name)
}
