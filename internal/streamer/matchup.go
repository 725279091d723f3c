package streamer

import (
	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// BuildMatchups expands each scheduled game into two team-perspective rows.
// The away row negates the home-perspective spread; implied points are
// derived as total/2 - spread/2 and stay absent whenever either input is
// absent. An absent line is never scored as zero.
func BuildMatchups(games []nfl.RawGame) map[string]*nfl.Matchup {
	matchups := make(map[string]*nfl.Matchup, len(games)*2)
	for _, g := range games {
		home := nfl.ResolveTeam(g.HomeTeam)
		away := nfl.ResolveTeam(g.AwayTeam)
		if home == "" || away == "" {
			continue
		}

		indoor := resolveIndoor(g, home)

		homeMatchup := &nfl.Matchup{
			Week:     g.Week,
			Team:     home,
			Opponent: away,
			IsHome:   true,
			Spread:   g.Spread,
			Total:    g.Total,
			Kickoff:  g.Kickoff,
			Venue:    g.Venue,
			Indoor:   indoor,
		}
		homeMatchup.ImpliedPoints = impliedPoints(g.Total, g.Spread)

		awayMatchup := &nfl.Matchup{
			Week:     g.Week,
			Team:     away,
			Opponent: home,
			IsHome:   false,
			Spread:   negate(g.Spread),
			Total:    g.Total,
			Kickoff:  g.Kickoff,
			Venue:    g.Venue,
			Indoor:   indoor,
		}
		awayMatchup.ImpliedPoints = impliedPoints(g.Total, awayMatchup.Spread)

		matchups[home] = homeMatchup
		matchups[away] = awayMatchup
	}
	return matchups
}

// impliedPoints is the standard book decomposition: a team favored by the
// spread takes the larger share of the total.
func impliedPoints(total, spread *float64) *float64 {
	if total == nil || spread == nil {
		return nil
	}
	v := *total/2 - *spread/2
	return &v
}

func negate(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := -*v
	return &n
}

// resolveIndoor prefers the schedule feed's venue flag and falls back to the
// static dome table.
func resolveIndoor(g nfl.RawGame, home string) bool {
	if g.Indoor != nil {
		return *g.Indoor
	}
	return nfl.IsDomeTeam(home)
}
