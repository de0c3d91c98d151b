package score

import (
	"sort"

	"github.com/Keats0206/fundtrack/internal/model"
)

// ScoreAll scores profiles and keeps their input positions
func (s *Scorer) ScoreAll(profiles []model.ProfileSnapshot) []model.ScoredProfile {
	scored := make([]model.ScoredProfile, len(profiles))
	for i, p := range profiles {
		scored[i] = model.ScoredProfile{
			Index:      i,
			Profile:    p,
			Assessment: s.Score(p),
		}
	}
	return scored
}

// RankByScore returns profiles ordered by descending score.
// Profiles with equal scores keep their input order.
func (s *Scorer) RankByScore(profiles []model.ProfileSnapshot) []model.ScoredProfile {
	return SortByScore(s.ScoreAll(profiles))
}

// FilterCandidates returns only the candidate profiles, in input order
func (s *Scorer) FilterCandidates(profiles []model.ProfileSnapshot) []model.ScoredProfile {
	return Candidates(s.ScoreAll(profiles))
}

// SortByScore stably sorts already-scored profiles by descending score.
// The input slice is not modified.
func SortByScore(scored []model.ScoredProfile) []model.ScoredProfile {
	out := make([]model.ScoredProfile, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Assessment.Score > out[j].Assessment.Score
	})
	return out
}

// Candidates keeps the candidate entries of scored, in order
func Candidates(scored []model.ScoredProfile) []model.ScoredProfile {
	out := make([]model.ScoredProfile, 0, len(scored))
	for _, sp := range scored {
		if sp.Assessment.IsCandidate {
			out = append(out, sp)
		}
	}
	return out
}
