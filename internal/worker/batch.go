package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Keats0206/fundtrack/internal/model"
)

// ProfileScorer assesses a single profile snapshot
type ProfileScorer interface {
	Score(p model.ProfileSnapshot) model.StealthAssessment
}

// ScoreJob scores one profile
type ScoreJob struct {
	Index   int
	Profile model.ProfileSnapshot
	Scorer  ProfileScorer
}

// Execute executes the score job
func (j *ScoreJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ScoreResult{Index: j.Index, Error: err}
	}
	return &ScoreResult{
		Index: j.Index,
		Scored: model.ScoredProfile{
			Index:      j.Index,
			Profile:    j.Profile,
			Assessment: j.Scorer.Score(j.Profile),
		},
	}
}

// ScoreResult is the outcome of a ScoreJob
type ScoreResult struct {
	Index  int
	Scored model.ScoredProfile
	Error  error
}

// GetError returns the error from the score result
func (r *ScoreResult) GetError() error {
	return r.Error
}

// BatchScorer scores many profiles concurrently
type BatchScorer struct {
	scorer      ProfileScorer
	concurrency int

	// OnScore, when set, is called once per scored profile
	OnScore func(model.StealthAssessment)
}

// NewBatchScorer creates a new batch scorer
func NewBatchScorer(scorer ProfileScorer, concurrency int) *BatchScorer {
	return &BatchScorer{
		scorer:      scorer,
		concurrency: concurrency,
	}
}

// ScoreProfiles scores every profile and returns the results in input order.
// Profiles not scored before ctx is cancelled are omitted.
func (b *BatchScorer) ScoreProfiles(ctx context.Context, profiles []model.ProfileSnapshot) ([]model.ScoredProfile, error) {
	if len(profiles) == 0 {
		return []model.ScoredProfile{}, nil
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for i, p := range profiles {
		pool.Submit(&ScoreJob{Index: i, Profile: p, Scorer: b.scorer})
	}

	results := pool.Wait()

	scored := make([]model.ScoredProfile, 0, len(results))
	for _, r := range results {
		sr := r.(*ScoreResult)
		if sr.Error != nil {
			continue
		}
		if b.OnScore != nil {
			b.OnScore(sr.Scored.Assessment)
		}
		scored = append(scored, sr.Scored)
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Index < scored[j].Index })

	if err := ctx.Err(); err != nil {
		return scored, err
	}
	return scored, nil
}

// ScorePeople is ScoreProfiles over the snapshots of people
func (b *BatchScorer) ScorePeople(ctx context.Context, people []model.Person) ([]model.ScoredProfile, error) {
	snapshots := make([]model.ProfileSnapshot, len(people))
	for i, p := range people {
		snapshots[i] = p.ProfileSnapshot
	}
	return b.ScoreProfiles(ctx, snapshots)
}

// ReadPeopleFile reads people from a JSON array file or from JSON lines.
// In JSON-lines files blank lines and lines starting with '#' are skipped.
// People with the same non-empty profile URL are kept once.
func ReadPeopleFile(filePath string) ([]model.Person, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var people []model.Person
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &people); err != nil {
			return nil, fmt.Errorf("decode people: %w", err)
		}
	} else {
		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 64*1024), 1<<20)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			var p model.Person
			if err := json.Unmarshal([]byte(line), &p); err != nil {
				return nil, fmt.Errorf("decode line %d: %w", lineNo, err)
			}
			people = append(people, p)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
	}

	return dedupePeople(people), nil
}

func dedupePeople(people []model.Person) []model.Person {
	seen := make(map[string]bool)
	out := make([]model.Person, 0, len(people))
	for _, p := range people {
		if p.ProfileURL != "" {
			if seen[p.ProfileURL] {
				continue
			}
			seen[p.ProfileURL] = true
		}
		out = append(out, p)
	}
	return out
}
