package score

import (
	"fmt"
	"testing"

	"github.com/Keats0206/fundtrack/internal/lexicon"
	"github.com/Keats0206/fundtrack/internal/model"
)

func newTestScorer() *Scorer {
	return NewScorer(lexicon.Default())
}

func TestScorer_StealthFounderScenario(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.Score(model.ProfileSnapshot{
		CurrentTitle:    "Founder, Building something new",
		CurrentCompany:  "Stealth",
		PreviousTitle:   "VP Engineering",
		PreviousCompany: "Coinbase",
	})

	if result.Score != 100 {
		t.Errorf("Expected score clamped to 100, got %d", result.Score)
	}
	if !result.IsCandidate {
		t.Error("Expected profile to be a candidate")
	}

	expected := []string{
		`Title contains "building"`,
		`Title contains "founder"`,
		`Title contains "something new"`,
		`Company listed as "stealth"`,
		"Recently left Coinbase",
		"Changed from employee role to founder",
		"Vague new title suggests stealth mode",
		"Senior leader from top company now in stealth",
	}
	if len(result.Indicators) != len(expected) {
		t.Fatalf("Expected %d indicators, got %d: %v", len(expected), len(result.Indicators), result.Indicators)
	}
	for i, want := range expected {
		if result.Indicators[i] != want {
			t.Errorf("Indicator %d: expected %q, got %q", i, want, result.Indicators[i])
		}
	}

	// Raw points before the clamp are visible in the signal breakdown
	raw := 0
	for _, sig := range result.Signals {
		raw += sig.Data["points"].(int)
	}
	if raw != 135 {
		t.Errorf("Expected raw points 135, got %d", raw)
	}
}

func TestScorer_EmptyProfile(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.Score(model.ProfileSnapshot{})

	if result.Score != 0 {
		t.Errorf("Expected score 0, got %d", result.Score)
	}
	if len(result.Indicators) != 0 {
		t.Errorf("Expected no indicators, got %v", result.Indicators)
	}
	if result.IsCandidate {
		t.Error("Empty profile must not be a candidate")
	}
}

func TestScorer_SubstringMatching(t *testing.T) {
	scorer := newTestScorer()

	// "startup-consulting" matches both keywords independently
	result := scorer.Score(model.ProfileSnapshot{CurrentTitle: "Startup-Consulting Lead"})

	if result.Score != 30 {
		t.Errorf("Expected score 30, got %d", result.Score)
	}
	if !result.IsCandidate {
		t.Error("Expected two substring matches to make a candidate")
	}
}

func TestScorer_CaseInsensitive(t *testing.T) {
	scorer := newTestScorer()

	lower := scorer.Score(model.ProfileSnapshot{CurrentTitle: "stealth", CurrentCompany: "stealth mode"})
	upper := scorer.Score(model.ProfileSnapshot{CurrentTitle: "STEALTH", CurrentCompany: "Stealth Mode"})

	if lower.Score != upper.Score {
		t.Errorf("Expected equal scores, got %d and %d", lower.Score, upper.Score)
	}
}

func TestScorer_SingleIndicatorNotCandidate(t *testing.T) {
	scorer := newTestScorer()

	// Company matches "stealth" and "stealth startup": two indicators, 40 points
	two := scorer.Score(model.ProfileSnapshot{CurrentCompany: "Stealth Startup"})
	if two.Score != 40 || !two.IsCandidate {
		t.Errorf("Expected 40 and candidate, got %d %v", two.Score, two.IsCandidate)
	}

	// One indicator is never enough regardless of score
	one := scorer.Score(model.ProfileSnapshot{CurrentCompany: "Confidential"})
	if one.Score != 20 || one.IsCandidate {
		t.Errorf("Expected 20 and not candidate, got %d %v", one.Score, one.IsCandidate)
	}
}

func TestScorer_FounderShiftRequiresBoth(t *testing.T) {
	scorer := newTestScorer()

	noPrevious := scorer.Score(model.ProfileSnapshot{CurrentTitle: "CEO"})
	for _, ind := range noPrevious.Indicators {
		if ind == "Changed from employee role to founder" {
			t.Error("Founder shift must require an employee previous title")
		}
	}

	shift := scorer.Score(model.ProfileSnapshot{CurrentTitle: "CEO", PreviousTitle: "Product Manager"})
	if shift.Score != 25 {
		t.Errorf("Expected 25 points for founder shift, got %d", shift.Score)
	}
}

func TestScorer_LeftNotableUsesRawCompany(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.Score(model.ProfileSnapshot{PreviousCompany: "Stripe, Inc."})

	if len(result.Indicators) != 1 || result.Indicators[0] != "Recently left Stripe, Inc." {
		t.Errorf("Unexpected indicators: %v", result.Indicators)
	}
	if result.Score != 10 {
		t.Errorf("Expected 10, got %d", result.Score)
	}
}

func TestScorer_SeniorBonusNeedsPriorIndicator(t *testing.T) {
	scorer := newTestScorer()

	// Senior title at a non-notable company: no bonus
	result := scorer.Score(model.ProfileSnapshot{PreviousTitle: "Director of Sales", PreviousCompany: "Acme"})
	if result.Score != 0 {
		t.Errorf("Expected 0, got %d", result.Score)
	}

	// The notable departure itself is the prior indicator
	result = scorer.Score(model.ProfileSnapshot{
		CurrentTitle:    "Account Executive",
		CurrentCompany:  "Acme",
		PreviousTitle:   "VP Sales",
		PreviousCompany: "Google",
	})
	if result.Score != 30 {
		t.Errorf("Expected 30, got %d", result.Score)
	}
	if result.Indicators[len(result.Indicators)-1] != "Senior leader from top company now in stealth" {
		t.Errorf("Expected senior bonus last, got %v", result.Indicators)
	}
}

func TestScorer_Invariants(t *testing.T) {
	scorer := newTestScorer()

	titles := []string{"", "Founder", "Stealth founder exploring", "Building in AI", "Advisor & Consulting", "Engineer"}
	companies := []string{"", "Stealth", "Stealth Mode Startup", "Freelance", "Acme"}
	prevTitles := []string{"", "VP Eng", "Staff Engineer", "Head of Growth", "Intern"}
	prevCompanies := []string{"", "Google", "Meta", "Tiny Co"}

	for _, ct := range titles {
		for _, cc := range companies {
			for _, pt := range prevTitles {
				for _, pc := range prevCompanies {
					p := model.ProfileSnapshot{CurrentTitle: ct, CurrentCompany: cc, PreviousTitle: pt, PreviousCompany: pc}
					r := scorer.Score(p)

					if r.Score < 0 || r.Score > 100 {
						t.Fatalf("%+v: score out of range: %d", p, r.Score)
					}
					if r.IsCandidate != (r.Score >= 30 && len(r.Indicators) >= 2) {
						t.Fatalf("%+v: candidate flag inconsistent: %+v", p, r)
					}
					seen := make(map[string]bool)
					for _, ind := range r.Indicators {
						if seen[ind] {
							t.Fatalf("%+v: duplicate indicator %q", p, ind)
						}
						seen[ind] = true
					}
				}
			}
		}
	}
}

func TestScorer_CustomLexicon(t *testing.T) {
	lex, err := lexicon.Parse([]byte("stealth_title_keywords: [tinkering]\nnotable_companies: [databricks]"))
	if err != nil {
		t.Fatalf("Failed to parse lexicon: %v", err)
	}
	scorer := NewScorer(lex)

	result := scorer.Score(model.ProfileSnapshot{CurrentTitle: "Tinkering", PreviousCompany: "Databricks"})
	if result.Score != 25 {
		t.Errorf("Expected 25, got %d", result.Score)
	}

	result = scorer.Score(model.ProfileSnapshot{PreviousCompany: "Coinbase"})
	if result.Score != 0 {
		t.Errorf("Expected default notable list to be replaced, got %d", result.Score)
	}
}

func TestRankByScore_StableTies(t *testing.T) {
	scorer := newTestScorer()

	profiles := []model.ProfileSnapshot{
		{CurrentTitle: "Engineer"},                          // 0
		{CurrentCompany: "Confidential"},                    // 20
		{CurrentTitle: "Engineer", PreviousTitle: "Intern"}, // 0
		{CurrentCompany: "Freelance"},                       // 20
		{CurrentCompany: "Stealth Startup"},                 // 40
	}

	ranked := scorer.RankByScore(profiles)

	var order []int
	for _, sp := range ranked {
		order = append(order, sp.Index)
	}
	want := []int{4, 1, 3, 0, 2}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("Expected order %v, got %v", want, order)
	}
}

func TestFilterCandidates_InputOrder(t *testing.T) {
	scorer := newTestScorer()

	profiles := []model.ProfileSnapshot{
		{CurrentCompany: "Stealth Startup"},
		{CurrentTitle: "Engineer"},
		{CurrentTitle: "Startup-Consulting"},
	}

	candidates := scorer.FilterCandidates(profiles)
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Index != 0 || candidates[1].Index != 2 {
		t.Errorf("Expected indices 0 and 2, got %d and %d", candidates[0].Index, candidates[1].Index)
	}
}
