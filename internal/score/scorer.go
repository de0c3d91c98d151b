package score

import (
	"fmt"
	"strings"

	"github.com/Keats0206/fundtrack/internal/lexicon"
	"github.com/Keats0206/fundtrack/internal/model"
)

// Rule weights
const (
	pointsStealthTitle    = 15
	pointsStealthCompany  = 20
	pointsLeftNotable     = 10
	pointsFounderShift    = 25
	pointsVagueTitle      = 15
	pointsSeniorDeparture = 20

	maxScore = 100

	// CandidateMinScore and CandidateMinIndicators define a stealth candidate
	CandidateMinScore      = 30
	CandidateMinIndicators = 2
)

// Scorer computes stealth assessments from profile snapshots
type Scorer struct {
	stealthTitles  []string
	stealthCompany []string
	notable        []string
	founderTitles  []string
	employeeTitles []string
	vagueTitles    []string
	seniorTitles   []string
}

// NewScorer creates a scorer bound to lex
func NewScorer(lex *lexicon.Lexicon) *Scorer {
	return &Scorer{
		stealthTitles:  lex.StealthTitleKeywords(),
		stealthCompany: lex.StealthCompanyKeywords(),
		notable:        lex.NotableCompanies(),
		founderTitles:  lex.FounderTitleKeywords(),
		employeeTitles: lex.EmployeeTitleKeywords(),
		vagueTitles:    lex.VagueTitleKeywords(),
		seniorTitles:   lex.SeniorTitleKeywords(),
	}
}

// Score computes the stealth assessment for p.
// Matching is case-insensitive substring matching; missing fields never match.
func (s *Scorer) Score(p model.ProfileSnapshot) model.StealthAssessment {
	currentTitle := strings.ToLower(p.CurrentTitle)
	currentCompany := strings.ToLower(p.CurrentCompany)
	previousTitle := strings.ToLower(p.PreviousTitle)
	previousCompany := strings.ToLower(p.PreviousCompany)

	var (
		total      int
		indicators []string
		signals    []model.Signal
	)
	record := func(points int, sig model.Signal) {
		total += points
		indicators = append(indicators, sig.Description)
		if sig.Data == nil {
			sig.Data = map[string]interface{}{}
		}
		sig.Data["points"] = points
		signals = append(signals, sig)
	}

	// 1. Stealth keywords in current title
	for _, kw := range s.stealthTitles {
		if strings.Contains(currentTitle, kw) {
			record(pointsStealthTitle, model.Signal{
				Type:        model.SignalStealthTitle,
				Severity:    model.SeverityInfo,
				Description: fmt.Sprintf("Title contains %q", kw),
				Data:        map[string]interface{}{"keyword": kw},
			})
		}
	}

	// 2. Stealth keywords in current company
	for _, kw := range s.stealthCompany {
		if strings.Contains(currentCompany, kw) {
			record(pointsStealthCompany, model.Signal{
				Type:        model.SignalStealthCompany,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("Company listed as %q", kw),
				Data:        map[string]interface{}{"keyword": kw},
			})
		}
	}

	// 3. Left a notable company
	notable, leftNotable := firstMatch(previousCompany, s.notable)
	if leftNotable {
		record(pointsLeftNotable, model.Signal{
			Type:        model.SignalLeftNotable,
			Severity:    model.SeverityInfo,
			Description: "Recently left " + p.PreviousCompany,
			Data:        map[string]interface{}{"keyword": notable},
		})
	}

	// 4. Employee title to founder title
	founderKw, titleIndicatesFounder := firstMatch(currentTitle, s.founderTitles)
	employeeKw, wasEmployee := firstMatch(previousTitle, s.employeeTitles)
	if titleIndicatesFounder && wasEmployee {
		record(pointsFounderShift, model.Signal{
			Type:        model.SignalFounderShift,
			Severity:    model.SeverityWarning,
			Description: "Changed from employee role to founder",
			Data: map[string]interface{}{
				"founder_keyword":  founderKw,
				"employee_keyword": employeeKw,
			},
		})
	}

	// 5. Vague current title
	if kw, hasVagueTitle := firstMatch(currentTitle, s.vagueTitles); hasVagueTitle {
		record(pointsVagueTitle, model.Signal{
			Type:        model.SignalVagueTitle,
			Severity:    model.SeverityInfo,
			Description: "Vague new title suggests stealth mode",
			Data:        map[string]interface{}{"keyword": kw},
		})
	}

	// 6. Senior leader from a notable company, only on top of another indicator
	seniorKw, wasSenior := firstMatch(previousTitle, s.seniorTitles)
	if wasSenior && leftNotable && len(indicators) > 0 {
		record(pointsSeniorDeparture, model.Signal{
			Type:        model.SignalSeniorDeparture,
			Severity:    model.SeverityCritical,
			Description: "Senior leader from top company now in stealth",
			Data: map[string]interface{}{
				"senior_keyword":  seniorKw,
				"notable_company": notable,
			},
		})
	}

	score := clamp(total, 0, maxScore)
	indicators = dedupe(indicators)

	return model.StealthAssessment{
		Score:       score,
		Indicators:  indicators,
		IsCandidate: IsCandidate(score, len(indicators)),
		Signals:     signals,
	}
}

// IsCandidate reports whether a score and indicator count cross the candidate threshold
func IsCandidate(score, indicatorCount int) bool {
	return score >= CandidateMinScore && indicatorCount >= CandidateMinIndicators
}

// firstMatch returns the first keyword contained in text
func firstMatch(text string, keywords []string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// dedupe removes repeated strings keeping first-seen order
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
