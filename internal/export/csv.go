// Package export writes scored people as CSV for spreadsheets and CRM import.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Keats0206/fundtrack/internal/model"
)

// Record is a person with their stealth assessment
type Record struct {
	Person     model.Person            `json:"person"`
	Assessment model.StealthAssessment `json:"assessment"`
}

// Records pairs scored profiles back with the people they came from.
// Scored entries whose index is out of range are ignored.
func Records(people []model.Person, scored []model.ScoredProfile) []Record {
	out := make([]Record, 0, len(scored))
	for _, s := range scored {
		if s.Index < 0 || s.Index >= len(people) {
			continue
		}
		out = append(out, Record{Person: people[s.Index], Assessment: s.Assessment})
	}
	return out
}

var stealthHeader = []string{
	"Name",
	"Current Title",
	"Current Company",
	"Previous Title",
	"Previous Company",
	"Location",
	"LinkedIn URL",
	"Stealth Score",
	"Stealth Indicators",
	"Last Updated",
}

// WriteCSV writes one row per record with the stealth verdict
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stealthHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		p := r.Person
		row := []string{
			p.Name,
			p.CurrentTitle,
			p.CurrentCompany,
			p.PreviousTitle,
			p.PreviousCompany,
			p.Location,
			p.ProfileURL,
			fmt.Sprintf("%d", r.Assessment.Score),
			strings.Join(r.Assessment.Indicators, "; "),
			lastUpdated(p),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", p.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var apolloHeader = []string{"First Name", "Last Name", "Title", "Company", "LinkedIn URL", "Location"}

// WriteApolloCSV writes records in the Apollo contact import layout
func WriteApolloCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(apolloHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		p := r.Person
		first, last := SplitName(p.Name)
		row := []string{first, last, p.CurrentTitle, p.CurrentCompany, p.ProfileURL, p.Location}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", p.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SplitName splits a display name into first name and the remainder
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

func lastUpdated(p model.Person) string {
	if p.UpdatedAt.IsZero() {
		return ""
	}
	return p.UpdatedAt.Format("2006-01-02")
}
