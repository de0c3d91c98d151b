package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Keats0206/fundtrack/internal/model"
)

// LinkedInClient searches people through the RapidAPI LinkedIn data API
type LinkedInClient struct {
	apiKey     string
	baseURL    string
	host       string
	httpClient *http.Client
	now        func() time.Time
}

type linkedInProfile struct {
	FullName       string `json:"fullName"`
	Headline       string `json:"headline"`
	Summary        string `json:"summary"`
	ProfilePicture string `json:"profilePicture"`
	Location       string `json:"location"`
	ProfileURL     string `json:"profileURL"`
	Username       string `json:"username"`
}

type linkedInResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Items []linkedInProfile `json:"items"`
	} `json:"data"`
}

// NewLinkedInClient creates a client from the profile and HTTP settings
func NewLinkedInClient(cfg model.ProfilesConfig, httpCfg model.HTTPConfig) (*LinkedInClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("linkedin: %w", ErrMissingAPIKey)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://linkedin-data-api.p.rapidapi.com"
	}
	host := cfg.Host
	if host == "" {
		if u, err := url.Parse(baseURL); err == nil {
			host = u.Host
		}
	}

	return &LinkedInClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		host:       host,
		httpClient: newHTTPClient(cfg.Timeout, httpCfg),
		now:        time.Now,
	}, nil
}

// SearchPeople returns people matching the company and optional role and location
func (c *LinkedInClient) SearchPeople(ctx context.Context, q PeopleQuery) ([]model.Person, error) {
	keywords := strings.TrimSpace(q.Company + " " + q.Role)
	if keywords == "" {
		return nil, fmt.Errorf("search people: company is required")
	}

	params := url.Values{}
	params.Set("keywords", keywords)
	if q.Location != "" {
		params.Set("location", q.Location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search-people?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	body, err := do(c.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("linkedin search: %w", err)
	}

	var resp linkedInResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	now := c.now().UTC()
	people := make([]model.Person, 0, len(resp.Data.Items))
	for _, p := range resp.Data.Items {
		people = append(people, toPerson(p, now))
	}
	return people, nil
}

func toPerson(p linkedInProfile, now time.Time) model.Person {
	snap := ParseHeadline(p.Headline, p.Summary)
	return model.Person{
		ID:              p.ProfileURL,
		Name:            p.FullName,
		Headline:        p.Headline,
		Location:        p.Location,
		ProfileURL:      p.ProfileURL,
		AvatarURL:       p.ProfilePicture,
		UpdatedAt:       now,
		ProfileSnapshot: snap,
	}
}

var (
	headlineCompanyRe = regexp.MustCompile(`(?i)(?:\bat|@)\s+([^|,]+)`)
	headlineSplitRe   = regexp.MustCompile(`(?i)(?:\bat\b|@)`)
	pastCompanyRe     = regexp.MustCompile(`(?i)Past:.*?(?:\bat|@)\s+([^,\n]+)`)
)

// ParseHeadline derives employment fields from a headline and profile summary.
//
//	"President at Max Borges Agency" -> title "President", company "Max Borges Agency"
//	"Co Founder @ Lofty"             -> title "Co Founder", company "Lofty"
//	summary "Past: PEO at Brackett"  -> previous company "Brackett"
//
// Without an employer marker the whole headline is the title.
func ParseHeadline(headline, summary string) model.ProfileSnapshot {
	snap := model.ProfileSnapshot{CurrentTitle: strings.TrimSpace(headline)}

	if m := headlineCompanyRe.FindStringSubmatch(headline); m != nil {
		snap.CurrentCompany = strings.TrimSpace(m[1])
		if title := strings.TrimSpace(headlineSplitRe.Split(headline, 2)[0]); title != "" {
			snap.CurrentTitle = title
		}
	}

	if m := pastCompanyRe.FindStringSubmatch(summary); m != nil {
		snap.PreviousCompany = strings.TrimSpace(m[1])
	}
	return snap
}
