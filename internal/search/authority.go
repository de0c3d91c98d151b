package search

import (
	"net/url"
	"sort"
	"strings"

	"github.com/Keats0206/fundtrack/internal/model"
)

// AuthorityTier ranks how close a news source is to the company itself
type AuthorityTier int

const (
	TierPrimary   AuthorityTier = 1 // Company site, filings, press wires
	TierSecondary AuthorityTier = 2 // Established business press
	TierTertiary  AuthorityTier = 3 // Everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	default:
		return "tertiary"
	}
}

// PrimaryDomains publish first-hand company statements
var PrimaryDomains = []string{
	"sec.gov",
	"businesswire.com",
	"prnewswire.com",
	"globenewswire.com",
}

// AuthorityClassifier classifies news URLs into authority tiers
type AuthorityClassifier struct {
	primary   map[string]bool
	secondary map[string]bool
}

// NewAuthorityClassifier creates a classifier. Domains match themselves and
// their subdomains.
func NewAuthorityClassifier(primary, secondary []string) *AuthorityClassifier {
	a := &AuthorityClassifier{
		primary:   make(map[string]bool, len(primary)),
		secondary: make(map[string]bool, len(secondary)),
	}
	for _, d := range primary {
		if d = normalizeDomain(d); d != "" {
			a.primary[d] = true
		}
	}
	for _, d := range secondary {
		if d = normalizeDomain(d); d != "" {
			a.secondary[d] = true
		}
	}
	return a
}

// DefaultAuthorityClassifier uses PrimaryDomains and TrustedDomains
func DefaultAuthorityClassifier() *AuthorityClassifier {
	return NewAuthorityClassifier(PrimaryDomains, TrustedDomains)
}

// Classify classifies a URL. companyDomains are treated as primary.
func (a *AuthorityClassifier) Classify(rawURL string, companyDomains ...string) AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return TierTertiary
	}
	host := normalizeDomain(parsed.Hostname())

	for _, d := range companyDomains {
		if d = normalizeDomain(d); d != "" && matchesDomain(host, d) {
			return TierPrimary
		}
	}
	if matchesAny(host, a.primary) || strings.HasSuffix(host, ".gov") {
		return TierPrimary
	}
	if matchesAny(host, a.secondary) {
		return TierSecondary
	}
	return TierTertiary
}

// SortByAuthority stably orders items from most to least authoritative
func (a *AuthorityClassifier) SortByAuthority(items []model.NewsItem, companyDomains ...string) {
	tiers := make(map[string]AuthorityTier, len(items))
	tier := func(u string) AuthorityTier {
		t, ok := tiers[u]
		if !ok {
			t = a.Classify(u, companyDomains...)
			tiers[u] = t
		}
		return t
	}
	sort.SliceStable(items, func(i, j int) bool {
		return tier(items[i].URL) < tier(items[j].URL)
	})
}

// CompanyDomain extracts the host of a company website, which may lack a scheme
func CompanyDomain(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	parsed, err := url.Parse(website)
	if err != nil {
		return ""
	}
	return normalizeDomain(parsed.Hostname())
}

func matchesAny(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for d := range domains {
		if matchesDomain(host, d) {
			return true
		}
	}
	return false
}

func matchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func normalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimSuffix(d, ".")
	return strings.TrimPrefix(d, "www.")
}
