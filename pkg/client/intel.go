package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	inteltypes "github.com/openintel/casegraph/pkg/types/intel"
)

// IntelClient calls the intelligence endpoints.
type IntelClient struct {
	client *Client
}

// RelatedCasesOptions are the optional query parameters for RelatedCases.
// Zero values are omitted and the server applies its defaults.
type RelatedCasesOptions struct {
	RadiusKM  float64
	DaysRange int
	Limit     int
}

// RelatedCases ranks cases correlated with the given case by distance,
// time, shared tags and shared suspects.
func (ic *IntelClient) RelatedCases(ctx context.Context, caseID string, opts RelatedCasesOptions) (*inteltypes.RelatedCasesResult, error) {
	if caseID == "" {
		return nil, fmt.Errorf("casegraph: caseID is required")
	}

	query := url.Values{}
	if opts.RadiusKM != 0 {
		query.Set("radius_km", strconv.FormatFloat(opts.RadiusKM, 'f', -1, 64))
	}
	if opts.DaysRange != 0 {
		query.Set("days_range", strconv.Itoa(opts.DaysRange))
	}
	if opts.Limit != 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var result inteltypes.RelatedCasesResult
	path := fmt.Sprintf("/api/v1/cases/%s/related", url.PathEscape(caseID))
	if err := ic.client.get(ctx, path, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RepeatOffendersOptions filter the repeat-offender report.
type RepeatOffendersOptions struct {
	Tags     []string
	From     *time.Time
	To       *time.Time
	MinCases int
}

// RepeatOffenders lists persons linked to at least the minimum number of
// distinct cases in the window.
func (ic *IntelClient) RepeatOffenders(ctx context.Context, opts RepeatOffendersOptions) (*inteltypes.RepeatOffendersResult, error) {
	query := url.Values{}
	if len(opts.Tags) > 0 {
		query.Set("tags", strings.Join(opts.Tags, ","))
	}
	if opts.From != nil {
		query.Set("from_date", opts.From.Format(time.RFC3339))
	}
	if opts.To != nil {
		query.Set("to_date", opts.To.Format(time.RFC3339))
	}
	if opts.MinCases != 0 {
		query.Set("min_cases", strconv.Itoa(opts.MinCases))
	}

	var result inteltypes.RepeatOffendersResult
	if err := ic.client.get(ctx, "/api/v1/offenders/repeat", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PatternCorrelationOptions parameterise pattern analysis. An empty CaseID
// analyses the whole corpus.
type PatternCorrelationOptions struct {
	CaseID        string
	MinOccurrence int
}

// PatternCorrelation reports recurring tag combinations and suspect
// involvement across cases.
func (ic *IntelClient) PatternCorrelation(ctx context.Context, opts PatternCorrelationOptions) (*inteltypes.PatternCorrelationResult, error) {
	query := url.Values{}
	if opts.CaseID != "" {
		query.Set("case_id", opts.CaseID)
	}
	if opts.MinOccurrence != 0 {
		query.Set("min_occurrence", strconv.Itoa(opts.MinOccurrence))
	}

	var result inteltypes.PatternCorrelationResult
	if err := ic.client.get(ctx, "/api/v1/patterns/correlation", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BehavioralSimilar ranks cases by behavioral fingerprint similarity with
// the given case.
func (ic *IntelClient) BehavioralSimilar(ctx context.Context, caseID string, limit int) (*inteltypes.BehaviorSimilarityResult, error) {
	if caseID == "" {
		return nil, fmt.Errorf("casegraph: caseID is required")
	}

	query := url.Values{}
	if limit != 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var result inteltypes.BehaviorSimilarityResult
	path := fmt.Sprintf("/api/v1/cases/%s/behavioral-similar", url.PathEscape(caseID))
	if err := ic.client.get(ctx, path, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RiskScore assesses a person's composite risk.
func (ic *IntelClient) RiskScore(ctx context.Context, personID string) (*inteltypes.RiskScoreResult, error) {
	if personID == "" {
		return nil, fmt.Errorf("casegraph: personID is required")
	}

	var result inteltypes.RiskScoreResult
	path := fmt.Sprintf("/api/v1/persons/%s/risk-score", url.PathEscape(personID))
	if err := ic.client.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
