package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kodell/finchat/internal/logger"
)

// Per-operation result caps. Exceeding a cap is not an error; the limit
// is silently clamped to bound response size.
const (
	searchSeriesCap  = 1000
	observationsCap  = 1000
	tagsCap          = 1000
	relatedTagsCap   = 1000
	seriesUpdatesCap = 100
	releaseSeriesCap = 1000
	releaseDatesCap  = 10000
	vintageDatesCap  = 10000
)

// missingValueSentinel marks absent observations in FRED responses.
// It must never reach a normalized record.
const missingValueSentinel = "."

// SeriesMeta describes one FRED series
type SeriesMeta struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Frequency          string `json:"frequency"`
	Units              string `json:"units"`
	SeasonalAdjustment string `json:"seasonal_adjustment,omitempty"`
	LastUpdated        string `json:"last_updated"`
	ObservationStart   string `json:"observation_start,omitempty"`
	ObservationEnd     string `json:"observation_end,omitempty"`
	Popularity         int    `json:"popularity,omitempty"`
}

// SeriesSearchResult is a normalized series search response
type SeriesSearchResult struct {
	SearchText  string       `json:"search_text"`
	SeriesCount int          `json:"series_count"`
	Series      []SeriesMeta `json:"series"`
}

// SeriesList is a normalized list of series (updates, release series)
type SeriesList struct {
	ReleaseID   int          `json:"release_id,omitempty"`
	SeriesCount int          `json:"series_count"`
	Series      []SeriesMeta `json:"series"`
}

// Category is one node of the FRED category tree
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent_id"`
}

// CategoryList holds the children of one category
type CategoryList struct {
	CategoryID    int        `json:"category_id"`
	CategoryCount int        `json:"category_count"`
	Categories    []Category `json:"categories"`
}

// Observation is one dated numeric value of a series
type Observation struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ObservationSet is a normalized series observation response. Missing
// observations are filtered out, never reported as sentinel values.
type ObservationSet struct {
	SeriesID          string        `json:"series_id"`
	Units             string        `json:"units,omitempty"`
	Frequency         string        `json:"frequency,omitempty"`
	ObservationsCount int           `json:"observations_count"`
	Observations      []Observation `json:"observations"`
}

// Tag is one FRED series tag
type Tag struct {
	Name        string `json:"name"`
	GroupID     string `json:"group_id"`
	SeriesCount int    `json:"series_count"`
	Popularity  int    `json:"popularity"`
}

// TagList is a normalized tag search response
type TagList struct {
	SearchText string `json:"search_text"`
	FilterTags string `json:"filter_tags,omitempty"`
	TagsCount  int    `json:"tags_count"`
	Tags       []Tag  `json:"tags"`
}

// ReleaseInfo describes one FRED release
type ReleaseInfo struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PressRelease bool   `json:"press_release"`
	Link         string `json:"link"`
}

// ReleaseDates lists the published dates of a release, most recent first
type ReleaseDates struct {
	ReleaseID    int      `json:"release_id"`
	DatesCount   int      `json:"dates_count"`
	ReleaseDates []string `json:"release_dates"`
}

// VintageDates lists the revision vintages of a series, most recent first
type VintageDates struct {
	SeriesID      string   `json:"series_id"`
	VintagesCount int      `json:"vintages_count"`
	Dates         []string `json:"vintage_dates"`
}

// FRED fetches economic data from the St. Louis Fed API. Every
// operation requires an API key and checks it before any network call.
type FRED struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

// NewFRED creates a FRED adapter
func NewFRED(baseURL, apiKey, userAgent string, timeout time.Duration) *FRED {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "FinChat/0.1"
	}
	return &FRED{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    strings.TrimSpace(apiKey),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

type fredSeries struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Frequency          string `json:"frequency"`
	Units              string `json:"units"`
	SeasonalAdjustment string `json:"seasonal_adjustment"`
	LastUpdated        string `json:"last_updated"`
	ObservationStart   string `json:"observation_start"`
	ObservationEnd     string `json:"observation_end"`
	Popularity         int    `json:"popularity"`
}

func (s fredSeries) toMeta() SeriesMeta {
	return SeriesMeta{
		ID:                 s.ID,
		Title:              s.Title,
		Frequency:          s.Frequency,
		Units:              s.Units,
		SeasonalAdjustment: s.SeasonalAdjustment,
		LastUpdated:        s.LastUpdated,
		ObservationStart:   s.ObservationStart,
		ObservationEnd:     s.ObservationEnd,
		Popularity:         s.Popularity,
	}
}

// SearchSeries searches for series matching free text
func (p *FRED) SearchSeries(ctx context.Context, text string, limit int) (*SeriesSearchResult, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("searching FRED series: %q", text)

	query := url.Values{}
	query.Set("search_text", text)
	query.Set("limit", strconv.Itoa(clampLimit(limit, 20, searchSeriesCap)))

	var resp struct {
		Count   int          `json:"count"`
		Seriess []fredSeries `json:"seriess"`
	}
	if err := p.getJSON(ctx, "/fred/series/search", query, &resp); err != nil {
		return nil, err
	}

	result := &SeriesSearchResult{SearchText: text, SeriesCount: len(resp.Seriess)}
	for _, s := range resp.Seriess {
		result.Series = append(result.Series, s.toMeta())
	}
	return result, nil
}

// SeriesInfo fetches the metadata of one series
func (p *FRED) SeriesInfo(ctx context.Context, seriesID string) (*SeriesMeta, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("fetching FRED series info: %s", seriesID)

	query := url.Values{}
	query.Set("series_id", seriesID)

	var resp struct {
		Seriess []fredSeries `json:"seriess"`
	}
	if err := p.getJSON(ctx, "/fred/series", query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Seriess) == 0 {
		return nil, NotFoundf("series '%s' not found", seriesID)
	}
	meta := resp.Seriess[0].toMeta()
	return &meta, nil
}

// CategoryChildren lists the child categories of a category.
// Category 0 is the root of the tree.
func (p *FRED) CategoryChildren(ctx context.Context, categoryID int) (*CategoryList, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("browsing FRED category %d", categoryID)

	query := url.Values{}
	query.Set("category_id", strconv.Itoa(categoryID))

	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := p.getJSON(ctx, "/fred/category/children", query, &resp); err != nil {
		return nil, err
	}

	return &CategoryList{
		CategoryID:    categoryID,
		CategoryCount: len(resp.Categories),
		Categories:    resp.Categories,
	}, nil
}

// Observations fetches the observations of a series. Units and
// frequency transforms are forwarded upstream when set. Observations
// with the missing-value sentinel are dropped.
func (p *FRED) Observations(ctx context.Context, seriesID string, limit int, units, frequency string) (*ObservationSet, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("fetching FRED observations: %s", seriesID)

	query := url.Values{}
	query.Set("series_id", seriesID)
	query.Set("limit", strconv.Itoa(clampLimit(limit, 100, observationsCap)))
	query.Set("sort_order", "desc")
	if units != "" {
		query.Set("units", units)
	}
	if frequency != "" {
		query.Set("frequency", frequency)
	}

	var resp struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := p.getJSON(ctx, "/fred/series/observations", query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Observations) == 0 {
		return nil, NotFoundf("no observations available for '%s'", seriesID)
	}

	result := &ObservationSet{SeriesID: seriesID, Units: units, Frequency: frequency}
	for _, obs := range resp.Observations {
		if obs.Value == missingValueSentinel || strings.TrimSpace(obs.Value) == "" {
			continue
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		result.Observations = append(result.Observations, Observation{Date: obs.Date, Value: value})
	}
	result.ObservationsCount = len(result.Observations)
	return result, nil
}

// SearchTags finds the tags attached to a series search
func (p *FRED) SearchTags(ctx context.Context, text string, limit int) (*TagList, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("searching FRED tags: %q", text)

	query := url.Values{}
	query.Set("series_search_text", text)
	query.Set("limit", strconv.Itoa(clampLimit(limit, 100, tagsCap)))

	var resp struct {
		Tags []Tag `json:"tags"`
	}
	if err := p.getJSON(ctx, "/fred/series/search/tags", query, &resp); err != nil {
		return nil, err
	}

	return &TagList{SearchText: text, TagsCount: len(resp.Tags), Tags: resp.Tags}, nil
}

// SearchRelatedTags finds tags related to a series search, narrowed by
// the comma-separated filter tags
func (p *FRED) SearchRelatedTags(ctx context.Context, text, filterTags string, limit int) (*TagList, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("searching FRED related tags: %q filtered by %q", text, filterTags)

	query := url.Values{}
	query.Set("series_search_text", text)
	query.Set("tag_names", filterTags)
	query.Set("limit", strconv.Itoa(clampLimit(limit, 100, relatedTagsCap)))

	var resp struct {
		Tags []Tag `json:"tags"`
	}
	if err := p.getJSON(ctx, "/fred/series/search/related_tags", query, &resp); err != nil {
		return nil, err
	}

	return &TagList{SearchText: text, FilterTags: filterTags, TagsCount: len(resp.Tags), Tags: resp.Tags}, nil
}

// SeriesUpdates lists recently updated series
func (p *FRED) SeriesUpdates(ctx context.Context, limit int) (*SeriesList, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("fetching FRED series updates")

	query := url.Values{}
	query.Set("limit", strconv.Itoa(clampLimit(limit, 50, seriesUpdatesCap)))

	var resp struct {
		Seriess []fredSeries `json:"seriess"`
	}
	if err := p.getJSON(ctx, "/fred/series/updates", query, &resp); err != nil {
		return nil, err
	}

	result := &SeriesList{SeriesCount: len(resp.Seriess)}
	for _, s := range resp.Seriess {
		result.Series = append(result.Series, s.toMeta())
	}
	return result, nil
}

// ReleaseInfo fetches the metadata of one release
func (p *FRED) ReleaseInfo(ctx context.Context, releaseID int) (*ReleaseInfo, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("fetching FRED release %d", releaseID)

	query := url.Values{}
	query.Set("release_id", strconv.Itoa(releaseID))

	var resp struct {
		Releases []ReleaseInfo `json:"releases"`
	}
	if err := p.getJSON(ctx, "/fred/release", query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Releases) == 0 {
		return nil, NotFoundf("release %d not found", releaseID)
	}
	release := resp.Releases[0]
	return &release, nil
}

// ReleaseSeries lists the series published in a release
func (p *FRED) ReleaseSeries(ctx context.Context, releaseID, limit int) (*SeriesList, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("fetching FRED release %d series", releaseID)

	query := url.Values{}
	query.Set("release_id", strconv.Itoa(releaseID))
	query.Set("limit", strconv.Itoa(clampLimit(limit, 25, releaseSeriesCap)))

	var resp struct {
		Seriess []fredSeries `json:"seriess"`
	}
	if err := p.getJSON(ctx, "/fred/release/series", query, &resp); err != nil {
		return nil, err
	}

	result := &SeriesList{ReleaseID: releaseID, SeriesCount: len(resp.Seriess)}
	for _, s := range resp.Seriess {
		result.Series = append(result.Series, s.toMeta())
	}
	return result, nil
}

// ReleaseDates lists the publication dates of a release, newest first
func (p *FRED) ReleaseDates(ctx context.Context, releaseID, limit int) (*ReleaseDates, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("fetching FRED release %d dates", releaseID)

	query := url.Values{}
	query.Set("release_id", strconv.Itoa(releaseID))
	query.Set("limit", strconv.Itoa(clampLimit(limit, 30, releaseDatesCap)))
	query.Set("sort_order", "desc")

	var resp struct {
		ReleaseDates []struct {
			Date string `json:"date"`
		} `json:"release_dates"`
	}
	if err := p.getJSON(ctx, "/fred/release/dates", query, &resp); err != nil {
		return nil, err
	}

	result := &ReleaseDates{ReleaseID: releaseID, DatesCount: len(resp.ReleaseDates)}
	for _, d := range resp.ReleaseDates {
		result.ReleaseDates = append(result.ReleaseDates, d.Date)
	}
	return result, nil
}

// VintageDates lists the revision vintages of a series, newest first
func (p *FRED) VintageDates(ctx context.Context, seriesID string, limit int) (*VintageDates, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	logger.Info("fetching FRED vintage dates: %s", seriesID)

	query := url.Values{}
	query.Set("series_id", seriesID)
	query.Set("limit", strconv.Itoa(clampLimit(limit, 50, vintageDatesCap)))
	query.Set("sort_order", "desc")

	var resp struct {
		VintageDates []string `json:"vintage_dates"`
	}
	if err := p.getJSON(ctx, "/fred/series/vintagedates", query, &resp); err != nil {
		return nil, err
	}

	return &VintageDates{
		SeriesID:      seriesID,
		VintagesCount: len(resp.VintageDates),
		Dates:         resp.VintageDates,
	}, nil
}

func (p *FRED) checkKey() error {
	if p.apiKey == "" {
		return MissingCredentialf("FRED_API_KEY is not configured")
	}
	return nil
}

// getJSON issues a GET request with the API key and file_type attached
func (p *FRED) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	query.Set("api_key", p.apiKey)
	query.Set("file_type", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return Unavailablef("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return Unavailablef("fred request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return NotFoundf("fred reported no matching entity")
	}
	if resp.StatusCode != http.StatusOK {
		return Unavailablef("fred returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Unavailablef("failed to parse fred response: %v", err)
	}
	return nil
}

// clampLimit applies the default and the operation cap
func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
