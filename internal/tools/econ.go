package tools

import (
	"context"

	"github.com/kodell/finchat/internal/providers"
)

// SearchSeriesTool searches FRED for economic data series
type SearchSeriesTool struct {
	econ *providers.FRED
}

// NewSearchSeriesTool creates the series search tool
func NewSearchSeriesTool(econ *providers.FRED) *SearchSeriesTool {
	return &SearchSeriesTool{econ: econ}
}

func (t *SearchSeriesTool) Name() string {
	return "search_economic_series"
}

func (t *SearchSeriesTool) Description() string {
	return "Search FRED for economic data series by keywords (e.g., 'unemployment rate', 'GDP', 'inflation')."
}

func (t *SearchSeriesTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "search_text",
			Type:        "string",
			Description: "Keywords to search for",
			Required:    true,
		},
		{
			Name:        "limit",
			Type:        "integer",
			Description: "Maximum number of series to return",
			Default:     20,
		},
	}
}

func (t *SearchSeriesTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	text := stringArg(args, "search_text")
	if text == "" {
		return "", providers.InvalidArgumentf("missing required parameter: search_text")
	}

	result, err := t.econ.SearchSeries(ctx, text, intArg(args, "limit", 20))
	if err != nil {
		return "", err
	}
	return encodeRecord(result)
}

// SeriesInfoTool fetches the metadata of one FRED series
type SeriesInfoTool struct {
	econ *providers.FRED
}

// NewSeriesInfoTool creates the series info tool
func NewSeriesInfoTool(econ *providers.FRED) *SeriesInfoTool {
	return &SeriesInfoTool{econ: econ}
}

func (t *SeriesInfoTool) Name() string {
	return "get_series_info"
}

func (t *SeriesInfoTool) Description() string {
	return "Get metadata for a FRED series: title, frequency, units, seasonal adjustment, and date range."
}

func (t *SeriesInfoTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "series_id",
			Type:        "string",
			Description: "FRED series identifier (e.g., 'UNRATE', 'GDP', 'CPIAUCSL')",
			Required:    true,
		},
	}
}

func (t *SeriesInfoTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	seriesID := stringArg(args, "series_id")
	if seriesID == "" {
		return "", providers.InvalidArgumentf("missing required parameter: series_id")
	}

	meta, err := t.econ.SeriesInfo(ctx, seriesID)
	if err != nil {
		return "", err
	}
	return encodeRecord(meta)
}

// BrowseCategoriesTool walks the FRED category tree
type BrowseCategoriesTool struct {
	econ *providers.FRED
}

// NewBrowseCategoriesTool creates the category browsing tool
func NewBrowseCategoriesTool(econ *providers.FRED) *BrowseCategoriesTool {
	return &BrowseCategoriesTool{econ: econ}
}

func (t *BrowseCategoriesTool) Name() string {
	return "browse_economic_categories"
}

func (t *BrowseCategoriesTool) Description() string {
	return "Browse the FRED category tree. Returns the child categories of the given category; category 0 is the root."
}

func (t *BrowseCategoriesTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "category_id",
			Type:        "integer",
			Description: "Category to expand (0 for the top level)",
			Default:     0,
		},
	}
}

func (t *BrowseCategoriesTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	categories, err := t.econ.CategoryChildren(ctx, intArg(args, "category_id", 0))
	if err != nil {
		return "", err
	}
	return encodeRecord(categories)
}

// EconomicIndicatorTool fetches the observations of a FRED series
type EconomicIndicatorTool struct {
	econ *providers.FRED
}

// NewEconomicIndicatorTool creates the observations tool
func NewEconomicIndicatorTool(econ *providers.FRED) *EconomicIndicatorTool {
	return &EconomicIndicatorTool{econ: econ}
}

func (t *EconomicIndicatorTool) Name() string {
	return "get_economic_indicator"
}

func (t *EconomicIndicatorTool) Description() string {
	return "Get observations for a FRED series, most recent first, with optional units transformation and frequency aggregation."
}

func (t *EconomicIndicatorTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "series_id",
			Type:        "string",
			Description: "FRED series identifier (e.g., 'UNRATE', 'GDP')",
			Required:    true,
		},
		{
			Name:        "limit",
			Type:        "integer",
			Description: "Maximum number of observations to return",
			Default:     100,
		},
		{
			Name:        "units",
			Type:        "string",
			Description: "Units transformation",
			Enum:        []string{"lin", "chg", "ch1", "pch", "pc1", "pca", "cch", "cca", "log"},
		},
		{
			Name:        "frequency",
			Type:        "string",
			Description: "Frequency aggregation",
			Enum:        []string{"d", "w", "bw", "m", "q", "sa", "a"},
		},
	}
}

func (t *EconomicIndicatorTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	seriesID := stringArg(args, "series_id")
	if seriesID == "" {
		return "", providers.InvalidArgumentf("missing required parameter: series_id")
	}

	observations, err := t.econ.Observations(ctx, seriesID,
		intArg(args, "limit", 100),
		stringArg(args, "units"),
		stringArg(args, "frequency"))
	if err != nil {
		return "", err
	}
	return encodeRecord(observations)
}

// SearchTagsTool finds the tags attached to a series search
type SearchTagsTool struct {
	econ *providers.FRED
}

// NewSearchTagsTool creates the tag search tool
func NewSearchTagsTool(econ *providers.FRED) *SearchTagsTool {
	return &SearchTagsTool{econ: econ}
}

func (t *SearchTagsTool) Name() string {
	return "search_series_tags"
}

func (t *SearchTagsTool) Description() string {
	return "Find FRED tags matching a series search, with series counts and popularity."
}

func (t *SearchTagsTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "search_text",
			Type:        "string",
			Description: "Series search keywords",
			Required:    true,
		},
		{
			Name:        "limit",
			Type:        "integer",
			Description: "Maximum number of tags to return",
			Default:     100,
		},
	}
}

func (t *SearchTagsTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	text := stringArg(args, "search_text")
	if text == "" {
		return "", providers.InvalidArgumentf("missing required parameter: search_text")
	}

	tags, err := t.econ.SearchTags(ctx, text, intArg(args, "limit", 100))
	if err != nil {
		return "", err
	}
	return encodeRecord(tags)
}

// SearchRelatedTagsTool finds tags related to a filtered series search
type SearchRelatedTagsTool struct {
	econ *providers.FRED
}

// NewSearchRelatedTagsTool creates the related-tag search tool
func NewSearchRelatedTagsTool(econ *providers.FRED) *SearchRelatedTagsTool {
	return &SearchRelatedTagsTool{econ: econ}
}

func (t *SearchRelatedTagsTool) Name() string {
	return "search_series_related_tags"
}

func (t *SearchRelatedTagsTool) Description() string {
	return "Find FRED tags related to a series search, narrowed by one or more filter tags."
}

func (t *SearchRelatedTagsTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "search_text",
			Type:        "string",
			Description: "Series search keywords",
			Required:    true,
		},
		{
			Name:        "filter_tags",
			Type:        "string",
			Description: "Comma-separated tag names to filter by (e.g., 'usa,monthly')",
			Required:    true,
		},
		{
			Name:        "limit",
			Type:        "integer",
			Description: "Maximum number of tags to return",
			Default:     100,
		},
	}
}

func (t *SearchRelatedTagsTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	text := stringArg(args, "search_text")
	filterTags := stringArg(args, "filter_tags")
	if text == "" || filterTags == "" {
		return "", providers.InvalidArgumentf("both search_text and filter_tags are required")
	}

	tags, err := t.econ.SearchRelatedTags(ctx, text, filterTags, intArg(args, "limit", 100))
	if err != nil {
		return "", err
	}
	return encodeRecord(tags)
}

// SeriesUpdatesTool lists recently updated FRED series
type SeriesUpdatesTool struct {
	econ *providers.FRED
}

// NewSeriesUpdatesTool creates the series updates tool
func NewSeriesUpdatesTool(econ *providers.FRED) *SeriesUpdatesTool {
	return &SeriesUpdatesTool{econ: econ}
}

func (t *SeriesUpdatesTool) Name() string {
	return "get_series_updates"
}

func (t *SeriesUpdatesTool) Description() string {
	return "List FRED series sorted by most recent update, useful for spotting fresh economic data."
}

func (t *SeriesUpdatesTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "limit",
			Type:        "integer",
			Description: "Maximum number of series to return",
			Default:     50,
		},
	}
}

func (t *SeriesUpdatesTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	updates, err := t.econ.SeriesUpdates(ctx, intArg(args, "limit", 50))
	if err != nil {
		return "", err
	}
	return encodeRecord(updates)
}

// ReleaseInfoTool fetches the metadata of a FRED release
type ReleaseInfoTool struct {
	econ *providers.FRED
}

// NewReleaseInfoTool creates the release info tool
func NewReleaseInfoTool(econ *providers.FRED) *ReleaseInfoTool {
	return &ReleaseInfoTool{econ: econ}
}

func (t *ReleaseInfoTool) Name() string {
	return "get_release_info"
}

func (t *ReleaseInfoTool) Description() string {
	return "Get metadata for a FRED release (e.g., release 50 is the Employment Situation)."
}

func (t *ReleaseInfoTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "release_id",
			Type:        "integer",
			Description: "FRED release identifier",
			Required:    true,
		},
	}
}

func (t *ReleaseInfoTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	releaseID := intArg(args, "release_id", 0)
	if releaseID <= 0 {
		return "", providers.InvalidArgumentf("release_id must be a positive integer")
	}

	release, err := t.econ.ReleaseInfo(ctx, releaseID)
	if err != nil {
		return "", err
	}
	return encodeRecord(release)
}

// ReleaseSeriesTool lists the series published in a FRED release
type ReleaseSeriesTool struct {
	econ *providers.FRED
}

// NewReleaseSeriesTool creates the release series tool
func NewReleaseSeriesTool(econ *providers.FRED) *ReleaseSeriesTool {
	return &ReleaseSeriesTool{econ: econ}
}

func (t *ReleaseSeriesTool) Name() string {
	return "get_release_series"
}

func (t *ReleaseSeriesTool) Description() string {
	return "List the data series published in a FRED release."
}

func (t *ReleaseSeriesTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "release_id",
			Type:        "integer",
			Description: "FRED release identifier",
			Required:    true,
		},
		{
			Name:        "limit",
			Type:        "integer",
			Description: "Maximum number of series to return",
			Default:     25,
		},
	}
}

func (t *ReleaseSeriesTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	releaseID := intArg(args, "release_id", 0)
	if releaseID <= 0 {
		return "", providers.InvalidArgumentf("release_id must be a positive integer")
	}

	series, err := t.econ.ReleaseSeries(ctx, releaseID, intArg(args, "limit", 25))
	if err != nil {
		return "", err
	}
	return encodeRecord(series)
}

// ReleaseDatesTool lists the publication dates of a FRED release
type ReleaseDatesTool struct {
	econ *providers.FRED
}

// NewReleaseDatesTool creates the release dates tool
func NewReleaseDatesTool(econ *providers.FRED) *ReleaseDatesTool {
	return &ReleaseDatesTool{econ: econ}
}

func (t *ReleaseDatesTool) Name() string {
	return "get_release_dates"
}

func (t *ReleaseDatesTool) Description() string {
	return "List the publication dates of a FRED release, most recent first."
}

func (t *ReleaseDatesTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "release_id",
			Type:        "integer",
			Description: "FRED release identifier",
			Required:    true,
		},
		{
			Name:        "limit",
			Type:        "integer",
			Description: "Maximum number of dates to return",
			Default:     30,
		},
	}
}

func (t *ReleaseDatesTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	releaseID := intArg(args, "release_id", 0)
	if releaseID <= 0 {
		return "", providers.InvalidArgumentf("release_id must be a positive integer")
	}

	dates, err := t.econ.ReleaseDates(ctx, releaseID, intArg(args, "limit", 30))
	if err != nil {
		return "", err
	}
	return encodeRecord(dates)
}

// VintageDatesTool lists the revision vintages of a FRED series
type VintageDatesTool struct {
	econ *providers.FRED
}

// NewVintageDatesTool creates the vintage dates tool
func NewVintageDatesTool(econ *providers.FRED) *VintageDatesTool {
	return &VintageDatesTool{econ: econ}
}

func (t *VintageDatesTool) Name() string {
	return "get_series_vintagedates"
}

func (t *VintageDatesTool) Description() string {
	return "List the dates on which a FRED series was revised or newly released, most recent first."
}

func (t *VintageDatesTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "series_id",
			Type:        "string",
			Description: "FRED series identifier",
			Required:    true,
		},
		{
			Name:        "limit",
			Type:        "integer",
			Description: "Maximum number of vintage dates to return",
			Default:     50,
		},
	}
}

func (t *VintageDatesTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	seriesID := stringArg(args, "series_id")
	if seriesID == "" {
		return "", providers.InvalidArgumentf("missing required parameter: series_id")
	}

	vintages, err := t.econ.VintageDates(ctx, seriesID, intArg(args, "limit", 50))
	if err != nil {
		return "", err
	}
	return encodeRecord(vintages)
}
