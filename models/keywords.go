package models

// MonthlySearch is one month of historical search volume for a keyword.
type MonthlySearch struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Volume int `json:"volume"`
}

// SearchVolumeRecord is the per-keyword search metrics record.
//
// A lookup always yields exactly one record per requested keyword, keyed by
// the keyword as the caller spelled it. When the provider has no data the
// record is zero-filled (Competition "Unknown") rather than omitted.
type SearchVolumeRecord struct {
	Keyword         string          `json:"keyword"`
	SearchVolume    int             `json:"search_volume"`
	Competition     string          `json:"competition"`
	CPC             float64         `json:"cpc"`
	MonthlySearches []MonthlySearch `json:"monthly_searches"`
}

// ZeroVolumeRecord returns the no-data fallback record for a keyword.
func ZeroVolumeRecord(keyword string) SearchVolumeRecord {
	return SearchVolumeRecord{
		Keyword:         keyword,
		Competition:     "Unknown",
		MonthlySearches: []MonthlySearch{},
	}
}

// OrganicEntry is one organic result from a SERP lookup, ordered by Position.
type OrganicEntry struct {
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	IsFeatured  bool   `json:"is_featured"`
}

// SERPResult is the organic-only view of a SERP lookup for one keyword.
type SERPResult struct {
	Keyword        string         `json:"keyword"`
	TotalResults   int64          `json:"total_results"`
	OrganicResults []OrganicEntry `json:"organic_results"`
}

// CompetitorContent is the extracted content of one competitor page.
//
// Failed fetches still produce an entry (placeholder content, zero length)
// so every attempted URL is accounted for.
type CompetitorContent struct {
	URL             string `json:"url"`
	Domain          string `json:"domain"`
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	Content         string `json:"content"`
	ContentLength   int    `json:"content_length"`
}
