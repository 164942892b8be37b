package games

// Game is one row of the games list.
// JSON names match the list's internal field names, so the struct round-trips
// through the list REST API without renaming.
type Game struct {
	ID             int    `json:"Id,omitempty"`
	Title          string `json:"Title"`
	Platform       string `json:"platform"`
	DatePurchased  string `json:"datePurchased"`
	DateLastPlayed string `json:"dateLastPlayed"`
	Comments       string `json:"comments"`

	// EntityType is the list item type name; only sent when creating.
	EntityType string `json:"@odata.type,omitempty"`
	// ETag is the version marker returned with full metadata reads.
	ETag string `json:"@odata.etag,omitempty"`
}

// Columns lists the table headers used when games are rendered.
var Columns = []string{"Id", "Title", "Platform", "Date Purchased", "Date Last Played", "Comments"}

// ListResponse is the payload returned by /games.
type ListResponse struct {
	Count int    `json:"count"`
	Games []Game `json:"games"`
}

// NewListResponse builds a ListResponse payload.
func NewListResponse(games []Game) ListResponse {
	if games == nil {
		games = []Game{}
	}
	return ListResponse{
		Count: len(games),
		Games: games,
	}
}

// WithoutMetadata returns a copy of g with the list metadata fields cleared.
func (g Game) WithoutMetadata() Game {
	g.EntityType = ""
	g.ETag = ""
	return g
}

// Merge applies the non-empty content fields of patch onto g.
func (g Game) Merge(patch Game) Game {
	if patch.Title != "" {
		g.Title = patch.Title
	}
	if patch.Platform != "" {
		g.Platform = patch.Platform
	}
	if patch.DatePurchased != "" {
		g.DatePurchased = patch.DatePurchased
	}
	if patch.DateLastPlayed != "" {
		g.DateLastPlayed = patch.DateLastPlayed
	}
	if patch.Comments != "" {
		g.Comments = patch.Comments
	}
	return g
}
