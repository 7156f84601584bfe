package tcgcsv

import "time"

// Group is a card set as listed by the feed's groups endpoint.
type Group struct {
	GroupID        int    `json:"groupId"`
	Name           string `json:"name"`
	Abbreviation   string `json:"abbreviation"`
	IsSupplemental bool   `json:"isSupplemental"`
	PublishedOn    string `json:"publishedOn"`
	ModifiedOn     string `json:"modifiedOn"`
	CategoryID     int    `json:"categoryId"`
}

// PublishedTime parses the group's published date. The feed emits local
// timestamps without a zone; a date-only fallback is accepted. Returns the
// zero time when the value cannot be parsed.
func (g Group) PublishedTime() time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, g.PublishedOn); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ExtendedData is a key/value attribute attached to a product. Cards carry
// a "Number" attribute; sealed products do not.
type ExtendedData struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Value       string `json:"value"`
}

// Product is a sellable item within a group.
type Product struct {
	ProductID    int            `json:"productId"`
	Name         string         `json:"name"`
	CleanName    string         `json:"cleanName"`
	ImageURL     string         `json:"imageUrl"`
	URL          string         `json:"url"`
	CategoryID   int            `json:"categoryId"`
	GroupID      int            `json:"groupId"`
	ExtendedData []ExtendedData `json:"extendedData,omitempty"`
}

// Price is one price quote for a product. A product may have several quotes
// distinguished by SubTypeName ("Normal", "Foil", ...), and every price
// field may be absent.
type Price struct {
	ProductID      int      `json:"productId"`
	LowPrice       *float64 `json:"lowPrice"`
	MidPrice       *float64 `json:"midPrice"`
	HighPrice      *float64 `json:"highPrice"`
	MarketPrice    *float64 `json:"marketPrice"`
	DirectLowPrice *float64 `json:"directLowPrice"`
	SubTypeName    *string  `json:"subTypeName"`
}

// groupsEnvelope, productsEnvelope and pricesEnvelope mirror the feed's
// {"results": [...]} wrapper. Pointer slices let the client distinguish a
// missing results array (malformed) from an empty one (valid).
type groupsEnvelope struct {
	Results *[]Group `json:"results"`
}

type productsEnvelope struct {
	Results *[]Product `json:"results"`
}

type pricesEnvelope struct {
	Results *[]Price `json:"results"`
}
