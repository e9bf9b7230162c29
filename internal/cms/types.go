// internal/cms/types.go
package cms

// The storefront consumes a fixed projection of each document type; fields
// outside these shapes are ignored.

type PricingTier struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	LicenseType  string  `json:"licenseType"`
	DownloadLink string  `json:"downloadLink,omitempty"`
	PaymentLink  string  `json:"paymentLink,omitempty"`
}

type Image struct {
	AssetRef string `json:"assetRef,omitempty"`
	URL      string `json:"url,omitempty"`
}

type Product struct {
	ID               string        `json:"_id"`
	Title            string        `json:"title"`
	Slug             string        `json:"slug"`
	Category         string        `json:"category"`
	ShortDescription string        `json:"shortDescription"`
	LongDescription  string        `json:"longDescription"`
	Features         []string      `json:"features"`
	PricingTiers     []PricingTier `json:"pricingTiers"`
	MainImage        *Image        `json:"mainImage,omitempty"`
	Gallery          []Image       `json:"gallery,omitempty"`
}

type PostLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Post struct {
	ID            string     `json:"_id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Category      string     `json:"category"`
	Excerpt       string     `json:"excerpt"`
	Body          string     `json:"body"`
	ReadTime      string     `json:"readTime"`
	PublishedAt   string     `json:"publishedAt"`
	CoverImageURL string     `json:"coverImageUrl"`
	Links         []PostLink `json:"links"`
	Author        string     `json:"author"`
}

type StoredLink struct {
	ID    string `json:"_id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type SiteSettings struct {
	ID           string `json:"_id"`
	SiteTitle    string `json:"siteTitle"`
	Tagline      string `json:"tagline"`
	ContactEmail string `json:"contactEmail"`
	FooterText   string `json:"footerText"`
}
