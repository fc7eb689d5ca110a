package catalog

import (
	"math"
	"regexp"
)

// priceScale converts raw minor-unit prices from the API into display
// currency units.
const priceScale = 10_000

var dkpRe = regexp.MustCompile(`dkp-(\d+)`)

// Product is a normalized catalog record. DKP may be empty when the source
// URL carries no identifier; such a record is listable but cannot be looked
// up individually.
type Product struct {
	DKP             string
	Title           string
	MainPrice       float64
	DiscountedPrice float64
	DiscountPercent int
	URL             string
	ImageURL        string
}

// Discounted reports whether the record carries an effective discount.
func (p Product) Discounted() bool {
	return p.DiscountPercent > 0
}

// ExtractDKP pulls the numeric product identifier out of a canonical
// product URL. Returns "" when the URL carries none.
func ExtractDKP(url string) string {
	m := dkpRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// rawAttributes mirrors the attribute object of an API record.
type rawAttributes struct {
	Title           string   `json:"title_fa"`
	MainPrice       int64    `json:"main_price"`
	DiscountedPrice int64    `json:"discounted_price"`
	URL             string   `json:"url"`
	FeaturedImage   []string `json:"featured_image"`
}

type rawRecord struct {
	Type       string        `json:"type"`
	Attributes rawAttributes `json:"attributes"`
}

type listEnvelope struct {
	Data []rawRecord `json:"data"`
}

type itemEnvelope struct {
	Data struct {
		Attributes rawAttributes `json:"attributes"`
	} `json:"data"`
}

func (a rawAttributes) product() Product {
	p := Product{
		DKP:             ExtractDKP(a.URL),
		Title:           a.Title,
		MainPrice:       float64(a.MainPrice) / priceScale,
		DiscountedPrice: float64(a.DiscountedPrice) / priceScale,
		DiscountPercent: discountPercent(a.MainPrice, a.DiscountedPrice),
		URL:             a.URL,
	}
	if len(a.FeaturedImage) > 0 {
		p.ImageURL = a.FeaturedImage[0]
	}
	return p
}

func (a rawAttributes) empty() bool {
	return a.Title == "" && a.URL == "" && a.MainPrice == 0 && a.DiscountedPrice == 0
}

// discountPercent derives the discount from the price pair instead of
// trusting a separate API attribute, so the >0 filter can never disagree
// with the prices shown to the user.
func discountPercent(main, discounted int64) int {
	if main <= 0 || discounted <= 0 || discounted >= main {
		return 0
	}
	return int(math.Round(float64(main-discounted) / float64(main) * 100))
}
