package catalog

// Category identifies one top-level section of the remote catalog.
type Category struct {
	ID   string
	Name string
	Slug string
}

// Categories is the compiled-in category set. The remote enumeration
// endpoint is unreliable, so the set is fixed at build time; slugs are
// unique within it. A future live enumeration source would feed the same
// type.
var Categories = []Category{
	{ID: "1", Name: "موبایل", Slug: "mobile"},
	{ID: "2", Name: "خانه و آشپزخانه", Slug: "home-and-kitchen"},
	{ID: "3", Name: "پوشاک", Slug: "apparel"},
	{ID: "4", Name: "مواد غذایی", Slug: "food-beverage"},
	{ID: "5", Name: "کتاب و رسانه", Slug: "book-and-media"},
	{ID: "6", Name: "مادر و کودک", Slug: "mother-and-child"},
	{ID: "7", Name: "لوازم شخصی", Slug: "personal-appliance"},
	{ID: "8", Name: "ورزش و سرگرمی", Slug: "sport-entertainment"},
	{ID: "9", Name: "قطعات خودرو", Slug: "vehicles-spare-parts"},
	{ID: "10", Name: "محصولات روستایی", Slug: "rural-products"},
	{ID: "11", Name: "کارت هدیه", Slug: "dk-ds-gift-cards"},
	{ID: "12", Name: "سایر", Slug: "other"},
}

// Find returns the category with the given slug.
func Find(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// DisplayName resolves a slug to its display name, falling back to the slug
// itself for categories outside the fixed set.
func DisplayName(slug string) string {
	if c, ok := Find(slug); ok {
		return c.Name
	}
	return slug
}
