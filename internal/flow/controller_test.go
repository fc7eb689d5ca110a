package flow

import (
	"context"
	"strings"
	"testing"

	"dealsbot/internal/catalog"
)

type fakeCatalog struct {
	unconfigured bool
	products     map[string][]catalog.Product
	deals        map[string][]catalog.Product
	byDKP        map[string]catalog.Product

	listCalls  int
	dealsCalls int
	getCalls   int
}

func (f *fakeCatalog) Configured() bool { return !f.unconfigured }

func (f *fakeCatalog) ListProducts(_ context.Context, slug string) []catalog.Product {
	f.listCalls++
	return f.products[slug]
}

func (f *fakeCatalog) DiscountedProducts(_ context.Context, slug string, limit int) []catalog.Product {
	f.dealsCalls++
	out := f.deals[slug]
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeCatalog) GetProduct(_ context.Context, dkp string) (catalog.Product, bool) {
	f.getCalls++
	p, ok := f.byDKP[dkp]
	return p, ok
}

func mobileProducts() []catalog.Product {
	return []catalog.Product{
		{DKP: "111", Title: "Phone A", MainPrice: 12345, DiscountedPrice: 9876, DiscountPercent: 20, URL: "https://shop.example/dkp-111/"},
		{DKP: "222", Title: "Phone B", MainPrice: 500, URL: "https://shop.example/dkp-222/"},
		{Title: "Phone C", MainPrice: 900, URL: "https://shop.example/no-id/"},
	}
}

func newTestController(fake *fakeCatalog) *Controller {
	return NewController(fake, "DigikalaDealsBot")
}

func countActions(snap Snapshot, action string) int {
	n := 0
	for _, b := range snap.Buttons {
		if b.Action == action {
			n++
		}
	}
	return n
}

func TestMainMenuListsEveryCategory(t *testing.T) {
	ctrl := newTestController(&fakeCatalog{})

	snap, state := ctrl.MainMenu()
	if state != Browsing {
		t.Fatalf("state = %v, want Browsing", state)
	}
	if got := countActions(snap, ActionCategory); got != len(catalog.Categories) {
		t.Fatalf("category buttons = %d, want %d", got, len(catalog.Categories))
	}
	for i, c := range catalog.Categories {
		if snap.Buttons[i].Payload != c.Slug {
			t.Errorf("button %d payload = %q, want %q", i, snap.Buttons[i].Payload, c.Slug)
		}
	}
	if !strings.Contains(snap.Text, "DigikalaDealsBot") {
		t.Errorf("welcome text %q lacks bot name", snap.Text)
	}
}

func TestOpenCategoryRendersProductListWithBack(t *testing.T) {
	fake := &fakeCatalog{products: map[string][]catalog.Product{"mobile": mobileProducts()}}
	ctrl := newTestController(fake)

	snap, state := ctrl.OpenCategory(context.Background(), "mobile")

	if state != CategorySelected {
		t.Fatalf("state = %v, want CategorySelected", state)
	}
	if got := countActions(snap, ActionProduct); got != 3 {
		t.Fatalf("product buttons = %d, want 3", got)
	}
	if got := countActions(snap, ActionBack); got != 1 {
		t.Fatalf("back buttons = %d, want 1", got)
	}
	if len(snap.Buttons) != 4 {
		t.Fatalf("total buttons = %d, want 4", len(snap.Buttons))
	}

	slug, ok := RecoverCategory(snap)
	if !ok || slug != "mobile" {
		t.Fatalf("RecoverCategory = (%q, %v), want (mobile, true)", slug, ok)
	}
}

func TestRecoverCategoryRoundTripAllCategories(t *testing.T) {
	fake := &fakeCatalog{products: map[string][]catalog.Product{}}
	for _, c := range catalog.Categories {
		fake.products[c.Slug] = mobileProducts()
	}
	ctrl := newTestController(fake)

	for _, c := range catalog.Categories {
		snap, _ := ctrl.OpenCategory(context.Background(), c.Slug)
		slug, ok := RecoverCategory(snap)
		if !ok || slug != c.Slug {
			t.Errorf("RecoverCategory for %s = (%q, %v)", c.Slug, slug, ok)
		}
	}
}

func TestOpenCategoryCapsButtons(t *testing.T) {
	many := make([]catalog.Product, 8)
	for i := range many {
		many[i] = catalog.Product{DKP: "1", Title: "P", URL: "u"}
	}
	fake := &fakeCatalog{products: map[string][]catalog.Product{"mobile": many}}
	ctrl := newTestController(fake)

	snap, _ := ctrl.OpenCategory(context.Background(), "mobile")
	if got := countActions(snap, ActionProduct); got != maxListButtons {
		t.Fatalf("product buttons = %d, want %d", got, maxListButtons)
	}
}

func TestOpenCategoryEmptyStaysBrowsing(t *testing.T) {
	fake := &fakeCatalog{}
	ctrl := newTestController(fake)

	snap, state := ctrl.OpenCategory(context.Background(), "mobile")

	if state != Browsing {
		t.Fatalf("state = %v, want Browsing", state)
	}
	if len(snap.Buttons) != 0 {
		t.Fatalf("empty-state snapshot has %d buttons", len(snap.Buttons))
	}
	if !strings.Contains(snap.Text, "No products found") || !strings.Contains(snap.Text, "/deals mobile") {
		t.Errorf("empty-state text %q lacks explanation or example", snap.Text)
	}
}

func TestSelectProductWithoutIdentifier(t *testing.T) {
	fake := &fakeCatalog{products: map[string][]catalog.Product{"mobile": mobileProducts()}}
	ctrl := newTestController(fake)

	listSnap, _ := ctrl.OpenCategory(context.Background(), "mobile")

	// Press the button of the product whose URL carried no identifier.
	snap, state := ctrl.SelectProduct(context.Background(), listSnap, "")

	if state != CategorySelected {
		t.Fatalf("state = %v, want CategorySelected", state)
	}
	if !strings.Contains(snap.Text, "Product not found.") {
		t.Errorf("text = %q, want product-not-found message", snap.Text)
	}
	if slug, ok := RecoverCategory(snap); !ok || slug != "mobile" {
		t.Errorf("result snapshot lost category context: (%q, %v)", slug, ok)
	}
	if fake.getCalls != 0 {
		t.Errorf("lookup attempted %d times for empty identifier", fake.getCalls)
	}
}

func TestSelectProductDetail(t *testing.T) {
	p := catalog.Product{
		DKP: "111", Title: "Phone A",
		MainPrice: 12345, DiscountedPrice: 9876, DiscountPercent: 20,
		URL: "https://shop.example/dkp-111/", ImageURL: "https://img.example/111.jpg",
	}
	fake := &fakeCatalog{byDKP: map[string]catalog.Product{"111": p}}
	ctrl := newTestController(fake)

	listSnap := Snapshot{Buttons: []Button{
		{Label: "Phone A", Action: ActionProduct, Payload: "111"},
		{Label: "Back", Action: ActionBack, Payload: "mobile"},
	}}
	snap, state := ctrl.SelectProduct(context.Background(), listSnap, "111")

	if state != CategorySelected {
		t.Fatalf("state = %v, want CategorySelected", state)
	}
	for _, want := range []string{"Phone A", "9,876", "12,345", "20% off", p.URL} {
		if !strings.Contains(snap.Text, want) {
			t.Errorf("detail text %q lacks %q", snap.Text, want)
		}
	}
	if snap.ImageURL != p.ImageURL {
		t.Errorf("ImageURL = %q, want %q", snap.ImageURL, p.ImageURL)
	}
	if slug, ok := RecoverCategory(snap); !ok || slug != "mobile" {
		t.Errorf("detail snapshot lost category context: (%q, %v)", slug, ok)
	}
}

func TestSelectProductWithoutCategoryContext(t *testing.T) {
	ctrl := newTestController(&fakeCatalog{})

	snap, state := ctrl.SelectProduct(context.Background(), Snapshot{Text: "corrupted"}, "111")

	if state != Browsing {
		t.Fatalf("state = %v, want Browsing", state)
	}
	if !strings.Contains(snap.Text, "Category not found.") {
		t.Errorf("text = %q, want category-not-found message", snap.Text)
	}
}

func TestDealsEmptyNamesExamples(t *testing.T) {
	ctrl := newTestController(&fakeCatalog{})

	snap := ctrl.Deals(context.Background(), "mobile")

	if !strings.Contains(snap.Text, "/deals mobile") || !strings.Contains(snap.Text, "/product 19960298") {
		t.Fatalf("fallback text %q lacks actionable examples", snap.Text)
	}
}

func TestDealsRendersLines(t *testing.T) {
	fake := &fakeCatalog{deals: map[string][]catalog.Product{"mobile": {
		{DKP: "111", Title: "Phone A", MainPrice: 12345, DiscountedPrice: 9876, DiscountPercent: 20, URL: "https://shop.example/dkp-111/"},
		{DKP: "333", Title: "Phone D", MainPrice: 1000, DiscountedPrice: 500, DiscountPercent: 50, URL: "https://shop.example/dkp-333/"},
	}}}
	ctrl := newTestController(fake)

	snap := ctrl.Deals(context.Background(), "mobile")

	for _, want := range []string{"1. Phone A", "9,876", "20% off", "2. Phone D", "50% off"} {
		if !strings.Contains(snap.Text, want) {
			t.Errorf("deals text %q lacks %q", snap.Text, want)
		}
	}
	if len(snap.Buttons) != 0 {
		t.Errorf("deals listing has %d buttons, want plain text", len(snap.Buttons))
	}
}

func TestDealsMissingArgument(t *testing.T) {
	fake := &fakeCatalog{}
	ctrl := newTestController(fake)

	snap := ctrl.Deals(context.Background(), "")

	if !strings.Contains(snap.Text, "Usage: /deals") {
		t.Errorf("text = %q, want usage hint", snap.Text)
	}
	if fake.dealsCalls != 0 {
		t.Errorf("catalog called %d times without argument", fake.dealsCalls)
	}
}

func TestLookup(t *testing.T) {
	p := catalog.Product{DKP: "111", Title: "Phone A", MainPrice: 12345, URL: "https://shop.example/dkp-111/"}
	fake := &fakeCatalog{byDKP: map[string]catalog.Product{"111": p}}
	ctrl := newTestController(fake)

	snap := ctrl.Lookup(context.Background(), "111")
	if !strings.Contains(snap.Text, "Phone A") || !strings.Contains(snap.Text, "12,345") {
		t.Errorf("detail text = %q", snap.Text)
	}

	snap = ctrl.Lookup(context.Background(), "999")
	if !strings.Contains(snap.Text, "Product not found.") || !strings.Contains(snap.Text, "19960298") {
		t.Errorf("not-found text = %q, want message with example", snap.Text)
	}

	snap = ctrl.Lookup(context.Background(), "")
	if !strings.Contains(snap.Text, "Usage: /product") {
		t.Errorf("text = %q, want usage hint", snap.Text)
	}
}

func TestUnconfiguredCatalogShortCircuits(t *testing.T) {
	fake := &fakeCatalog{unconfigured: true}
	ctrl := newTestController(fake)

	snap, state := ctrl.OpenCategory(context.Background(), "mobile")
	if state != Browsing || !strings.Contains(snap.Text, "not configured") {
		t.Errorf("OpenCategory = (%q, %v)", snap.Text, state)
	}
	if snap := ctrl.Deals(context.Background(), "mobile"); !strings.Contains(snap.Text, "not configured") {
		t.Errorf("Deals = %q", snap.Text)
	}
	if snap := ctrl.Lookup(context.Background(), "111"); !strings.Contains(snap.Text, "not configured") {
		t.Errorf("Lookup = %q", snap.Text)
	}
	if fake.listCalls+fake.dealsCalls+fake.getCalls != 0 {
		t.Fatalf("catalog reached while unconfigured: list=%d deals=%d get=%d",
			fake.listCalls, fake.dealsCalls, fake.getCalls)
	}
}

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{12345, "12,345"},
		{1234567, "1,234,567"},
		{1234.5, "1,234.5"},
		{-12345, "-12,345"},
	}
	for _, tc := range cases {
		if got := formatPrice(tc.in); got != tc.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
