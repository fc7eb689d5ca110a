package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"dealsbot/internal/catalog"
)

const (
	// maxListButtons caps how many products of a category become buttons.
	maxListButtons = 5
	// dealsLimit caps the discounted-products text listing.
	dealsLimit = 5

	exampleSlug = "mobile"
	exampleDKP  = "19960298"
)

// Catalog is the read-only data source the controller consults. All
// operations absorb failures and return empty or absent values.
type Catalog interface {
	Configured() bool
	ListProducts(ctx context.Context, slug string) []catalog.Product
	DiscountedProducts(ctx context.Context, slug string, limit int) []catalog.Product
	GetProduct(ctx context.Context, dkp string) (catalog.Product, bool)
}

// State is the conversation position implied by the last rendered view.
// It is transient and derived, never persisted; context recovery rebuilds
// everything needed from the view itself.
type State int

const (
	// Browsing means the top-level category menu is shown.
	Browsing State = iota
	// CategorySelected means a product list or detail for one category is shown.
	CategorySelected
)

func (s State) String() string {
	switch s {
	case CategorySelected:
		return "category_selected"
	default:
		return "browsing"
	}
}

// Controller maps user actions to catalog calls and produces the next view.
// Its methods are pure apart from the catalog fetches: given the same
// inputs and catalog answers they render the same snapshot, which keeps the
// transition table total and testable without a transport.
type Controller struct {
	catalog Catalog
	botName string
}

// NewController builds a controller over the given catalog source. botName
// appears in the welcome text.
func NewController(cat Catalog, botName string) *Controller {
	return &Controller{catalog: cat, botName: botName}
}

// MainMenu renders the top-level category menu.
func (ct *Controller) MainMenu() (Snapshot, State) {
	buttons := make([]Button, 0, len(catalog.Categories)+3)
	for _, c := range catalog.Categories {
		buttons = append(buttons, Button{Label: c.Name, Action: ActionCategory, Payload: c.Slug})
	}
	buttons = append(buttons,
		Button{Label: "Deals", Action: ActionDeals},
		Button{Label: "Product lookup", Action: ActionLookup},
		Button{Label: "Help", Action: ActionHelp},
	)
	return Snapshot{
		Text:    fmt.Sprintf("Welcome to %s!\nPick a category to browse, or use /deals and /product directly.", ct.botName),
		Buttons: buttons,
	}, Browsing
}

// OpenCategory renders the product list for a category. An empty fetch
// result stays in Browsing with an explanatory message; otherwise up to
// maxListButtons products become buttons followed by a back button that
// carries the slug, so the active category survives in the view itself.
func (ct *Controller) OpenCategory(ctx context.Context, slug string) (Snapshot, State) {
	if !ct.catalog.Configured() {
		return Snapshot{Text: msgNotConfigured}, Browsing
	}

	name := catalog.DisplayName(slug)
	products := ct.catalog.ListProducts(ctx, slug)
	if len(products) == 0 {
		return Snapshot{Text: emptyCategoryText(name)}, Browsing
	}

	if len(products) > maxListButtons {
		products = products[:maxListButtons]
	}
	buttons := make([]Button, 0, len(products)+1)
	for _, p := range products {
		buttons = append(buttons, Button{Label: p.Title, Action: ActionProduct, Payload: p.DKP})
	}
	buttons = append(buttons, backButton(slug))

	return Snapshot{
		Text:    fmt.Sprintf("%s\nPick a product:", name),
		Buttons: buttons,
	}, CategorySelected
}

// SelectProduct handles a product button press. The active category is
// recovered from the view the press arrived on; without it no detail can
// be rendered. The product itself is fetched directly by identifier.
func (ct *Controller) SelectProduct(ctx context.Context, current Snapshot, dkp string) (Snapshot, State) {
	slug, ok := RecoverCategory(current)
	if !ok {
		return Snapshot{Text: msgCategoryNotFound}, Browsing
	}

	if dkp == "" {
		return productNotFound(slug), CategorySelected
	}
	p, found := ct.catalog.GetProduct(ctx, dkp)
	if !found {
		return productNotFound(slug), CategorySelected
	}

	return Snapshot{
		Text:     detailText(p),
		Buttons:  []Button{backButton(slug)},
		ImageURL: p.ImageURL,
	}, CategorySelected
}

// Back returns to the category menu.
func (ct *Controller) Back() (Snapshot, State) {
	return ct.MainMenu()
}

// Deals renders discounted products for a category as plain text. The
// state is left unchanged by the caller.
func (ct *Controller) Deals(ctx context.Context, slug string) Snapshot {
	if !ct.catalog.Configured() {
		return Snapshot{Text: msgNotConfigured}
	}
	if slug == "" {
		return Snapshot{Text: msgDealsUsage}
	}

	deals := ct.catalog.DiscountedProducts(ctx, slug, dealsLimit)
	if len(deals) == 0 {
		return Snapshot{Text: noDealsText(catalog.DisplayName(slug))}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Deals in %s:\n", catalog.DisplayName(slug))
	for i, p := range deals {
		fmt.Fprintf(&b, "\n%d. %s\n   %s (%d%% off, was %s)\n   %s\n",
			i+1, p.Title, formatPrice(p.DiscountedPrice), p.DiscountPercent, formatPrice(p.MainPrice), p.URL)
	}
	return Snapshot{Text: b.String()}
}

// Lookup renders a single product detail by identifier as text.
func (ct *Controller) Lookup(ctx context.Context, dkp string) Snapshot {
	if !ct.catalog.Configured() {
		return Snapshot{Text: msgNotConfigured}
	}
	if dkp == "" {
		return Snapshot{Text: msgProductUsage}
	}

	p, found := ct.catalog.GetProduct(ctx, dkp)
	if !found {
		return Snapshot{Text: fmt.Sprintf("Product not found.\nCheck the identifier and try again, e.g. /product %s.", exampleDKP)}
	}
	return Snapshot{Text: detailText(p), ImageURL: p.ImageURL}
}

// Help renders the static command reference.
func (ct *Controller) Help() Snapshot {
	return Snapshot{Text: helpText}
}

// DealsPrompt is the reply to the menu shortcut that carries no slug.
func (ct *Controller) DealsPrompt() Snapshot {
	return Snapshot{Text: msgDealsUsage}
}

// LookupPrompt is the reply to the menu shortcut that carries no identifier.
func (ct *Controller) LookupPrompt() Snapshot {
	return Snapshot{Text: msgProductUsage}
}

const helpText = `Available commands:
/start - show the category menu
/deals <category> - top discounted products of a category
/product <id> - look up one product by its identifier
/help - this message

Examples:
/deals mobile
/product 19960298`

const (
	msgCategoryNotFound = "Category not found.\nStart over with /start and pick a category."
	msgNotConfigured    = "The catalog API token is not configured, so catalog data is unavailable.\nAsk the operator to set the token and restart the bot."
	msgDealsUsage       = "Usage: /deals <category>\nExample: /deals " + exampleSlug
	msgProductUsage     = "Usage: /product <id>\nExample: /product " + exampleDKP
)

func backButton(slug string) Button {
	return Button{Label: "Back", Action: ActionBack, Payload: slug}
}

func productNotFound(slug string) Snapshot {
	return Snapshot{
		Text:    fmt.Sprintf("Product not found.\nTry another one, or /product %s.", exampleDKP),
		Buttons: []Button{backButton(slug)},
	}
}

func emptyCategoryText(name string) string {
	return fmt.Sprintf(`No products found for %q.

Possible causes:
- the category is temporarily empty
- the catalog service did not answer

Try again later, or try /deals %s.`, name, exampleSlug)
}

func noDealsText(name string) string {
	return fmt.Sprintf("No discounted products found for %q right now.\nTry /deals %s or /product %s.", name, exampleSlug, exampleDKP)
}

func detailText(p catalog.Product) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString("\n\n")
	if p.Discounted() {
		fmt.Fprintf(&b, "Price: %s (%d%% off, was %s)\n", formatPrice(p.DiscountedPrice), p.DiscountPercent, formatPrice(p.MainPrice))
	} else {
		fmt.Fprintf(&b, "Price: %s\n", formatPrice(p.MainPrice))
	}
	if p.URL != "" {
		b.WriteString(p.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatPrice renders a display-unit price with thousands separators.
func formatPrice(v float64) string {
	raw := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(raw, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	out := b.String()
	if out == "" {
		out = "0"
	}
	if neg {
		out = "-" + out
	}
	if frac != "" {
		out += "." + frac
	}
	return out
}
