package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"tuniscraper/pkg/config"
	errs "tuniscraper/pkg/errors"
	"tuniscraper/pkg/models"
)

// backgroundImageRE pulls the URL out of an inline background-image style
var backgroundImageRE = regexp.MustCompile(`background-image:\s*url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// Extractor reads categories, items and item details from catalog pages
type Extractor struct {
	sel config.SelectorsConfig
}

// New creates an extractor using the given selectors
func New(sel config.SelectorsConfig) *Extractor {
	return &Extractor{sel: sel}
}

// link is one grid entry: an anchor with a caption and an optional thumbnail
type link struct {
	name      string
	url       string
	thumbnail string
}

// gridLinks returns the grid anchors in document order. Relative URLs are
// resolved against pageURL and repeated targets are dropped.
func (e *Extractor) gridLinks(doc *goquery.Document, pageURL string) ([]link, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, errs.Parse(pageURL, "invalid page URL")
	}

	var links []link
	seen := make(map[string]bool)
	doc.Find(e.sel.Grid).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		abs := resolve(base, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true

		name := cleanText(s.Find(e.sel.Caption).First().Text())
		if name == "" {
			name = cleanText(s.Text())
		}

		var thumb string
		if style, ok := s.Find(e.sel.Thumbnail).First().Attr("style"); ok {
			if m := backgroundImageRE.FindStringSubmatch(style); m != nil {
				thumb = resolve(base, m[1])
			}
		}

		links = append(links, link{name: name, url: abs, thumbnail: thumb})
	})

	return links, nil
}

// Categories extracts the category index from the catalog root page
func (e *Extractor) Categories(doc *goquery.Document, pageURL string) ([]models.Category, error) {
	links, err := e.gridLinks(doc, pageURL)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, errs.Parse(pageURL, "no categories found")
	}

	categories := make([]models.Category, 0, len(links))
	for _, l := range links {
		if l.name == "" {
			continue
		}
		categories = append(categories, models.Category{Name: l.name, URL: l.url})
	}
	if len(categories) == 0 {
		return nil, errs.Parse(pageURL, "categories have no names")
	}
	return categories, nil
}

// Items extracts the item links of one category listing
func (e *Extractor) Items(doc *goquery.Document, pageURL, category string) ([]models.Item, error) {
	links, err := e.gridLinks(doc, pageURL)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, errs.Parse(pageURL, "no items found")
	}

	items := make([]models.Item, 0, len(links))
	for _, l := range links {
		items = append(items, models.Item{
			Category:     category,
			Name:         l.name,
			URL:          l.url,
			ThumbnailURL: l.thumbnail,
		})
	}
	return items, nil
}

// Detail extracts an item's detail page. Fields the page does not carry are
// left empty; only a page without a title, breadcrumb or variant grid is a
// parse error. A model page of the catalog lists its variants in the same grid
// markup as the listings; they are returned in Variants.
func (e *Extractor) Detail(doc *goquery.Document, pageURL string) (models.Detail, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return models.Detail{}, errs.Parse(pageURL, "invalid page URL")
	}

	var detail models.Detail

	doc.Find(e.sel.Breadcrumb).Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			detail.Breadcrumb = append(detail.Breadcrumb, text)
			detail.Parent = text
		}
	})
	active := cleanText(doc.Find(e.sel.ActiveCrumb).First().Text())
	if active != "" {
		detail.Breadcrumb = append(detail.Breadcrumb, active)
		detail.Current = active
	}

	detail.Title = cleanText(doc.Find(e.sel.Title).First().Text())
	if detail.Title == "" {
		detail.Title = active
	}

	doc.Find(e.sel.Attributes).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return
		}
		name := strings.TrimSuffix(cleanText(cells.Eq(0).Text()), ":")
		value := cleanText(cells.Eq(1).Text())
		if name == "" {
			return
		}
		detail.Attributes = append(detail.Attributes, models.Attribute{Name: name, Value: value})
	})

	if src, ok := doc.Find(e.sel.DetailImage).First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		detail.ImageURL = resolve(base, strings.TrimSpace(src))
	}

	links, err := e.gridLinks(doc, pageURL)
	if err != nil {
		return models.Detail{}, err
	}
	for _, l := range links {
		detail.Variants = append(detail.Variants, models.Item{
			Name:         l.name,
			URL:          l.url,
			ThumbnailURL: l.thumbnail,
		})
	}

	if detail.Title == "" && len(detail.Breadcrumb) == 0 && len(detail.Variants) == 0 {
		return models.Detail{}, errs.Parse(pageURL, "detail page has no title, breadcrumb or variants")
	}
	return detail, nil
}

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// cleanText collapses runs of whitespace
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
