package scraper

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSite serves a small catalog in the markup of the real site
type fakeSite struct {
	t      *testing.T
	server *httptest.Server

	mu         sync.Mutex
	categories []string
	items      map[string][]string
	variants   map[string][]string
	missing    map[string]bool
	broken     map[string]bool
	flaky      map[string]int
	hits       map[string]int
	png        []byte
}

func newFakeSite(t *testing.T) *fakeSite {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 24))))

	s := &fakeSite{
		t:        t,
		items:    make(map[string][]string),
		variants: make(map[string][]string),
		missing:  make(map[string]bool),
		broken:   make(map[string]bool),
		flaky:    make(map[string]int),
		hits:     make(map[string]int),
		png:      buf.Bytes(),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

func (s *fakeSite) addCategory(name string, items ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, name)
	s.items[name] = items
}

// addVariants turns the page of category/model into a model page listing
// variants, the way the catalog shows engine versions of a car model
func (s *fakeSite) addVariants(category, model string, variants ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[category+"/"+model] = variants
}

// failTimes makes path answer 503 for the next n requests
func (s *fakeSite) failTimes(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flaky[path] = n
}

// missingImage makes the image of category/item answer 404
func (s *fakeSite) missingImage(category, item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missing["/img/"+category+"/"+item+".png"] = true
}

// brokenListing makes the category listing answer 404
func (s *fakeSite) brokenListing(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken[s.listingPath(category)] = true
}

func (s *fakeSite) listingPath(category string) string {
	return "/catalog/chip-tuning/" + category
}

func (s *fakeSite) itemPath(category, item string) string {
	return s.listingPath(category) + "/" + item
}

func (s *fakeSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *fakeSite) resetHits() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = make(map[string]int)
}

func (s *fakeSite) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[r.URL.Path]++

	path := r.URL.Path
	if s.flaky[path] > 0 {
		s.flaky[path]--
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	switch {
	case path == "/catalog/chip-tuning":
		s.writeGrid(w, "Chip tuning", s.categories, func(c string) (string, string) {
			return s.listingPath(c), "/img/brands/" + c + ".png"
		})
	case strings.HasPrefix(path, "/img/"):
		if s.missing[path] {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(s.png)
	case strings.HasPrefix(path, "/catalog/chip-tuning/"):
		parts := strings.Split(strings.TrimPrefix(path, "/catalog/chip-tuning/"), "/")
		items, ok := s.items[parts[0]]
		if !ok || s.broken[path] {
			http.NotFound(w, r)
			return
		}
		category := parts[0]
		if len(parts) == 1 {
			s.writeGrid(w, category, items, func(i string) (string, string) {
				return s.itemPath(category, i), "/img/" + category + "/" + i + "-thumb.png"
			})
			return
		}
		if variants, ok := s.variants[category+"/"+parts[1]]; ok {
			s.writeModel(w, category, parts[1], variants)
			return
		}
		s.writeDetail(w, category, parts[1])
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeSite) writeGrid(w http.ResponseWriter, title string, names []string, link func(string) (string, string)) {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><span class="breadcrump__active">%s</span><div class="col-md-10"><div class="row">`, title)
	for _, name := range names {
		href, thumb := link(name)
		fmt.Fprintf(&b, `<a href="%s"><div style="background-image:url(%s)"></div><p>%s</p></a>`, href, thumb, name)
	}
	b.WriteString(`</div></div></body></html>`)
	w.Write([]byte(b.String()))
}

func (s *fakeSite) writeDetail(w http.ResponseWriter, category, item string) {
	fmt.Fprintf(w, `<html><body>
<a class="breadcrump" href="/">Inicio</a>
<a class="breadcrump" href="%s">%s</a>
<span class="breadcrump__active">%s</span>
<div class="product"><img src="/img/%s/%s.png"></div>
<table><tr><th>Potencia</th><td>%s-hp</td></tr></table>
</body></html>`, s.listingPath(category), category, item, category, item, item)
}

func (s *fakeSite) writeModel(w http.ResponseWriter, category, model string, variants []string) {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body>
<a class="breadcrump" href="/">Inicio</a>
<a class="breadcrump" href="/catalog/chip-tuning">Chip tuning</a>
<a class="breadcrump" href="%s">%s</a>
<span class="breadcrump__active">%s</span>
<div class="col-md-10"><div class="row">`, s.listingPath(category), category, model)
	for _, v := range variants {
		fmt.Fprintf(&b, `<a href="%s/%s"><div style="background-image:url(/img/%s/%s/%s.png)"></div><p>%s</p></a>`,
			s.itemPath(category, model), v, category, model, v, v)
	}
	b.WriteString(`</div></div></body></html>`)
	w.Write([]byte(b.String()))
}
