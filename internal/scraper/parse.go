package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bot-afiliados/internal/models"
)

var (
	priceRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	ratingRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// parsePrice extrai o primeiro valor de um texto de preço em formato americano ("$1,299.99")
func parsePrice(text string) (float64, bool) {
	m := priceRe.FindString(strings.ReplaceAll(text, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return models.RoundPrice(v), true
}

// parseRating extrai a nota de textos como "4.5 out of 5 stars"
func parseRating(text string) *float64 {
	m := ratingRe.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 || v > 5 {
		return nil
	}
	return &v
}

// parseCount lê contagens como "(1,234)"
func parseCount(text string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	n, _ := strconv.Atoi(digits)
	return n
}

func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstAttr(s *goquery.Selection, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := s.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	electronicsKeywords = []string{"phone", "laptop", "computer", "tablet", "headphone", "speaker", "tv", "monitor", "camera", "gaming", "console", "iphone", "samsung", "apple", "sony", "lg"}
	clothingKeywords    = []string{"shirt", "pants", "dress", "shoes", "jacket", "coat", "jeans", "sneakers", "boots", "hat", "cap", "sweater", "hoodie", "shorts"}
	womenKeywords       = []string{"women", "womens", "women's", "female", "girl", "ladies"}
	beautyKeywords      = []string{"makeup", "lipstick", "foundation", "mascara", "skincare", "cream", "serum", "perfume", "cologne", "beauty", "cosmetic"}
	kitchenKeywords     = []string{"kitchen", "cooking", "pot", "pan", "knife", "blender", "mixer", "coffee", "maker", "cookware", "utensil"}
	householdKeywords   = []string{"vacuum", "cleaning", "furniture", "home", "decor", "lamp", "chair", "table", "bed", "storage"}
)

// Categorize escolhe a categoria pelo título usando palavras-chave.
// Sem correspondência, o produto vai para electronics.
func Categorize(title string) string {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, electronicsKeywords):
		return "electronics"
	case containsAny(t, clothingKeywords):
		if containsAny(t, womenKeywords) {
			return "womens_clothing"
		}
		return "mens_clothing"
	case containsAny(t, beautyKeywords):
		return "beauty"
	case containsAny(t, kitchenKeywords):
		return "kitchen"
	case containsAny(t, householdKeywords):
		return "household"
	default:
		return "electronics"
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
