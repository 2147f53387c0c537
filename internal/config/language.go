package config

import (
	"net/url"
	"strings"

	"github.com/nao1215/recipescout/internal/model"
)

// alwaysEnglish lists sites that pass the language filter unconditionally.
var alwaysEnglish = []string{
	"allrecipes.com",
	"foodnetwork.com",
	"epicurious.com",
	"simplyrecipes.com",
	"seriouseats.com",
	"bonappetit.com",
	"tasteofhome.com",
	"delish.com",
	"eatingwell.com",
	"food.com",
	"bbcgoodfood.com",
	"kingarthurbaking.com",
	"sallysbakingaddiction.com",
	"budgetbytes.com",
	"minimalistbaker.com",
	"cookieandkate.com",
	"smittenkitchen.com",
	"thepioneerwoman.com",
	"skinnytaste.com",
	"damndelicious.net",
}

var nonEnglishTLDs = []string{
	".nl", ".be",
	".de", ".at", ".ch",
	".fr",
	".es", ".mx", ".ar", ".co",
	".it",
	".pt", ".br",
	".se", ".no", ".dk", ".fi",
	".pl", ".cz", ".hu", ".ru", ".tr", ".gr",
	".jp", ".kr", ".cn", ".tw", ".hk", ".th", ".vn",
}

var nonEnglishKeywords = []string{
	"recepten", "koken", "eten",
	"rezepte", "kochen", "essen",
	"recettes", "cuisine", "manger",
	"recetas", "cocina", "comer",
	"ricette", "cucina", "mangiare",
	"receitas", "cozinha",
}

// IsEnglishSite reports whether a URL or bare domain is likely an English site.
// Known English sites always pass. Otherwise non-English country TLDs and
// non-English cooking words in the host or path reject the site.
func IsEnglishSite(rawURL string) bool {
	s := strings.TrimSpace(rawURL)
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)

	for _, d := range alwaysEnglish {
		if strings.Contains(host, d) {
			return true
		}
	}
	for _, tld := range nonEnglishTLDs {
		if strings.HasSuffix(host, tld) {
			return false
		}
	}
	for _, kw := range nonEnglishKeywords {
		if strings.Contains(host, kw) || strings.Contains(path, kw) {
			return false
		}
	}
	return true
}

// FilterEnglishSites keeps the sites whose domain passes IsEnglishSite.
func FilterEnglishSites(sites []model.Site) []model.Site {
	out := make([]model.Site, 0, len(sites))
	for _, s := range sites {
		if IsEnglishSite(s.Domain) {
			out = append(out, s)
		}
	}
	return out
}
