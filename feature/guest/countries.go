package guest

import "strings"

// countryNames is the canonical spelling of every country a hometown may
// name. Lookups go through matchCountry, never this set directly.
var countryNames = map[string]bool{
	"Afghanistan": true, "Albania": true, "Algeria": true, "Andorra": true,
	"Angola": true, "Argentina": true, "Armenia": true, "Australia": true,
	"Austria": true, "Azerbaijan": true, "Bahamas": true, "Bahrain": true,
	"Bangladesh": true, "Barbados": true, "Belarus": true, "Belgium": true,
	"Belize": true, "Benin": true, "Bolivia": true, "Bosnia And Herzegovina": true,
	"Botswana": true, "Brazil": true, "Bulgaria": true, "Cambodia": true,
	"Cameroon": true, "Canada": true, "Chile": true, "China": true,
	"Colombia": true, "Costa Rica": true, "Croatia": true, "Cuba": true,
	"Cyprus": true, "Czech Republic": true, "Denmark": true,
	"Dominican Republic": true, "Ecuador": true, "Egypt": true,
	"El Salvador": true, "Estonia": true, "Ethiopia": true, "Fiji": true,
	"Finland": true, "France": true, "Georgia": true, "Germany": true,
	"Ghana": true, "Greece": true, "Guatemala": true, "Haiti": true,
	"Honduras": true, "Hungary": true, "Iceland": true, "India": true,
	"Indonesia": true, "Iran": true, "Iraq": true, "Ireland": true,
	"Israel": true, "Italy": true, "Jamaica": true, "Japan": true,
	"Jordan": true, "Kazakhstan": true, "Kenya": true, "Kuwait": true,
	"Latvia": true, "Lebanon": true, "Lithuania": true, "Luxembourg": true,
	"Malaysia": true, "Malta": true, "Mexico": true, "Monaco": true,
	"Mongolia": true, "Montenegro": true, "Morocco": true, "Mozambique": true,
	"Myanmar": true, "Nepal": true, "Netherlands": true, "New Zealand": true,
	"Nicaragua": true, "Nigeria": true, "North Macedonia": true,
	"Norway": true, "Oman": true, "Pakistan": true, "Panama": true,
	"Paraguay": true, "Peru": true, "Philippines": true, "Poland": true,
	"Portugal": true, "Qatar": true, "Romania": true, "Russia": true,
	"Saudi Arabia": true, "Senegal": true, "Serbia": true, "Singapore": true,
	"Slovakia": true, "Slovenia": true, "South Africa": true,
	"South Korea": true, "Spain": true, "Sri Lanka": true, "Sweden": true,
	"Switzerland": true, "Taiwan": true, "Tanzania": true, "Thailand": true,
	"Tunisia": true, "Turkey": true, "Uganda": true, "Ukraine": true,
	"United Arab Emirates": true, "United Kingdom": true,
	"United States": true, "Uruguay": true, "Venezuela": true,
	"Vietnam": true, "Zambia": true, "Zimbabwe": true,
}

// countryAliases maps the spellings guests actually type onto canonical
// names.
var countryAliases = map[string]string{
	"usa":            "United States",
	"us":             "United States",
	"u.s.":           "United States",
	"u.s.a.":         "United States",
	"america":        "United States",
	"estados unidos": "United States",
	"uk":             "United Kingdom",
	"u.k.":           "United Kingdom",
	"england":        "United Kingdom",
	"scotland":       "United Kingdom",
	"wales":          "United Kingdom",
	"great britain":  "United Kingdom",
	"méxico":         "Mexico",
	"mejico":         "Mexico",
	"uae":            "United Arab Emirates",
	"holland":        "Netherlands",
	"korea":          "South Korea",
	"brasil":         "Brazil",
	"españa":         "Spain",
	"deutschland":    "Germany",
	"czechia":        "Czech Republic",
	"viet nam":       "Vietnam",
	"burma":          "Myanmar",
	"russian federation": "Russia",
}

// matchCountry resolves a free-form country string to its canonical name.
func matchCountry(raw string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return "", false
	}
	if canonical, ok := countryAliases[lowered]; ok {
		return canonical, true
	}
	titled := titleCaser.String(lowered)
	if countryNames[titled] {
		return titled, true
	}
	return "", false
}
