// internal/intake/rules/destination.go
package rules

import (
	"regexp"
	"strings"
)

var (
	reGoiania       = regexp.MustCompile(`(?i)goiania`)
	reAnapolis      = regexp.MustCompile(`(?i)anapolis`)
	reTrindade      = regexp.MustCompile(`(?i)trindade`)
	reSenadorCanedo = regexp.MustCompile(`(?i)senador canedo`)
	reAparecida     = regexp.MustCompile(`(?i)aparecida`)
)

// knownCities guards the home-city default: a bare city name must not get a
// "- Goiânia" suffix glued onto it.
var knownCities = []string{
	"goiânia", "goiania",
	"anápolis", "anapolis",
	"trindade",
	"senador canedo",
	"aparecida",
}

// RequiresProad decides whether the destination needs an administrative
// reference code. The match runs on the raw (un-normalized) destination:
// anything that does not mention the home city is an outside trip. Aparecida
// de Goiânia deliberately does not match.
func RequiresProad(destination string) bool {
	if destination == "" {
		return false
	}
	lower := strings.ToLower(destination)
	return !strings.Contains(lower, "goiânia") && !strings.Contains(lower, "goiania")
}

// applyHomeCityDefault appends the home city to a destination that carries no
// city suffix, e.g. "Fórum" becomes "Fórum - Goiânia". Destinations that
// already name a city are left alone.
func applyHomeCityDefault(destination string) string {
	trimmed := strings.TrimSpace(destination)
	if trimmed == "" || strings.Contains(trimmed, " - ") {
		return trimmed
	}

	lower := strings.ToLower(trimmed)
	for _, city := range knownCities {
		if strings.Contains(lower, city) {
			return trimmed
		}
	}

	return trimmed + " - " + HomeCity
}

// NormalizeDestination canonicalizes the destination for persistence and
// reporting: accent fixes for the common cities, the Aparecida de Goiânia
// expansion, and collapsing "City - City" redundancy. The raw value keeps
// driving the PROAD decision.
func NormalizeDestination(destination string) string {
	if strings.TrimSpace(destination) == "" {
		return destination
	}

	result := strings.TrimSpace(destination)

	result = reGoiania.ReplaceAllString(result, "Goiânia")
	result = reAnapolis.ReplaceAllString(result, "Anápolis")
	result = reTrindade.ReplaceAllString(result, "Trindade")
	result = reSenadorCanedo.ReplaceAllString(result, "Senador Canedo")

	lower := strings.ToLower(result)
	if strings.Contains(lower, "aparecida") &&
		!strings.Contains(lower, "aparecida de goiânia") &&
		!strings.Contains(lower, "aparecida de goiania") {
		result = reAparecida.ReplaceAllString(result, "Aparecida de Goiânia")
	}

	parts := strings.Split(result, " - ")
	if len(parts) == 2 {
		place := strings.TrimSpace(parts[0])
		city := strings.TrimSpace(parts[1])
		if strings.EqualFold(place, city) {
			result = city
		}
	}

	return result
}
