package compliance

import "strings"

// Path substrings that hint at sensitive, non-public areas of a site.
// Matching one is a warning, not a violation: the page may still be public.
var sensitivePaths = []string{
	"/admin",
	"/private",
	"/internal",
	"/secure",
	"/login",
	"/dashboard",
	"/api/private",
	"/user/",
	"/profile/",
	"/account/",
}

// sensitivePathWarnings returns one warning per sensitive pattern the URL
// path contains.
func sensitivePathWarnings(urlPath string) []string {
	lower := strings.ToLower(urlPath)

	var warnings []string
	for _, p := range sensitivePaths {
		if strings.Contains(lower, p) {
			warnings = append(warnings, "URL contains potentially sensitive pattern: "+p)
		}
	}
	return warnings
}
