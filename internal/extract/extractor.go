// Package extract pulls contact, social, and descriptive fields out of a
// fetched HTML document. Every extraction is best effort: a field that
// cannot be found comes back empty without affecting the others.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// maxPhones caps how many phone candidates a page may contribute.
const maxPhones = 3

// Result is the bag of fields extracted from one page.
type Result struct {
	Email           string
	WhatsApp        string
	Instagram       string
	Facebook        string
	Twitter         string
	LinkedIn        string
	YouTube         string
	EstablishedYear string
	Phones          []string
	Address         string
	Hours           string
	Description     string
}

// Empty reports whether nothing at all was extracted.
func (r *Result) Empty() bool {
	return r.Email == "" && r.WhatsApp == "" && r.Instagram == "" &&
		r.Facebook == "" && r.Twitter == "" && r.LinkedIn == "" &&
		r.YouTube == "" && r.EstablishedYear == "" && len(r.Phones) == 0 &&
		r.Address == "" && r.Hours == "" && r.Description == ""
}

var (
	emailRe      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	emailExactRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRes     = []*regexp.Regexp{
		regexp.MustCompile(`\+?[\d][\d\s\-()]{9,}`),
		regexp.MustCompile(`\(\d{3}\)\s?\d{3}-\d{4}`),
		regexp.MustCompile(`\d{3}-\d{3}-\d{4}`),
	}
	nonPhoneCharRe = regexp.MustCompile(`[^\d+]`)
)

// Temporal keywords that introduce an establishment year.
var yearKeywords = []string{"since", "established", "founded", "started", "opened"}

// FromHTML parses a document and extracts all supported fields. Only a
// document that cannot be parsed at all yields an error.
func FromHTML(html string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse document")
	}

	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}

	r := &Result{
		Email:           extractEmail(doc, text),
		WhatsApp:        extractWhatsApp(doc),
		Instagram:       extractInstagram(doc),
		Facebook:        firstLink(doc, "facebook.com"),
		Twitter:         firstSocialLink(doc, "twitter.com", "x.com"),
		LinkedIn:        firstLink(doc, "linkedin.com"),
		YouTube:         firstLink(doc, "youtube.com"),
		EstablishedYear: extractEstablishedYear(text, time.Now().Year()),
		Phones:          extractPhones(text),
		Address:         firstSelectorText(doc, addressSelectors),
		Hours:           firstSelectorText(doc, hoursSelectors),
		Description:     extractDescription(doc),
	}

	// Structured linked data is authoritative and overrides heuristics.
	applyStructuredData(doc, r)

	return r, nil
}

// extractEmail prefers mailto links, then falls back to scanning visible text.
func extractEmail(doc *goquery.Document, text string) string {
	if href, ok := doc.Find(`a[href^="mailto:"]`).First().Attr("href"); ok {
		email := strings.TrimSpace(strings.TrimPrefix(href, "mailto:"))
		if i := strings.IndexByte(email, '?'); i >= 0 {
			email = email[:i]
		}
		if ValidEmail(email) {
			return email
		}
	}

	for _, candidate := range emailRe.FindAllString(text, -1) {
		if ValidEmail(candidate) {
			return candidate
		}
	}
	return ""
}

// ValidEmail reports whether s looks like a complete email address.
func ValidEmail(s string) bool {
	return emailExactRe.MatchString(s)
}

// extractWhatsApp pulls the number out of wa.me or whatsapp.com links.
func extractWhatsApp(doc *goquery.Document) string {
	for _, marker := range []string{"wa.me", "whatsapp.com"} {
		href, ok := doc.Find(fmt.Sprintf(`a[href*=%q]`, marker)).First().Attr("href")
		if !ok {
			continue
		}
		if handle := handleAfter(href, marker+"/"); handle != "" {
			return handle
		}
	}
	return ""
}

// extractInstagram returns the handle from an instagram.com link.
func extractInstagram(doc *goquery.Document) string {
	href, ok := doc.Find(`a[href*="instagram.com"]`).First().Attr("href")
	if !ok {
		return ""
	}
	handle := handleAfter(href, "instagram.com/")
	if strings.HasPrefix(handle, "http") {
		return ""
	}
	return handle
}

// handleAfter takes the path segment after marker, trimmed of query strings
// and slashes.
func handleAfter(href, marker string) string {
	_, rest, ok := strings.Cut(href, marker)
	if !ok {
		return ""
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}
	return strings.Trim(rest, "/")
}

func firstLink(doc *goquery.Document, domain string) string {
	href, _ := doc.Find(fmt.Sprintf(`a[href*=%q]`, domain)).First().Attr("href")
	return href
}

func firstSocialLink(doc *goquery.Document, domains ...string) string {
	for _, d := range domains {
		if href := firstLink(doc, d); href != "" {
			return href
		}
	}
	return ""
}

// extractEstablishedYear scans visible text for a temporal keyword followed
// by a plausible 4-digit year.
func extractEstablishedYear(text string, currentYear int) string {
	lower := strings.ToLower(text)
	for _, kw := range yearKeywords {
		re := regexp.MustCompile(kw + `[\s:]*(?:in[\s:]+)?([12][0-9]{3})`)
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if year >= 1900 && year <= currentYear {
			return m[1]
		}
	}
	return ""
}

// extractPhones returns up to maxPhones phone-number candidates.
func extractPhones(text string) []string {
	var phones []string
	seen := make(map[string]bool)

	for _, re := range phoneRes {
		for _, match := range re.FindAllString(text, -1) {
			digits := nonPhoneCharRe.ReplaceAllString(match, "")
			if len(digits) < 10 || seen[digits] {
				continue
			}
			seen[digits] = true
			phones = append(phones, strings.TrimSpace(match))
			if len(phones) == maxPhones {
				return phones
			}
		}
	}
	return phones
}

var addressSelectors = []string{
	`[itemprop="address"]`,
	".address",
	".location",
	`[class*="address"]`,
	`[class*="location"]`,
}

var hoursSelectors = []string{
	`[itemprop="openingHours"]`,
	".hours",
	".business-hours",
	`[class*="hours"]`,
	`[class*="time"]`,
}

// firstSelectorText returns the text of the first selector that matches.
func firstSelectorText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if text := strings.TrimSpace(node.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

var descriptionSelectors = []string{
	`[itemprop="description"]`,
	".description",
	".about",
	`[class*="description"]`,
	`[class*="about"]`,
}

// extractDescription prefers the meta description, then any substantial
// descriptive block, truncated to 500 characters.
func extractDescription(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if desc := strings.TrimSpace(content); desc != "" {
			return truncate(desc, 500)
		}
	}

	for _, sel := range descriptionSelectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if len(text) > 50 {
			return truncate(text, 500)
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
