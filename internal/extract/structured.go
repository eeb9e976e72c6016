package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Structured-data types that describe a business entity.
var businessTypes = map[string]bool{
	"LocalBusiness": true,
	"Organization":  true,
	"Business":      true,
}

var yearRe = regexp.MustCompile(`[12][0-9]{3}`)

// localBusiness is the subset of JSON-LD fields the pipeline consumes.
type localBusiness struct {
	Type         string          `json:"@type"`
	Description  string          `json:"description"`
	Telephone    string          `json:"telephone"`
	Email        string          `json:"email"`
	Address      json.RawMessage `json:"address"`
	OpeningHours []string        `json:"openingHours"`
	FoundingDate string          `json:"foundingDate"`
}

// applyStructuredData overrides heuristic extractions with values from
// embedded JSON-LD blocks, which are authoritative when present. Malformed
// blocks are skipped.
func applyStructuredData(doc *goquery.Document, r *Result) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var lb localBusiness
		if err := json.Unmarshal([]byte(s.Text()), &lb); err != nil {
			return
		}
		if !businessTypes[lb.Type] {
			return
		}

		if lb.Description != "" {
			r.Description = truncate(lb.Description, 500)
		}
		if lb.Telephone != "" {
			r.Phones = []string{lb.Telephone}
		}
		if lb.Email != "" && ValidEmail(lb.Email) {
			r.Email = lb.Email
		}
		if addr := structuredAddress(lb.Address); addr != "" {
			r.Address = addr
		}
		if len(lb.OpeningHours) > 0 {
			r.Hours = strings.Join(lb.OpeningHours, ", ")
		}
		if year := yearRe.FindString(lb.FoundingDate); year != "" {
			r.EstablishedYear = year
		}
	})
}

// structuredAddress handles both string addresses and PostalAddress objects.
func structuredAddress(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		StreetAddress string `json:"streetAddress"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.StreetAddress)
	}
	return ""
}
