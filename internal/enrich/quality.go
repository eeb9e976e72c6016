package enrich

import "github.com/justlist/facility-finder/internal/model"

// maxSocialPoints caps the social-media contribution to the quality
// score; maxSourcePoints caps the source diversity bonus.
const (
	maxSocialPoints = 2
	maxSourcePoints = 3
)

// QualityScore tallies field coverage into a point score. Core fields
// count one point each, social profiles up to two, and each distinct
// contributing source up to three.
func QualityScore(fac *model.Facility, sourcesUsed int) int {
	score := 0

	if fac.Name != "" {
		score++
	}
	if fac.FormattedAddress != "" || fac.Address != "" {
		score++
	}
	if fac.Phone != "" || fac.InternationalPhone != "" {
		score++
	}
	if fac.Website != "" {
		score++
	}
	if fac.Rating > 0 {
		score++
	}
	if fac.Email != "" {
		score++
	}
	if fac.Hours != "" {
		score++
	}
	if len(fac.Types) > 0 {
		score++
	}
	if fac.BusinessStatus != "" {
		score++
	}

	social := 0
	for _, handle := range []string{fac.Facebook, fac.Twitter, fac.LinkedIn, fac.YouTube, fac.Instagram} {
		if handle != "" {
			social++
		}
	}
	score += min(social, maxSocialPoints)
	score += min(sourcesUsed, maxSourcePoints)

	return score
}
