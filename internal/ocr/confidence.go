package ocr

import "regexp"

var (
	reMonthMarker = regexp.MustCompile(`\d{1,2}月`)
	reKWhUnit     = regexp.MustCompile(`(?i)\d[\d,]*\s*kwh`)
	reYen         = regexp.MustCompile(`[\d,]+\s*円`)
)

// naive heuristic confidence that the text is a readable electricity bill
func heuristicConfidence(txt string) float32 {
	score := float32(0.2) // base
	if reMonthMarker.MatchString(txt) {
		score += 0.3
	}
	if reKWhUnit.MatchString(txt) {
		score += 0.3
	}
	if reYen.MatchString(txt) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
