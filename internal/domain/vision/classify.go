package vision

import "strings"

// Label is one annotation from a label-detection service.
type Label struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Result is a wound classification derived from image labels.
type Result struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
}

// minScore is the confidence floor; labels at or below it are ignored.
const minScore = 0.75

// woundTypes maps wound types to the label keywords that indicate them. The
// table is ordered by priority, not alphabetically: the first type whose
// keyword matches any label wins.
var woundTypes = []struct {
	name     string
	keywords []string
}{
	{"burn", []string{"burn"}},
	{"scrape", []string{"scrape", "abrasion"}},
	{"cut", []string{"cut", "laceration"}},
	{"puncture", []string{"puncture"}},
	{"ulcer", []string{"ulcer"}},
	{"blister", []string{"blister"}},
}

var severityByType = map[string]string{
	"burn":     "moderate",
	"cut":      "moderate",
	"puncture": "moderate",
	"ulcer":    "severe",
}

// ClassifyLabels maps detected labels to a wound type and severity. Labels
// with confidence at or below 0.75 are discarded; if none survive, both
// fields come back "unknown".
func ClassifyLabels(labels []Label) Result {
	var confident []string
	for _, l := range labels {
		if l.Score > minScore {
			confident = append(confident, strings.ToLower(l.Description))
		}
	}
	if len(confident) == 0 {
		return Result{Type: "unknown", Severity: "unknown"}
	}

	for _, wt := range woundTypes {
		for _, name := range confident {
			for _, kw := range wt.keywords {
				if strings.Contains(name, kw) {
					severity := severityByType[wt.name]
					if severity == "" {
						severity = "minor"
					}
					return Result{Type: wt.name, Severity: severity}
				}
			}
		}
	}
	return Result{Type: "unknown", Severity: "unknown"}
}
