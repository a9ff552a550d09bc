package chapters

import "fmt"

// IssueKind classifies a structural problem in a chapter list.
type IssueKind string

const (
	IssueInverted   IssueKind = "inverted"
	IssueUnordered  IssueKind = "unordered"
	IssueOverlap    IssueKind = "overlap"
	IssueScoreRange IssueKind = "score_out_of_range"
	IssueNegative   IssueKind = "negative_time"
)

// Issue describes one problem found by Inspect. Index is the position of the
// offending chapter in the inspected slice.
type Issue struct {
	Index  int
	Kind   IssueKind
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("chapter %d: %s: %s", i.Index, i.Kind, i.Detail)
}

// Inspect reports ordering, overlap, and range problems without modifying
// the list. Chapter lists from the collaborator are accepted as-is; callers
// log these as warnings.
func Inspect(chs []Chapter) []Issue {
	var issues []Issue
	for i, ch := range chs {
		if ch.Start < 0 || ch.End < 0 {
			issues = append(issues, Issue{Index: i, Kind: IssueNegative, Detail: fmt.Sprintf("start=%.3f end=%.3f", ch.Start, ch.End)})
		}
		if ch.Start >= ch.End {
			issues = append(issues, Issue{Index: i, Kind: IssueInverted, Detail: fmt.Sprintf("start=%.3f end=%.3f", ch.Start, ch.End)})
		}
		if ch.EngagementScore < 0 || ch.EngagementScore > 1 {
			issues = append(issues, Issue{Index: i, Kind: IssueScoreRange, Detail: fmt.Sprintf("engagement_score=%.3f", ch.EngagementScore)})
		}
		if i == 0 {
			continue
		}
		prev := chs[i-1]
		if ch.Start < prev.Start {
			issues = append(issues, Issue{Index: i, Kind: IssueUnordered, Detail: fmt.Sprintf("starts at %.3f before previous start %.3f", ch.Start, prev.Start)})
		} else if ch.Start < prev.End {
			issues = append(issues, Issue{Index: i, Kind: IssueOverlap, Detail: fmt.Sprintf("starts at %.3f before previous end %.3f", ch.Start, prev.End)})
		}
	}
	return issues
}

// Playable reports whether the chapter window can produce a clip.
func (c Chapter) Playable() bool { return c.Start >= 0 && c.End > c.Start }

// Playable drops chapters whose window cannot produce a clip.
func Playable(chs []Chapter) []Chapter {
	out := make([]Chapter, 0, len(chs))
	for _, ch := range chs {
		if ch.Playable() {
			out = append(out, ch)
		}
	}
	return out
}
