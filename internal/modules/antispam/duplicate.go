package antispam

import (
	"strings"

	"sentinel-automod/internal/ratelimit"
	"sentinel-automod/internal/utils"

	"github.com/agnivade/levenshtein"
)

// DuplicateDetector flags subjects that keep posting near-identical content.
// The comparison baseline is always the latest retained entry: either the
// subject's first message or the last one that was similar enough to count.
type DuplicateDetector struct {
	limiter     *ratelimit.MessageRateLimiter
	maxDistance int
}

func NewDuplicateDetector(limiter *ratelimit.MessageRateLimiter, maxDistance int) *DuplicateDetector {
	if maxDistance < 1 {
		maxDistance = 5
	}
	return &DuplicateDetector{limiter: limiter, maxDistance: maxDistance}
}

func (d *DuplicateDetector) Check(subject ratelimit.Subject, entry utils.Entry) Verdict {
	content := strings.TrimSpace(entry.Content)
	if content == "" {
		return Verdict{}
	}
	entry.Content = content

	added, hadBaseline, triggered := d.limiter.AddIf(subject, entry, func(latest utils.Entry, ok bool) bool {
		return !ok || d.Similar(latest.Content, content)
	})
	if !added || !hadBaseline || !triggered {
		return Verdict{}
	}
	return Verdict{Triggered: true, Reason: "spamming copied and pasted messages."}
}

// Similar reports whether two trimmed texts are within the edit distance limit.
func (d *DuplicateDetector) Similar(a, b string) bool {
	return levenshtein.ComputeDistance(strings.TrimSpace(a), strings.TrimSpace(b)) < d.maxDistance
}
