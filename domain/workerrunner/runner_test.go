package workerrunner

import (
	"strings"
	"testing"
)

func TestSummarizeShortTextUnchanged(t *testing.T) {
	if got := summarize("  all done  "); got != "all done" {
		t.Errorf("summarize() = %q, want %q", got, "all done")
	}
}

func TestSummarizeTruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", summaryMaxLen+50)
	got := summarize(long)
	if len(got) != summaryMaxLen+len("…") {
		t.Errorf("summarize() length = %d, want %d", len(got), summaryMaxLen+len("…"))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("summarize() = %q, want ellipsis suffix", got)
	}
}
