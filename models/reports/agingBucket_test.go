package reports

import (
	"testing"
	"time"
)

func TestDaysOverdue(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	if got := DaysOverdue(asOf, nil); got != 0 {
		t.Fatalf("nil due date: got %d, want 0", got)
	}

	future := asOf.AddDate(0, 0, 10)
	if got := DaysOverdue(asOf, &future); got != 0 {
		t.Fatalf("future due date: got %d, want 0", got)
	}

	sameDay := asOf
	if got := DaysOverdue(asOf, &sameDay); got != 0 {
		t.Fatalf("due today: got %d, want 0", got)
	}

	past := asOf.AddDate(0, 0, -45)
	if got := DaysOverdue(asOf, &past); got != 45 {
		t.Fatalf("45 days past due: got %d, want 45", got)
	}
}

func TestAgingBucketLabel_Boundaries(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{0, AgingBucketCurrent},
		{1, AgingBucket1to30},
		{30, AgingBucket1to30},
		{31, AgingBucket31to60},
		{60, AgingBucket31to60},
		{61, AgingBucket61to90},
		{90, AgingBucket61to90},
		{91, AgingBucket90plus},
		{365, AgingBucket90plus},
	}
	for _, tc := range cases {
		if got := AgingBucketLabel(tc.days); got != tc.want {
			t.Errorf("AgingBucketLabel(%d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

// Every label must map back to a distinct ordering slot; the detail report
// group sort depends on it.
func TestAgingBucketOrder_CoversAllLabels(t *testing.T) {
	labels := []string{
		AgingBucketCurrent, AgingBucket1to30, AgingBucket31to60,
		AgingBucket61to90, AgingBucket90plus,
	}
	seen := map[int]bool{}
	for _, label := range labels {
		pos, ok := agingBucketOrder[label]
		if !ok {
			t.Fatalf("label %q missing from agingBucketOrder", label)
		}
		if seen[pos] {
			t.Fatalf("duplicate order slot %d for label %q", pos, label)
		}
		seen[pos] = true
	}
}
