package reports

import "time"

// Bucket labels shared by the receivable and payable aging reports. The SQL
// emits the same strings so the Go-side grouping and the raw rows agree.
const (
	AgingBucketCurrent = "current"
	AgingBucket1to30   = "int1to30"
	AgingBucket31to60  = "int31to60"
	AgingBucket61to90  = "int61to90"
	AgingBucket90plus  = "int90plus"
)

var agingBucketOrder = map[string]int{
	AgingBucketCurrent: 0,
	AgingBucket1to30:   1,
	AgingBucket31to60:  2,
	AgingBucket61to90:  3,
	AgingBucket90plus:  4,
}

// DaysOverdue is the age of an outstanding document: zero while the due date
// is unset or still in the future, whole days past due otherwise.
func DaysOverdue(asOf time.Time, dueDate *time.Time) int {
	if dueDate == nil {
		return 0
	}
	days := int(asOf.Sub(*dueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AgingBucketLabel partitions an age in days into exactly one bucket.
func AgingBucketLabel(daysOverdue int) string {
	switch {
	case daysOverdue <= 0:
		return AgingBucketCurrent
	case daysOverdue <= 30:
		return AgingBucket1to30
	case daysOverdue <= 60:
		return AgingBucket31to60
	case daysOverdue <= 90:
		return AgingBucket61to90
	default:
		return AgingBucket90plus
	}
}
