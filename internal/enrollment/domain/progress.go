package domain

// Progress computes the completion percentage from the count of
// distinct completed lessons and the course's total lesson count,
// clamped to 100. A course with no lessons reports zero progress.
func Progress(completedLessons, totalLessons int) float64 {
	if totalLessons <= 0 {
		return 0
	}
	pct := float64(completedLessons) / float64(totalLessons) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ProgressComplete reports whether a percentage counts as full
// completion.
func ProgressComplete(pct float64) bool {
	return pct >= 100
}
