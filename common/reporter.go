package common

import "time"

type ReporterState struct {
	Count       int
	CountInc    int
	ElapsedTime float64
}

// Reporter rate-limits progress logging for tight loops. A report is due
// once the count increment or the elapsed time passes its threshold.
type Reporter struct {
	countThreshold int
	interval       time.Duration
	format         func(ReporterState) string

	count     int
	startTime time.Time

	lastReportTime  time.Time
	lastReportCount int
}

func NewReporter(countThreshold int, interval time.Duration, format func(ReporterState) string) *Reporter {
	return &Reporter{
		countThreshold: countThreshold,
		interval:       interval,
		format:         format,
		startTime:      time.Now(),
		lastReportTime: time.Now(),
	}
}

func (r *Reporter) Add(count int) (bool, string) {
	r.count += count

	countInc := r.count - r.lastReportCount
	elapsed := time.Since(r.lastReportTime).Seconds()
	if (r.countThreshold != 0 && countInc >= r.countThreshold) || elapsed >= r.interval.Seconds() {
		report := r.format(ReporterState{Count: r.count, CountInc: countInc, ElapsedTime: elapsed})
		r.lastReportTime = time.Now()
		r.lastReportCount = r.count
		return true, report
	}
	return false, ""
}

func (r *Reporter) Count() int {
	return r.count
}
