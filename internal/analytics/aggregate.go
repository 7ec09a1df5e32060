// Package analytics aggregates stored compliance logs and violation events
// into dashboard series. Every function here is pure: same snapshot in,
// same result out, and empty input yields zero-valued results.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type Event struct {
	Timestamp time.Time
	Type      string
	X         float64
	Y         float64
}

type LogEntry struct {
	Timestamp  time.Time
	Persons    int
	Compliant  int
	Violations int
}

// Window is a closed time interval [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

func LastDays(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

func LastHours(now time.Time, hours int) Window {
	return Window{Start: now.Add(-time.Duration(hours) * time.Hour), End: now}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type DailySummary struct {
	Date            string  `json:"date"`
	TotalLogs       int     `json:"total_logs"`
	TotalPersons    int     `json:"total_persons"`
	TotalCompliant  int     `json:"total_compliant"`
	TotalViolations int     `json:"total_violations"`
	ComplianceRate  float64 `json:"compliance_rate"`
}

type Metrics struct {
	TotalLogs       int     `json:"total_logs_24h"`
	TotalPersons    int     `json:"total_persons_24h"`
	TotalViolations int     `json:"total_violations_24h"`
	TotalEvents     int     `json:"total_events_24h"`
	ComplianceRate  float64 `json:"compliance_rate_24h"`
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// HourlyViolationTrends buckets events by UTC hour of day. The result
// always has 24 entries ordered by hour.
func HourlyViolationTrends(events []Event, window Window) []HourCount {
	buckets := make([]HourCount, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, e := range events {
		if !window.Contains(e.Timestamp) {
			continue
		}
		buckets[e.Timestamp.UTC().Hour()].Count++
	}
	return buckets
}

// ViolationTypeDistribution counts events per type, ordered by descending
// count and then by type name.
func ViolationTypeDistribution(events []Event) []TypeCount {
	counts := map[string]int{}
	for _, e := range events {
		counts[e.Type]++
	}

	out := make([]TypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TypeCount{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyComplianceSummary returns one entry per UTC calendar day touched by
// the window, oldest first. Days without logs are present with zero totals
// and a zero rate.
func DailyComplianceSummary(logs []LogEntry, window Window) []DailySummary {
	if window.End.Before(window.Start) {
		return []DailySummary{}
	}

	first, last := utcDay(window.Start), utcDay(window.End)
	days := int(last.Sub(first).Hours()/24) + 1
	out := make([]DailySummary, days)
	for i := range out {
		out[i].Date = first.AddDate(0, 0, i).Format(time.DateOnly)
	}

	for _, l := range logs {
		if !window.Contains(l.Timestamp) {
			continue
		}
		s := &out[int(utcDay(l.Timestamp).Sub(first).Hours()/24)]
		s.TotalLogs++
		s.TotalPersons += l.Persons
		s.TotalCompliant += l.Compliant
		s.TotalViolations += l.Violations
	}

	for i := range out {
		if out[i].TotalPersons > 0 {
			out[i].ComplianceRate = round(100*float64(out[i].TotalCompliant)/float64(out[i].TotalPersons), 1)
		}
	}
	return out
}

// ComplianceMetricsLastNHours sums the logs in [now-n h, now]. With no
// persons observed the rate is reported as 100.
func ComplianceMetricsLastNHours(logs []LogEntry, events []Event, n int, now time.Time) Metrics {
	window := LastHours(now, n)

	var m Metrics
	for _, l := range logs {
		if !window.Contains(l.Timestamp) {
			continue
		}
		m.TotalLogs++
		m.TotalPersons += l.Persons
		m.TotalViolations += l.Violations
	}
	for _, e := range events {
		if window.Contains(e.Timestamp) {
			m.TotalEvents++
		}
	}

	m.ComplianceRate = 100
	if m.TotalPersons > 0 {
		rate := 100 * (1 - float64(m.TotalViolations)/float64(m.TotalPersons))
		m.ComplianceRate = round(math.Min(100, math.Max(0, rate)), 2)
	}
	return m
}

type Chart struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

func HourlyChart(buckets []HourCount) Chart {
	c := Chart{Labels: make([]string, 0, len(buckets)), Data: make([]float64, 0, len(buckets))}
	for _, b := range buckets {
		c.Labels = append(c.Labels, fmt.Sprintf("%02d:00", b.Hour))
		c.Data = append(c.Data, float64(b.Count))
	}
	return c
}

func DistributionChart(counts []TypeCount) Chart {
	c := Chart{Labels: make([]string, 0, len(counts)), Data: make([]float64, 0, len(counts))}
	for _, tc := range counts {
		c.Labels = append(c.Labels, tc.Type)
		c.Data = append(c.Data, float64(tc.Count))
	}
	return c
}

func DailyChart(days []DailySummary) Chart {
	c := Chart{Labels: make([]string, 0, len(days)), Data: make([]float64, 0, len(days))}
	for _, d := range days {
		c.Labels = append(c.Labels, d.Date)
		c.Data = append(c.Data, d.ComplianceRate)
	}
	return c
}
