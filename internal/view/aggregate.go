// Package view reduces snapshot collections to consumer-ready groupings.
// Every function here is pure: the same snapshot always yields the same
// result, and source slices are never mutated.
package view

import (
	"sort"
	"time"

	"github.com/tessario/messis/internal/common"
	"github.com/tessario/messis/internal/models"
)

// RecentJobsWindow caps how many settled jobs a display shows. The cap is a
// view concern only; SplitJobs still returns the full history.
const RecentJobsWindow = 5

// UnknownEditionID is the sentinel group key for citations without an edition.
const UnknownEditionID = "unknown"

// SplitJobs partitions jobs into active (pending or running, in snapshot
// order) and recent (settled, newest first).
func SplitJobs(jobs []models.Job) (active, recent []models.Job) {
	for _, job := range jobs {
		if job.Status.IsActive() {
			active = append(active, job)
		} else {
			recent = append(recent, job)
		}
	}

	// Newest settled job first; jobs without timestamps keep snapshot order
	sort.SliceStable(recent, func(i, j int) bool {
		return settledAt(&recent[i]).After(settledAt(&recent[j]))
	})

	return active, recent
}

// RecentWindow truncates a settled-jobs list to the display window.
func RecentWindow(recent []models.Job) []models.Job {
	if len(recent) > RecentJobsWindow {
		return recent[:RecentJobsWindow]
	}
	return recent
}

// EditionGroup is one edition's citation group in the citations view.
type EditionGroup struct {
	EditionID string // UnknownEditionID for citations without an edition
	Title     string
	Count     int
}

// GroupByEdition groups citations by edition, counts members and sorts
// groups by count descending. Ties keep first-seen order.
func GroupByEdition(citations []models.Citation) []EditionGroup {
	index := make(map[string]int)
	var groups []EditionGroup

	for _, c := range citations {
		key := c.EditionID
		if key == "" {
			key = UnknownEditionID
		}
		if i, ok := index[key]; ok {
			groups[i].Count++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, EditionGroup{
			EditionID: key,
			Title:     common.StringOrUnknown(c.EditionTitle),
			Count:     1,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})

	return groups
}

// HistogramBucket is one cross-citation bucket: NumPapers citing papers each
// cite IntersectionCount distinct editions of the target paper.
type HistogramBucket struct {
	IntersectionCount int
	NumPapers         int
}

// IntersectionHistogram buckets citations by intersection count, sorted by
// count descending.
func IntersectionHistogram(citations []models.Citation) []HistogramBucket {
	counts := make(map[int]int)
	for _, c := range citations {
		counts[c.IntersectionCount]++
	}

	buckets := make([]HistogramBucket, 0, len(counts))
	for count, papers := range counts {
		buckets = append(buckets, HistogramBucket{IntersectionCount: count, NumPapers: papers})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].IntersectionCount > buckets[j].IntersectionCount
	})

	return buckets
}

// MaxIntersection returns the largest observed intersection count, floored
// at 1 so it is always a usable normalization denominator.
func MaxIntersection(citations []models.Citation) int {
	max := 1
	for _, c := range citations {
		if c.IntersectionCount > max {
			max = c.IntersectionCount
		}
	}
	return max
}

// FilterCitations returns the citations visible under a filter state: those
// with intersection_count >= minIntersection and, when selectedEdition is
// non-nil, a matching edition. Order is preserved.
func FilterCitations(citations []models.Citation, minIntersection int, selectedEdition *string) []models.Citation {
	var visible []models.Citation
	for _, c := range citations {
		if c.IntersectionCount < minIntersection {
			continue
		}
		if selectedEdition != nil && c.EditionID != *selectedEdition {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}

// CitationSort selects an ordering for the citations view.
type CitationSort string

const (
	SortByIntersection CitationSort = "intersection_desc"
	SortByCitations    CitationSort = "citations_desc"
	SortByYear         CitationSort = "year_desc"
)

// SortCitations returns a new slice ordered by the given sort. Missing
// numeric keys count as zero; the sort is stable, so equal keys keep their
// original relative order.
func SortCitations(citations []models.Citation, by CitationSort) []models.Citation {
	sorted := make([]models.Citation, len(citations))
	copy(sorted, citations)

	var key func(c *models.Citation) int
	switch by {
	case SortByCitations:
		key = func(c *models.Citation) int { return common.IntOrZero(c.CitationCount) }
	case SortByYear:
		key = func(c *models.Citation) int { return common.IntOrZero(c.Year) }
	default:
		key = func(c *models.Citation) int { return c.IntersectionCount }
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return key(&sorted[i]) > key(&sorted[j])
	})

	return sorted
}

func settledAt(job *models.Job) time.Time {
	if job.CompletedAt != nil {
		return *job.CompletedAt
	}
	if job.StartedAt != nil {
		return *job.StartedAt
	}
	return time.Time{}
}
