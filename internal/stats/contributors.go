package stats

import "github.com/verte-zerg/cvsheet/internal/model"

// Contributor bucket labels, in output order.
const (
	Bucket1To10    = "1-10"
	Bucket11To50   = "11-50"
	Bucket51To100  = "51-100"
	Bucket101To500 = "101-500"
	BucketOver500  = ">500"
)

var contributorBuckets = []struct {
	label string
	max   int
}{
	{Bucket1To10, 10},
	{Bucket11To50, 50},
	{Bucket51To100, 100},
	{Bucket101To500, 500},
}

// ContributorBuckets returns the fixed bucket labels in order.
func ContributorBuckets() []string {
	return []string{Bucket1To10, Bucket11To50, Bucket51To100, Bucket101To500, BucketOver500}
}

// BucketFor returns the bucket label for a per-contributor clip count.
func BucketFor(clips int) string {
	for _, b := range contributorBuckets {
		if clips <= b.max {
			return b.label
		}
	}
	return BucketOver500
}

// ClipsPerContributor counts clips per non-empty client id.
func ClipsPerContributor(clips []model.ClipRecord) map[string]int {
	counts := map[string]int{}
	for _, c := range clips {
		if c.ClientID == "" {
			continue
		}
		counts[c.ClientID]++
	}
	return counts
}

// ContributorDistribution bins contributors by how many clips they recorded.
// All five buckets are always present.
func ContributorDistribution(clips []model.ClipRecord) model.Histogram {
	h := model.NewHistogram(ContributorBuckets()...)
	for _, n := range ClipsPerContributor(clips) {
		h.Add(BucketFor(n))
	}
	return h
}

// ContributorCount returns the number of distinct contributors.
func ContributorCount(clips []model.ClipRecord) int {
	return len(ClipsPerContributor(clips))
}
