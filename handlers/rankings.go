// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"sort"

	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/store"
)

// ComputeRankings orders every candidate by the statistics of their vote
// scores for round (0 means every round)
func ComputeRankings(ctx context.Context, st *store.Store, round int) ([]models.CandidateStats, error) {
	candidates, err := st.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	scores, err := st.ScoresByCandidate(ctx, round)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate scores: %w", err)
	}

	names := make(map[int64]string, len(candidates))
	for _, c := range candidates {
		names[c.ID] = c.Name
	}
	return RankCandidates(names, scores), nil
}

// RankCandidates computes per-candidate statistics and ranks them.
// Candidates without scores rank with zeroed statistics.
func RankCandidates(names map[int64]string, scores map[int64][]float64) []models.CandidateStats {
	stats := make([]models.CandidateStats, 0, len(names))
	for id, name := range names {
		sorted := append([]float64(nil), scores[id]...)
		sort.Float64s(sorted)

		stats = append(stats, models.CandidateStats{
			CandidateID: id,
			Name:        name,
			VoteCount:   len(sorted),
			Median:      percentile(sorted, 0.5),
			P10:         percentile(sorted, 0.1),
			P90:         percentile(sorted, 0.9),
			Mean:        mean(sorted),
		})
	}

	// Lexicographic ranking criteria
	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]

		// 1. Higher median wins
		if a.Median != b.Median {
			return a.Median > b.Median
		}

		// 2. Higher p10 wins (least-misery tiebreaker)
		if a.P10 != b.P10 {
			return a.P10 > b.P10
		}

		// 3. Higher p90 wins
		if a.P90 != b.P90 {
			return a.P90 > b.P90
		}

		// 4. Higher mean wins
		if a.Mean != b.Mean {
			return a.Mean > b.Mean
		}

		// 5. Stable tie-breaking by candidate ID (ascending)
		return a.CandidateID < b.CandidateID
	})

	for i := range stats {
		stats[i].Rank = i + 1
	}
	return stats
}

// percentile calculates the p-th percentile of sorted data
// p should be in range [0, 1]
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	// Linear interpolation between closest ranks
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// mean calculates the arithmetic mean
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
