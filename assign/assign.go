// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assign

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPerJury   = errors.New("invalid candidates per jury value")
	ErrNoJuryMembers    = errors.New("no jury members available")
	ErrInvalidAlgorithm = errors.New("invalid algorithm")
)

// Algorithm labels accepted from clients. Every label runs the same
// round robin; the label is echoed back and otherwise unused.
const (
	AlgorithmBalanced  = "balanced"
	AlgorithmRandom    = "random"
	AlgorithmExpertise = "expertise"
	AlgorithmCategory  = "category"
)

// Assignment pairs a candidate with the jury member it goes to.
type Assignment struct {
	CandidateID  int64
	JuryMemberID int64
}

// Plan is the outcome of a distribution.
type Plan struct {
	Assignments   []Assignment
	PerJury       map[int64]int // every jury member present, zero allowed
	TotalAssigned int
}

// ValidateAlgorithm normalizes an algorithm label. Empty means balanced.
func ValidateAlgorithm(label string) (string, error) {
	switch label {
	case "":
		return AlgorithmBalanced, nil
	case AlgorithmBalanced, AlgorithmRandom, AlgorithmExpertise, AlgorithmCategory:
		return label, nil
	}
	return "", fmt.Errorf("%q: %w", label, ErrInvalidAlgorithm)
}

// Distribute deals candidates to jury members in round robin order,
// starting at jury[0]. The pointer moves on after every candidate, including
// one that is skipped because the current jury member already holds perJury
// candidates, so a skipped candidate stays unassigned rather than falling
// through to the next member.
func Distribute(candidates, jury []int64, perJury int) (Plan, error) {
	if perJury < 1 {
		return Plan{}, ErrInvalidPerJury
	}
	if len(jury) == 0 {
		return Plan{}, ErrNoJuryMembers
	}

	plan := Plan{
		Assignments: make([]Assignment, 0, len(candidates)),
		PerJury:     make(map[int64]int, len(jury)),
	}
	for _, j := range jury {
		plan.PerJury[j] = 0
	}

	idx := 0
	for _, c := range candidates {
		j := jury[idx]
		if plan.PerJury[j] < perJury {
			plan.Assignments = append(plan.Assignments, Assignment{CandidateID: c, JuryMemberID: j})
			plan.PerJury[j]++
			plan.TotalAssigned++
		}
		idx = (idx + 1) % len(jury)
	}

	return plan, nil
}
