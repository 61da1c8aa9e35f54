// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package assign computes automatic candidate-to-jury assignments.

Distribute is pure: it takes candidate and jury member ids in the order they
should be dealt and returns a Plan. Auto loads the unassigned candidates
from a Store, distributes them and writes the plan back:

	plan, err := assign.Distribute(candidateIDs, juryIDs, 10)
	res, err := assign.Auto(ctx, st, 10, clearExisting, time.Now())

Candidates are dealt round robin starting at the first jury member. A jury
member that already holds perJury candidates is skipped for that candidate,
which then stays unassigned, and the pointer still moves on.
*/
package assign
