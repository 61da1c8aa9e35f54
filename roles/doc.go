// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package roles defines the roles and capabilities that guard the API.

Three roles exist:

  - administrator: every application capability plus manage_options
  - mt_award_admin: awards, assignments, voting, exports, jury and candidate records
  - mt_jury_member: evaluation, candidate viewing and own exports

A user linked to a jury member record also gets the evaluation capabilities,
whatever their role:

	if roles.Can(user.Role, isJury, roles.CapSubmitEvaluations) {
		// ...
	}
*/
package roles
