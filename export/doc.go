// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package export writes downloadable files.

  - WriteAssignmentsCSV: candidate name, company, category, assigned jury member,
    assignment date (YYYY-MM-DD). Header labels come from a Labeler so they
    follow the caller's language.
  - WriteBackupsCSV: every vote backup, UTF-8 BOM first.
  - WriteBackupsJSON: an indented document with a generated export id.

File names are dated: assignments-2025-03-01.csv,
vote-backups-2025-03-01-120000.json.
*/
package export
