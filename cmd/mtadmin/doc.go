// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Command mtadmin administers a Mobility Trailblazers database from the shell.

It reads the same configuration as the server (flags, environment, .env
and an optional TOML file) and migrates the schema before every command.

	mtadmin migrate
	mtadmin users add lena --role mt_jury_member --name "Lena Weber"
	mtadmin users list
	mtadmin roles [ROLE]
	mtadmin assign auto --per-jury 10 --clear
	mtadmin export assignments --lang de -o -
	mtadmin backups list|stats
	mtadmin backups restore 42 --actor 1
	mtadmin backups clean --days 365
	mtadmin deactivate --server http://localhost:3318 --user-id 1 --user-key ...

deactivate is the only command that talks to a running server; the others
work on the database directly.
*/
package main
