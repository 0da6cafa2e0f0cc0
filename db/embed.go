// Package db embeds the SQL migrations applied by "flagkeepctl db migrate".
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
