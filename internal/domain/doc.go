// Package domain models Philadelphia Police Department shooting-victim
// records published through the city's CARTO open-data API.
//
// # Data Source
//
// Rows come from the "shootings" table at https://phl.carto.com/api/v2/sql.
// Each row is one shooting victim; the incident number ("dc_key") is shared
// by all victims of the same incident and is not unique on its own.
//
// # Upstream Conventions
//
// Date and time:
//
//	"date_" is an ISO timestamp whose time part is always midnight,
//	e.g. "2023-05-04T00:00:00Z". Only its first 10 characters are used.
//	"time" is "HH:MM:SS" local time. Unknown times are either null or the
//	literal sentinel "<Null>"; both are read as midnight.
//
// Age:
//
//	Published as text. Blank or null means the age was not recorded and
//	is carried as NaN. Anything else must parse as a number.
//
// Race:
//
//	Single-letter codes: W, B, H (Hispanic, any race), A. Null becomes
//	"Other/Unknown".
//
// Flags:
//
//	"latino" and "fatal" are 0/1 integers and may be null.
//
// # Age Groups
//
// Ages are bucketed by an ordered rule list (see [AgeGroupFor]); the first
// matching rule wins:
//
//	age < 18         Under 18
//	18 <= age <= 30  19 to 30
//	30 < age <= 45   31 to 45
//	age > 45         Greater than 45
//	otherwise (NaN)  Unknown
//
// The "19 to 30" label covering age 18 is inherited from the published
// dataset and is kept for compatibility with existing consumers.
package domain
