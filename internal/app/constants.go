package app

import "time"

// PossibilitiesLimit caps how many remaining hypotheses a failed strategy reports.
const PossibilitiesLimit = 20

// DefaultResultTTL is how long a signed verdict stays valid.
const DefaultResultTTL = 24 * time.Hour
