package services

import "time"

// nowFunc is a seam for tests that need deterministic timestamps.
var nowFunc = time.Now
