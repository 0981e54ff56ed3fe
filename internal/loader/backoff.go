// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package loader

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// maxShift caps the exponent so the delay cannot overflow time.Duration.
const maxShift = 30

// Delay returns the wait before the retry that follows a failure at attempt:
// base * 2^max(0, attempt-1).
//
//	attempt 0 -> base, 1 -> base, 2 -> 2*base, 3 -> 4*base
func Delay(base time.Duration, attempt int) time.Duration {
	shift := attempt - 1
	if shift < 0 {
		shift = 0
	}
	if shift > maxShift {
		shift = maxShift
	}
	d := base * time.Duration(1<<uint(shift))
	if d < 0 || d/time.Duration(1<<uint(shift)) != base {
		return time.Duration(math.MaxInt64)
	}
	return d
}

// BustURL appends the cache-busting token v=<timestamp>-<attempt> to src,
// using "&" when src already carries a query string.
func BustURL(src string, at time.Time, attempt int) string {
	sep := "?"
	if strings.Contains(src, "?") {
		sep = "&"
	}
	return src + sep + "v=" + strconv.FormatInt(at.UnixMilli(), 10) + "-" + strconv.Itoa(attempt)
}
