package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// orderNoPrefix brands the human-readable order number.
const orderNoPrefix = "EDM"

// NewOrderNumber builds a {PREFIX}{yy}{mm}{dd}{4-digit-random} number.
// Collisions within a day are unlikely but possible; the store's unique
// index is the final arbiter and callers retry with a fresh number on a
// duplicate rejection.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s%02d%02d%02d%04d",
		orderNoPrefix,
		now.Year()%100,
		int(now.Month()),
		now.Day(),
		rand.IntN(10000),
	)
}
