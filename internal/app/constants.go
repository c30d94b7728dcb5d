package app

import "time"

// DefaultResolveDelay is how long two face-up cards stay visible before they are
// compared. Hosts may override it through Options.
const DefaultResolveDelay = time.Second
