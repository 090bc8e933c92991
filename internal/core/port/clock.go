package port

import "time"

// Clock supplies the current time. Production code passes time.Now; tests
// substitute a controllable function.
type Clock func() time.Time
