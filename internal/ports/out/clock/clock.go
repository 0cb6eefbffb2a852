package clock

import "time"

// Clock is the time source the services stamp records with. Injecting it
// lets tests pin and advance time instead of sleeping.
type Clock interface {
	Now() time.Time
}
