// README: Courier selection strategies as a closed enum, so adding one is a
// compile-time-checked change rather than a stringly-typed switch.
package assignment

import "fmt"

type Strategy int

const (
	StrategyNearest Strategy = iota
	StrategyLeastBusy
	StrategyHighestRated
	StrategyRoundRobin
)

func (s Strategy) String() string {
	switch s {
	case StrategyNearest:
		return "nearest"
	case StrategyLeastBusy:
		return "least_busy"
	case StrategyHighestRated:
		return "highest_rated"
	case StrategyRoundRobin:
		return "round_robin"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy maps the HTTP-edge string to a Strategy. Empty input picks
// the default.
func ParseStrategy(v string) (Strategy, error) {
	switch v {
	case "", "nearest":
		return StrategyNearest, nil
	case "least_busy":
		return StrategyLeastBusy, nil
	case "highest_rated":
		return StrategyHighestRated, nil
	case "round_robin":
		return StrategyRoundRobin, nil
	}
	return StrategyNearest, fmt.Errorf("unknown assignment strategy %q", v)
}
