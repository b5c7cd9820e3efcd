package budget

import "fmt"

// Config defines the consumption guardrails for a single research run.
type Config struct {
	// Ceiling is the hard input-unit limit for the whole run.
	Ceiling int64
	// ReservedFraction of the ceiling is withheld from research and kept
	// for final report assembly.
	ReservedFraction float64
	// DegradeMargin is how far the usage ratio may outpace the topic
	// completion ratio before the controller drops to reduced depth.
	DegradeMargin float64
	// DispatchCost is the fixed charge added per collaborator dispatch on
	// top of the response size.
	DispatchCost int64
}

// Validate ensures the budget values are sane before use.
func (c Config) Validate() error {
	if c.Ceiling <= 0 {
		return fmt.Errorf("ceiling must be positive")
	}
	if c.ReservedFraction < 0 || c.ReservedFraction >= 1 {
		return fmt.Errorf("reserved_fraction must be in [0,1)")
	}
	if c.DegradeMargin < 0 {
		return fmt.Errorf("degrade_margin cannot be negative")
	}
	if c.DispatchCost < 0 {
		return fmt.Errorf("dispatch_cost cannot be negative")
	}
	return nil
}

// ResearchCeiling is the portion of the ceiling that may be spent on
// dispatches; the remainder is the reserved-output allowance.
func (c Config) ResearchCeiling() int64 {
	reserved := int64(float64(c.Ceiling) * c.ReservedFraction)
	return c.Ceiling - reserved
}
