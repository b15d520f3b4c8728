// Package dataset loads the experiment's raw tables: per-group environment
// CSV logs and the consolidated growth workbook.
package dataset

// Group is one experimental condition: a named site with its target nutrient
// solution conductivity. The set of groups is fixed for a session.
type Group struct {
	Name string  `json:"name"`
	EC   float64 `json:"ec"`
}

// EnvironmentRecord is one time-sampled sensor reading, stamped with its
// owning group. The timestamp is kept verbatim as recorded.
type EnvironmentRecord struct {
	Group       string  `json:"group"`
	Timestamp   string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	EC          float64 `json:"ec"`
}

// GrowthRecord is one measured specimen, stamped with its group and the
// group's target EC.
type GrowthRecord struct {
	Group       string  `json:"group"`
	EC          float64 `json:"ec"`
	LeafCount   float64 `json:"leaf_count"`
	ShootLength float64 `json:"shoot_length_mm"`
	RootLength  float64 `json:"root_length_mm"`
	FreshWeight float64 `json:"fresh_weight_g"`
}

// Tables holds everything loaded for one session. The loader owns these for
// the session; the aggregator reads them without mutating.
type Tables struct {
	Groups []Group
	Env    map[string][]EnvironmentRecord // keyed by group name
	Growth []GrowthRecord                 // workbook sheet order
}

// LoadReport collects per-file problems that were recovered from without
// failing the load.
type LoadReport struct {
	Warnings []string
}
