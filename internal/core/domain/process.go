package domain

// Process is a named transformation that consumes component stock and
// produces a quantity of its output part, according to the part's BOM.
type Process struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OutputPartID int64  `json:"output_part_id"`
}
