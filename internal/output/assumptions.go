package output

// DefaultAssumptions lists the allocation and estimate rules rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Only weekdays count as worked days; weekends never receive pay",
	"Weekdays inside the visiting window are worked in the primary state unless listed under another state",
	"Regular pay is split in proportion to worked days; amounts are not rounded to cents",
	"Sign-on bonuses go wholly to the state worked on the bonus date",
	"Services-rendered bonuses accrue evenly over the weekdays of their bonus period",
	"Tax estimates use 2025 brackets and ignore credits and reciprocity agreements",
}
