package operation

// Group is the id of a parameter sub-form.
type Group string

const (
	GroupNone      Group = ""
	GroupFilter    Group = "filter-options"
	GroupTransform Group = "transform-options"
	GroupAggregate Group = "aggregate-options"
	GroupSort      Group = "sort-options"
)

// Groups lists every parameter sub-form.
var Groups = []Group{GroupFilter, GroupTransform, GroupAggregate, GroupSort}

// VisibleGroup returns the single sub-form shown for the selected operation.
// Anything unrecognised, view included, shows none.
func VisibleGroup(selected string) Group {
	switch Operation(selected) {
	case Filter:
		return GroupFilter
	case Transform:
		return GroupTransform
	case Aggregate:
		return GroupAggregate
	case Sort:
		return GroupSort
	default:
		return GroupNone
	}
}
