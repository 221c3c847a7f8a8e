package consts

const (
	DefaultDedupWindowMinutes = 60
	MaxDedupWindowMinutes     = 7 * 24 * 60
)

const (
	ReasonDuplicate        = "duplicate within window"
	ReasonSaveFailed       = "error saving view"
	ReasonResourceNotFound = "resource not found"
)
