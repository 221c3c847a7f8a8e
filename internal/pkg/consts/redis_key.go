package consts

const (
	// AnalyticsDirtyKey 待重算实体集合，成员形如 "post:12"
	AnalyticsDirtyKey    = "analytics:dirty"
	AnalyticsRefreshLock = "analytics:refresh:lock:"
	AnalyticsDirtyLock   = "analytics:dirty:lock"
)

const ProcessingSuffix = ":processing"
