package kafka

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/metrics"
)

// NewViewsHandler resource_views 变更：被浏览资源及其所有者需要重算
func NewViewsHandler(m *metrics.Metrics) *DirtyHandler {
	return newDirtyHandler("views", extractViews, m)
}

func extractViews(msg *CanalMessage) ([]string, bool) {
	if msg.Table != (model.ResourceView{}).TableName() {
		return nil, false
	}
	// 浏览记录只增不改
	if msg.Type != INSERT && msg.Type != DELETE {
		return nil, true
	}

	var set memberSet
	for _, row := range msg.Data {
		rt := model.ResourceType(StrValue(row["resource_type"]))
		id := StrToUint64(row["resource_id"])
		if !rt.Valid() || id == 0 {
			continue
		}
		set.add(rt.EntityType().Member(id))
		if rt != model.ResourceProfile {
			if owner := StrToUint64(row["owner_user_id"]); owner > 0 {
				set.add(model.EntityUser.Member(owner))
			}
		}
	}
	return set.members, true
}
