package kafka

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/metrics"
)

// NewContentsHandler posts/videos/photos 变更：作者的内容数需要重算
func NewContentsHandler(m *metrics.Metrics) *DirtyHandler {
	return newDirtyHandler("contents", extractContents, m)
}

func extractContents(msg *CanalMessage) ([]string, bool) {
	rt, ok := model.ContentTypeByTable(msg.Table)
	if !ok {
		return nil, false
	}

	var set memberSet
	for i, row := range msg.Data {
		switch msg.Type {
		case INSERT, DELETE:
		case UPDATE:
			if !oldHas(msg, i, "is_deleted", "user_id") {
				continue
			}
		default:
			continue
		}

		if id := StrToUint64(row["id"]); id > 0 {
			set.add(rt.EntityType().Member(id))
		}
		if owner := StrToUint64(row["user_id"]); owner > 0 {
			set.add(model.EntityUser.Member(owner))
		}
		// 内容转移所有者时原作者同样受影响
		if msg.Type == UPDATE && i < len(msg.Old) {
			if prev := StrToUint64(msg.Old[i]["user_id"]); prev > 0 {
				set.add(model.EntityUser.Member(prev))
			}
		}
	}
	return set.members, true
}
