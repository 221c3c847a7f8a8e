package kafka

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/metrics"
)

// NewInteractionsHandler 点赞、评论、分享、收藏、举报、表态的变更
func NewInteractionsHandler(m *metrics.Metrics) *DirtyHandler {
	return newDirtyHandler("interactions", extractInteractions, m)
}

func extractInteractions(msg *CanalMessage) ([]string, bool) {
	kind, ok := model.InteractionKindByTable(msg.Table)
	if !ok {
		return nil, false
	}

	// 只有软删除状态或目标变化会影响计数
	watched := []string{"target_type", "target_id"}
	if kind.SoftDeleted() {
		watched = append(watched, "is_deleted")
	}

	var set memberSet
	for i, row := range msg.Data {
		switch msg.Type {
		case INSERT, DELETE:
		case UPDATE:
			if !oldHas(msg, i, watched...) {
				continue
			}
		default:
			continue
		}

		addTarget(&set, row)
		if msg.Type == UPDATE && i < len(msg.Old) {
			old := msg.Old[i]
			if _, moved := old["target_id"]; moved {
				prev := map[string]interface{}{"target_type": row["target_type"], "target_id": old["target_id"]}
				if tt, ok := old["target_type"]; ok {
					prev["target_type"] = tt
				}
				addTarget(&set, prev)
			}
		}
	}
	return set.members, true
}

func addTarget(set *memberSet, row map[string]interface{}) {
	rt := model.ResourceType(StrValue(row["target_type"]))
	id := StrToUint64(row["target_id"])
	if !rt.Valid() || id == 0 {
		return
	}
	set.add(rt.EntityType().Member(id))
}
