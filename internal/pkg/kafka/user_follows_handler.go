package kafka

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/metrics"
)

// NewUserFollowsHandler 关注关系变化时关注双方的计数都需要重算
func NewUserFollowsHandler(m *metrics.Metrics) *DirtyHandler {
	return newDirtyHandler("user_follows", extractUserFollows, m)
}

func extractUserFollows(msg *CanalMessage) ([]string, bool) {
	if msg.Table != (model.UserFollow{}).TableName() {
		return nil, false
	}
	if msg.Type != INSERT && msg.Type != DELETE {
		return nil, true
	}

	var set memberSet
	for _, row := range msg.Data {
		for _, col := range []string{"follower_id", "following_id"} {
			if id := StrToUint64(row[col]); id > 0 {
				set.add(model.EntityUser.Member(id))
			}
		}
	}
	return set.members, true
}
