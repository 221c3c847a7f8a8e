package kafka

import (
	"Viewpoint/internal/pkg/consts"
	"Viewpoint/internal/pkg/metrics"
	"Viewpoint/internal/pkg/redis"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ExtractFunc 从一条变更中提取需要重算的实体，第二个返回值表示该表是否由本处理器负责
type ExtractFunc func(msg *CanalMessage) ([]string, bool)

// DirtyHandler 把 Canal 变更翻译成脏实体，写入 Redis 待定时任务重算
type DirtyHandler struct {
	name    string
	extract ExtractFunc
	metrics *metrics.Metrics
}

func newDirtyHandler(name string, extract ExtractFunc, m *metrics.Metrics) *DirtyHandler {
	if m == nil {
		m = metrics.Nop()
	}
	return &DirtyHandler{name: name, extract: extract, metrics: m}
}

func (s *DirtyHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("consumer setup", "handler", s.name)
	return nil
}

func (s *DirtyHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("consumer cleanup", "handler", s.name)
	return nil
}

func (s *DirtyHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("consume claim", "handler", s.name, "topic", claim.Topic(), "partition", claim.Partition())
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("process batch error", "handler", s.name, "err", err)
		return err
	}
	return nil
}

func (s *DirtyHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg)
	if err != nil {
		// 无法解析的消息重试也无意义，直接跳过
		log.WarnContext(ctx, "unmarshal canal message error", "handler", s.name, "err", err)
		s.metrics.CDCMessagesTotal.WithLabelValues("unknown", metrics.ResultError).Inc()
		return nil
	}
	if canalMsg.IsDDL || len(canalMsg.Data) == 0 {
		s.metrics.CDCMessagesTotal.WithLabelValues(canalMsg.Table, metrics.ResultSkipped).Inc()
		return nil
	}

	members, ok := s.extract(canalMsg)
	if !ok || len(members) == 0 {
		s.metrics.CDCMessagesTotal.WithLabelValues(canalMsg.Table, metrics.ResultSkipped).Inc()
		return nil
	}

	if err = redis.AddToSet(ctx, consts.AnalyticsDirtyKey, members...); err != nil {
		s.metrics.CDCMessagesTotal.WithLabelValues(canalMsg.Table, metrics.ResultError).Inc()
		return err
	}
	s.metrics.CDCMessagesTotal.WithLabelValues(canalMsg.Table, metrics.ResultOK).Inc()
	log.DebugContext(ctx, "entities marked dirty", "table", canalMsg.Table, "type", canalMsg.Type, "members", members)
	return nil
}

// memberSet 保序去重
type memberSet struct {
	seen    map[string]struct{}
	members []string
}

func (m *memberSet) add(member string) {
	if m.seen == nil {
		m.seen = make(map[string]struct{})
	}
	if _, ok := m.seen[member]; ok {
		return
	}
	m.seen[member] = struct{}{}
	m.members = append(m.members, member)
}

// oldHas 判断 UPDATE 事件第 i 行是否修改了给定列
func oldHas(msg *CanalMessage, i int, cols ...string) bool {
	if i >= len(msg.Old) {
		return false
	}
	for _, col := range cols {
		if _, ok := msg.Old[i][col]; ok {
			return true
		}
	}
	return false
}
