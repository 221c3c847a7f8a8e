package model

// InteractionKind 互动类型，与互动表一一对应
type InteractionKind string

const (
	InteractionLike     InteractionKind = "like"
	InteractionComment  InteractionKind = "comment"
	InteractionShare    InteractionKind = "share"
	InteractionBookmark InteractionKind = "bookmark"
	InteractionReport   InteractionKind = "report"
	InteractionReaction InteractionKind = "reaction"
)

var interactionTables = map[InteractionKind]string{
	InteractionLike:     Like{}.TableName(),
	InteractionComment:  Comment{}.TableName(),
	InteractionShare:    Share{}.TableName(),
	InteractionBookmark: Bookmark{}.TableName(),
	InteractionReport:   Report{}.TableName(),
	InteractionReaction: Reaction{}.TableName(),
}

// TableName 返回互动类型对应的表名，未知类型返回空串
func (k InteractionKind) TableName() string {
	return interactionTables[k]
}

// SoftDeleted 该表是否带 is_deleted 软删除列
func (k InteractionKind) SoftDeleted() bool {
	return k == InteractionComment
}

// InteractionKindByTable 由表名反查互动类型
func InteractionKindByTable(table string) (InteractionKind, bool) {
	for k, t := range interactionTables {
		if t == table {
			return k, true
		}
	}
	return "", false
}
