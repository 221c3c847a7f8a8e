package model

import (
	"strconv"
	"strings"
)

// ResourceType 被浏览资源的类型
type ResourceType string

const (
	ResourceProfile ResourceType = "profile"
	ResourcePost    ResourceType = "post"
	ResourceVideo   ResourceType = "video"
	ResourcePhoto   ResourceType = "photo"
)

// Valid 判断资源类型是否受支持
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceProfile, ResourcePost, ResourceVideo, ResourcePhoto:
		return true
	}
	return false
}

// EntityType 返回该资源对应的聚合实体类型，个人主页的浏览计入用户
func (t ResourceType) EntityType() EntityType {
	if t == ResourceProfile {
		return EntityUser
	}
	return EntityType(t)
}

// EntityType 聚合统计的实体类型
type EntityType string

const (
	EntityUser  EntityType = "user"
	EntityPost  EntityType = "post"
	EntityVideo EntityType = "video"
	EntityPhoto EntityType = "photo"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityUser, EntityPost, EntityVideo, EntityPhoto:
		return true
	}
	return false
}

// ResourceType 返回实体对应的浏览资源类型
func (t EntityType) ResourceType() ResourceType {
	if t == EntityUser {
		return ResourceProfile
	}
	return ResourceType(t)
}

// ContentResourceTypes 归属于某个用户的内容类型
var ContentResourceTypes = []ResourceType{ResourcePost, ResourceVideo, ResourcePhoto}

// Member 生成脏集合成员，形如 "post:12"
func (t EntityType) Member(id uint64) string {
	return string(t) + ":" + strconv.FormatUint(id, 10)
}

// ParseEntityMember 解析脏集合成员
func ParseEntityMember(member string) (EntityType, uint64, bool) {
	typ, rawID, found := strings.Cut(member, ":")
	if !found {
		return "", 0, false
	}
	entityType := EntityType(typ)
	id, err := strconv.ParseUint(rawID, 10, 64)
	if !entityType.Valid() || err != nil || id == 0 {
		return "", 0, false
	}
	return entityType, id, true
}

// ContentTypeByTable 由内容表名反查资源类型
func ContentTypeByTable(table string) (ResourceType, bool) {
	switch table {
	case Post{}.TableName():
		return ResourcePost, true
	case Video{}.TableName():
		return ResourceVideo, true
	case Photo{}.TableName():
		return ResourcePhoto, true
	}
	return "", false
}
