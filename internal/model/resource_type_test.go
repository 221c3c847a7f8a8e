package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityMemberRoundTrip(t *testing.T) {
	member := EntityPost.Member(12)
	assert.Equal(t, "post:12", member)

	typ, id, ok := ParseEntityMember(member)
	assert.True(t, ok)
	assert.Equal(t, EntityPost, typ)
	assert.Equal(t, uint64(12), id)
}

func TestParseEntityMember_Rejects(t *testing.T) {
	for _, member := range []string{"", "post", "post:", "post:0", "post:-1", "story:1", "profile:3", "user:abc"} {
		_, _, ok := ParseEntityMember(member)
		assert.False(t, ok, member)
	}
}

func TestResourceEntityMapping(t *testing.T) {
	assert.Equal(t, EntityUser, ResourceProfile.EntityType())
	assert.Equal(t, EntityVideo, ResourceVideo.EntityType())
	assert.Equal(t, ResourceProfile, EntityUser.ResourceType())
	assert.Equal(t, ResourcePhoto, EntityPhoto.ResourceType())
	assert.False(t, ResourceType("user").Valid())
	assert.False(t, EntityType("profile").Valid())
}

func TestTableLookups(t *testing.T) {
	rt, ok := ContentTypeByTable("videos")
	assert.True(t, ok)
	assert.Equal(t, ResourceVideo, rt)
	_, ok = ContentTypeByTable("users")
	assert.False(t, ok)

	kind, ok := InteractionKindByTable("comments")
	assert.True(t, ok)
	assert.Equal(t, InteractionComment, kind)
	assert.True(t, kind.SoftDeleted())
	assert.False(t, InteractionLike.SoftDeleted())
	_, ok = InteractionKindByTable("resource_views")
	assert.False(t, ok)
}
