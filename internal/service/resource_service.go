package service

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/repository"
	"context"
)

// ResourceService 资源归属查询
type ResourceService interface {
	FindOwner(ctx context.Context, resourceType model.ResourceType, resourceID uint64) (uint64, error)
}

type resourceServiceImpl struct {
	resourceRepo repository.ResourceRepo
}

func NewResourceService(resourceRepo repository.ResourceRepo) ResourceService {
	return &resourceServiceImpl{resourceRepo: resourceRepo}
}

// FindOwner 资源不存在时返回 ErrEntityNotFound
func (s *resourceServiceImpl) FindOwner(ctx context.Context, resourceType model.ResourceType, resourceID uint64) (uint64, error) {
	if !resourceType.Valid() || resourceID == 0 {
		return 0, ErrParamInvalid
	}
	owner, found, err := s.resourceRepo.FindOwner(ctx, resourceType, resourceID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrEntityNotFound
	}
	return owner, nil
}
