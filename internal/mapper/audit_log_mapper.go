package mapper

import (
	"case-portal-be/internal/entity"
	"case-portal-be/internal/model"

	"gorm.io/datatypes"
)

type AuditLogMapper struct{}

func NewAuditLogMapper() *AuditLogMapper {
	return &AuditLogMapper{}
}

func (m *AuditLogMapper) ToEntity(a *model.AuditLog) *entity.AuditLog {
	if a == nil {
		return nil
	}
	return &entity.AuditLog{
		Id:           a.Id,
		UserId:       a.UserId,
		Action:       a.Action,
		ResourceType: a.ResourceType,
		ResourceId:   a.ResourceId,
		Details:      map[string]interface{}(a.Details),
		IpAddress:    a.IpAddress,
		Timestamp:    a.Timestamp,
	}
}

func (m *AuditLogMapper) ToModel(a *entity.AuditLog) *model.AuditLog {
	if a == nil {
		return nil
	}
	return &model.AuditLog{
		Id:           a.Id,
		UserId:       a.UserId,
		Action:       a.Action,
		ResourceType: a.ResourceType,
		ResourceId:   a.ResourceId,
		Details:      datatypes.JSONMap(a.Details),
		IpAddress:    a.IpAddress,
		Timestamp:    a.Timestamp,
	}
}

func (m *AuditLogMapper) ToEntities(logs []*model.AuditLog) []*entity.AuditLog {
	out := make([]*entity.AuditLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, m.ToEntity(l))
	}
	return out
}
