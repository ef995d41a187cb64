package mapper

import (
	"case-portal-be/internal/entity"
	"case-portal-be/internal/model"
)

type CaseMapper struct{}

func NewCaseMapper() *CaseMapper {
	return &CaseMapper{}
}

func (m *CaseMapper) ToEntity(c *model.Case) *entity.Case {
	if c == nil {
		return nil
	}
	return &entity.Case{
		Id:              c.Id,
		Title:           c.Title,
		Description:     c.Description,
		ClientId:        c.ClientId,
		AssignedStaffId: c.AssignedStaffId,
		Status:          entity.CaseStatus(c.Status),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (m *CaseMapper) ToModel(c *entity.Case) *model.Case {
	if c == nil {
		return nil
	}
	return &model.Case{
		Id:              c.Id,
		Title:           c.Title,
		Description:     c.Description,
		ClientId:        c.ClientId,
		AssignedStaffId: c.AssignedStaffId,
		Status:          string(c.Status),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (m *CaseMapper) ToEntities(cases []*model.Case) []*entity.Case {
	out := make([]*entity.Case, 0, len(cases))
	for _, c := range cases {
		out = append(out, m.ToEntity(c))
	}
	return out
}
