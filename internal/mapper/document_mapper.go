package mapper

import (
	"case-portal-be/internal/entity"
	"case-portal-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:          d.Id,
		CaseId:      d.CaseId,
		Filename:    d.Filename,
		MimeType:    d.MimeType,
		Size:        d.Size,
		BucketName:  d.BucketName,
		StoragePath: d.StoragePath,
		UploadedAt:  d.UploadedAt,
		UploadedBy:  d.UploadedBy,
		Status:      entity.DocumentStatus(d.Status),
		Notes:       d.Notes,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:          d.Id,
		CaseId:      d.CaseId,
		Filename:    d.Filename,
		MimeType:    d.MimeType,
		Size:        d.Size,
		BucketName:  d.BucketName,
		StoragePath: d.StoragePath,
		UploadedAt:  d.UploadedAt,
		UploadedBy:  d.UploadedBy,
		Status:      string(d.Status),
		Notes:       d.Notes,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	out := make([]*entity.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, m.ToEntity(d))
	}
	return out
}
