package mapper

import (
	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"
)

type UploadedFileMapper struct{}

func NewUploadedFileMapper() *UploadedFileMapper {
	return &UploadedFileMapper{}
}

func (m *UploadedFileMapper) ToEntity(f *model.UploadedFile) *entity.UploadedFile {
	if f == nil {
		return nil
	}
	return &entity.UploadedFile{
		Id:               f.Id,
		SessionId:        f.SessionId,
		StoredFilename:   f.StoredFilename,
		OriginalFilename: f.OriginalFilename,
		ContentType:      f.ContentType,
		Size:             f.Size,
		ExtractedText:    f.ExtractedText,
		CreatedAt:        f.CreatedAt,
	}
}

func (m *UploadedFileMapper) ToModel(f *entity.UploadedFile) *model.UploadedFile {
	if f == nil {
		return nil
	}
	return &model.UploadedFile{
		Id:               f.Id,
		SessionId:        f.SessionId,
		StoredFilename:   f.StoredFilename,
		OriginalFilename: f.OriginalFilename,
		ContentType:      f.ContentType,
		Size:             f.Size,
		ExtractedText:    f.ExtractedText,
		CreatedAt:        f.CreatedAt,
	}
}

func (m *UploadedFileMapper) ToEntities(files []*model.UploadedFile) []*entity.UploadedFile {
	entities := make([]*entity.UploadedFile, len(files))
	for i, f := range files {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
