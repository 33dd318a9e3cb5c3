package dto

type CreateDocumentRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description" validate:"max=2000"`
	FileName     string `json:"file_name" validate:"required,max=255"`
	OriginalName string `json:"original_name" validate:"required,max=255"`
	MimeType     string `json:"mime_type" validate:"required"`
	FileSize     int64  `json:"file_size" validate:"gte=0"`
	IsPublic     bool   `json:"is_public"`
}

func (r *CreateDocumentRequest) Validate() error { return Validate(r) }

type UpdateDocumentRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

func (r *UpdateDocumentRequest) Validate() error { return Validate(r) }
