package media

import "time"

// Asset is a metadata record for an uploaded file. The binary itself lives
// in external storage; the API only tracks what was stored and where.
type Asset struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	FileName   string    `bson:"fileName" json:"fileName"`
	StoredName string    `bson:"storedName" json:"storedName"`
	URL        string    `bson:"url" json:"url"`
	MimeType   string    `bson:"mimeType" json:"mimeType"`
	SizeBytes  int64     `bson:"sizeBytes" json:"sizeBytes"`
	Alt        string    `bson:"alt,omitempty" json:"alt,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

type CreateRequest struct {
	FileName  string `json:"fileName" validate:"required,max=255"`
	URL       string `json:"url" validate:"required,url,max=2000"`
	MimeType  string `json:"mimeType" validate:"required,max=127"`
	SizeBytes int64  `json:"sizeBytes" validate:"gte=0"`
	Alt       string `json:"alt" validate:"omitempty,max=500"`
}

type UpdateRequest struct {
	FileName *string `json:"fileName" validate:"omitempty,max=255"`
	Alt      *string `json:"alt" validate:"omitempty,max=500"`
}
