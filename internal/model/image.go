package model

// Image references an object in the blob store.
type Image struct {
	Key         string `gorm:"size:255" json:"key"`
	ContentType string `gorm:"size:100" json:"contentType"`
	Filename    string `gorm:"size:255" json:"filename"`
}

func (i *Image) IsZero() bool {
	return i == nil || i.Key == ""
}
