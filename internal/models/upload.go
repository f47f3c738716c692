package models

import "strings"

// Upload is a document picked at intake, before it is stored anywhere.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

func (u *Upload) Size() int64 {
	return int64(len(u.Data))
}

// Scannable reports whether the AI extractor accepts the content type.
func (u *Upload) Scannable() bool {
	return u.IsImage() || u.IsPDF()
}

func (u *Upload) IsImage() bool {
	return strings.HasPrefix(u.MimeType, "image/")
}

func (u *Upload) IsPDF() bool {
	return u.MimeType == "application/pdf"
}

// Attachment returns the record metadata for the upload stored at location.
func (u *Upload) Attachment(location string) *Attachment {
	return &Attachment{
		Name:     u.Name,
		Size:     FormatSize(u.Size()),
		MimeType: u.MimeType,
		Location: location,
	}
}
