package storage

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/rest"
)

// RESTUploader writes to the hosted storage API and returns the public URL.
type RESTUploader struct {
	client *rest.Client
	bucket string
}

func NewRESTUploader(client *rest.Client, bucket string) *RESTUploader {
	return &RESTUploader{client: client, bucket: bucket}
}

func (u *RESTUploader) Upload(ctx context.Context, up *models.Upload) (string, error) {
	path := ObjectPath(nowFn(), up.Name)
	contentType := up.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	err := u.client.Do(ctx, rest.Request{
		Method:      http.MethodPost,
		Path:        "/storage/v1/object/" + u.bucket + "/" + path,
		Raw:         up.Data,
		ContentType: contentType,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", up.Name, err)
	}
	return u.client.BaseURL() + "/storage/v1/object/public/" + u.bucket + "/" + path, nil
}
