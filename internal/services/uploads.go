package services

import (
	"context"

	"kingdavid/internal/imaging"
	applog "kingdavid/internal/log"
)

// Publisher stores a normalized JPEG and returns a URL for it.
type Publisher interface {
	Publish(ctx context.Context, jpeg []byte) (string, error)
}

type Uploads struct {
	Normalizer *imaging.Normalizer
	// Publisher is optional; without it images stay inline as data URIs.
	Publisher Publisher
}

func NewUploads(pub Publisher) *Uploads {
	return &Uploads{Normalizer: imaging.New(), Publisher: pub}
}

// Prepare normalizes an upload and returns the value to store in Item.Image.
// A failed publish falls back to the data URI.
func (u *Uploads) Prepare(ctx context.Context, filename string, raw []byte) (string, error) {
	res, err := u.Normalizer.Normalize(raw)
	if err != nil {
		applog.Security(nil, "upload.reject", map[string]any{"file": filename, "bytes": len(raw), "reason": err.Error()})
		return "", err
	}
	fields := map[string]any{
		"file":   filename,
		"bytes":  len(raw),
		"src":    []int{res.SourceWidth, res.SourceHeight},
		"dst":    []int{res.Width, res.Height},
		"output": len(res.JPEG),
	}
	if u.Publisher == nil {
		applog.Info(nil, "upload.normalize", fields)
		return res.DataURI, nil
	}
	url, err := u.Publisher.Publish(ctx, res.JPEG)
	if err != nil {
		applog.Error(nil, "upload.publish.fail", err, fields)
		return res.DataURI, nil
	}
	fields["url"] = url
	applog.Info(nil, "upload.publish", fields)
	return url, nil
}

// CheckSize rejects a declared upload size before the body is read.
func (u *Uploads) CheckSize(size int64) error { return u.Normalizer.CheckSize(size) }
