package models

import (
	"io"
	"time"
)

// Asset is an open file from the public root, ready to be streamed.
// Body must be closed exactly once, either by the caller or by whatever
// the caller hands it to.
type Asset struct {
	Name        string        `json:"name"`
	Size        int64         `json:"size"`
	ModTime     time.Time     `json:"mod_time"`
	ContentType string        `json:"content_type"`
	Body        io.ReadCloser `json:"-"`
}
