package source

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	SchemeFile = "file"
	SchemeS3   = "s3"
	SchemeGCS  = "gs"
)

// Location addresses one snapshot document: a local path, an S3 object or a
// Cloud Storage object.
type Location struct {
	Scheme string
	Bucket string
	Key    string
	raw    string
}

// ParseLocation reads s3://bucket/key, gs://bucket/key, file://path or a
// plain path.
func ParseLocation(s string) (Location, error) {
	if s == "" {
		return Location{}, fmt.Errorf("empty snapshot location")
	}

	if !strings.Contains(s, "://") {
		return Location{Scheme: SchemeFile, Key: s, raw: s}, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("invalid snapshot location %q: %w", s, err)
	}

	switch u.Scheme {
	case SchemeFile:
		return Location{Scheme: SchemeFile, Key: u.Host + u.Path, raw: s}, nil
	case SchemeS3, SchemeGCS:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("snapshot location %q must name a bucket and an object", s)
		}
		return Location{Scheme: u.Scheme, Bucket: u.Host, Key: key, raw: s}, nil
	default:
		return Location{}, fmt.Errorf("unsupported snapshot location scheme %q", u.Scheme)
	}
}

func (l Location) String() string {
	if l.raw != "" {
		return l.raw
	}
	if l.Scheme == SchemeFile {
		return l.Key
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// Ext returns the lower cased extension of the object key.
func (l Location) Ext() string {
	return strings.ToLower(path.Ext(l.Key))
}
