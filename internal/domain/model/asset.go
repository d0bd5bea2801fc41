package model

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// AssetClass identifies the kind of image an upload belongs to.
type AssetClass string

const (
	ClassAvatar AssetClass = "avatar"
	ClassBanner AssetClass = "banner"
)

func (c AssetClass) IsValid() bool {
	switch c {
	case ClassAvatar, ClassBanner:
		return true
	default:
		return false
	}
}

func (c AssetClass) String() string {
	return string(c)
}

var (
	ErrInvalidAssetClass = errors.New("invalid asset class")
	ErrEmptySubjectID    = errors.New("subject ID cannot be empty")
	ErrMalformedKey      = errors.New("malformed storage key")
)

// defaultExtension is used when the original filename carries no extension.
const defaultExtension = "png"

// StorageKey addresses an uploaded blob within the storage namespace.
// The key encodes asset class, owning subject, and upload time, so it is
// unique in practice without a coordination service and fully recoverable
// from the public URL.
type StorageKey string

// NewStorageKey derives the key for an upload as
// {class}_{subjectID}_{millisecondTimestamp}.{extension}.
func NewStorageKey(class AssetClass, subjectID, filename string, at time.Time) (StorageKey, error) {
	if !class.IsValid() {
		return "", ErrInvalidAssetClass
	}
	if subjectID == "" {
		return "", ErrEmptySubjectID
	}

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = defaultExtension
	}

	key := fmt.Sprintf("%s_%s_%d.%s", class, subjectID, at.UnixMilli(), ext)
	return StorageKey(key), nil
}

func (k StorageKey) String() string {
	return string(k)
}

// UploadedAt reports the upload time encoded in the key's millisecond
// timestamp segment.
func (k StorageKey) UploadedAt() (time.Time, error) {
	raw := string(k)

	dot := strings.LastIndex(raw, ".")
	if dot == -1 {
		return time.Time{}, ErrMalformedKey
	}
	sep := strings.LastIndex(raw[:dot], "_")
	if sep == -1 {
		return time.Time{}, ErrMalformedKey
	}

	ms, err := strconv.ParseInt(raw[sep+1:dot], 10, 64)
	if err != nil {
		return time.Time{}, ErrMalformedKey
	}
	return time.UnixMilli(ms), nil
}

// Class reports the asset class encoded in the key.
func (k StorageKey) Class() (AssetClass, error) {
	name, _, found := strings.Cut(string(k), "_")
	if !found {
		return "", ErrMalformedKey
	}
	class := AssetClass(name)
	if !class.IsValid() {
		return "", ErrMalformedKey
	}
	return class, nil
}

// ParseStorageKey validates that s has the shape produced by NewStorageKey.
func ParseStorageKey(s string) (StorageKey, error) {
	if s == "" || strings.Contains(s, "/") {
		return "", ErrMalformedKey
	}
	if _, err := StorageKey(s).Class(); err != nil {
		return "", err
	}
	return StorageKey(s), nil
}
