package entity

import (
	"fmt"
	"io"
	"mime/multipart"
)

type AssetStatus string

const (
	AssetPending   AssetStatus = "pending"
	AssetValidated AssetStatus = "validated"
	AssetResized   AssetStatus = "resized"
	AssetUploaded  AssetStatus = "uploaded"
	AssetRejected  AssetStatus = "rejected"
)

type RejectionReason string

const (
	ReasonUnsupportedType RejectionReason = "unsupported_type"
	ReasonTooLarge        RejectionReason = "too_large"
	ReasonBatchTooLarge   RejectionReason = "batch_too_large"
)

type IngestMode string

const (
	IngestSingle IngestMode = "single"
	IngestMulti  IngestMode = "multi"
)

// MediaAsset is one user-selected image as it moves through validation,
// resizing and upload. Status only ever moves forward; a rejected asset
// stays rejected.
type MediaAsset struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte

	Status          AssetStatus
	RejectionReason RejectionReason
	Resized         []byte
	RemoteKey       string
	RemoteURL       string
}

// MediaBatch is the ordered selection belonging to one post submission.
// Order is display order.
type MediaBatch []*MediaAsset

func NewMediaAsset(filename, contentType string, data []byte) *MediaAsset {
	return &MediaAsset{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
		Status:      AssetPending,
	}
}

// AssetFromFileHeader reads an uploaded multipart file into a pending
// asset.
func AssetFromFileHeader(fh *multipart.FileHeader) (*MediaAsset, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return NewMediaAsset(fh.Filename, fh.Header.Get("Content-Type"), data), nil
}

func (a *MediaAsset) Reject(reason RejectionReason) {
	a.Status = AssetRejected
	a.RejectionReason = reason
}
