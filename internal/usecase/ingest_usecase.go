package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"time"

	"postcard/internal/entity"
	"postcard/pkg/logger"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// MaxFileBytes is the per-image size limit (5 MiB)
	MaxFileBytes = 5 * 1024 * 1024
	// MaxBatchSize is the image limit for a story selection
	MaxBatchSize = 10
	// PostImageMaxDim is the long-edge bound for post content
	PostImageMaxDim = 800
	// AvatarMaxDim is the long-edge bound for profile avatars
	AvatarMaxDim = 400
	// JPEGQuality is the re-encode quality factor
	JPEGQuality = 85
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func init() {
	// The stdlib has no webp decoder; register the x/image one so
	// image.Decode handles every type on the allow-list.
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

// BlobStore hosts uploaded images. Upload overwrites any existing object
// at key (upsert) and returns the public URL.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// MediaIngestor turns user-selected files into size-bounded image blobs
// hosted at public URLs.
type MediaIngestor interface {
	IngestBatch(ctx context.Context, userID string, batch entity.MediaBatch, mode entity.IngestMode) ([]string, error)
	UploadAvatar(ctx context.Context, userID string, asset *entity.MediaAsset) (string, error)
	Discard(ctx context.Context, batch entity.MediaBatch)
}

type mediaIngestor struct {
	blobs  BlobStore
	logger *logger.Logger
	now    func() time.Time
}

func NewMediaIngestor(blobs BlobStore, log *logger.Logger) MediaIngestor {
	return &mediaIngestor{
		blobs:  blobs,
		logger: log,
		now:    time.Now,
	}
}

// sniffMime detects the content type from magic bytes. The declared
// Content-Type is never trusted: every allowed type is magic-detectable,
// so an undetectable file cannot be one of them.
func sniffMime(a *entity.MediaAsset) string {
	kind, err := filetype.Match(a.Data)
	if err != nil || kind == types.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// validateAsset is a pure check: type on the allow-list, size under the
// limit. Rejection marks the asset and nothing further is attempted.
func validateAsset(a *entity.MediaAsset) error {
	if !allowedMimeTypes[sniffMime(a)] {
		a.Reject(entity.ReasonUnsupportedType)
		return ErrUnsupportedType
	}
	if a.Size > MaxFileBytes {
		a.Reject(entity.ReasonTooLarge)
		return ErrFileTooLarge
	}
	a.Status = entity.AssetValidated
	return nil
}

// validateBatch is all-or-nothing: if any file fails, no asset moves past
// pending and the user must re-select.
func validateBatch(batch entity.MediaBatch, mode entity.IngestMode) error {
	if mode == entity.IngestSingle && len(batch) != 1 {
		return ErrImageRequired
	}
	if mode == entity.IngestMulti && len(batch) > MaxBatchSize {
		for _, a := range batch {
			a.Reject(entity.ReasonBatchTooLarge)
		}
		return ErrBatchTooLarge
	}

	// Check everything before promoting anything
	for _, a := range batch {
		if !allowedMimeTypes[sniffMime(a)] {
			a.Reject(entity.ReasonUnsupportedType)
			return ErrUnsupportedType
		}
		if a.Size > MaxFileBytes {
			a.Reject(entity.ReasonTooLarge)
			return ErrFileTooLarge
		}
	}
	for _, a := range batch {
		a.Status = entity.AssetValidated
	}
	return nil
}

// resizeImage decodes, downscales so the longer edge is at most maxDim
// (never upscaling), and re-encodes as JPEG. Aspect ratio is preserved by
// applying a single scale factor to both axes.
func resizeImage(data []byte, maxDim int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	longer := width
	if height > width {
		longer = height
	}

	if longer > maxDim {
		scale := float64(maxDim) / float64(longer)
		newW := int(float64(width)*scale + 0.5)
		newH := int(float64(height)*scale + 0.5)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	if buf.Len() == 0 {
		return nil, ErrEncodeFailed
	}

	return buf.Bytes(), nil
}

// IngestBatch runs validate, resize and upload per file, strictly in
// order, and returns the public URLs in input order. The first failure
// aborts the remaining files and removes this batch's already-uploaded
// objects so no orphaned blobs are left behind.
func (uc *mediaIngestor) IngestBatch(ctx context.Context, userID string, batch entity.MediaBatch, mode entity.IngestMode) ([]string, error) {
	if err := validateBatch(batch, mode); err != nil {
		return nil, err
	}

	ts := uc.now().UnixMilli()
	urls := make([]string, 0, len(batch))
	var uploadedKeys []string

	for i, asset := range batch {
		resized, err := resizeImage(asset.Data, PostImageMaxDim)
		if err != nil {
			uc.cleanup(ctx, uploadedKeys)
			return nil, err
		}
		asset.Resized = resized
		asset.Status = entity.AssetResized

		key := fmt.Sprintf("posts/%s-%d.jpg", userID, ts)
		if mode == entity.IngestMulti {
			key = fmt.Sprintf("posts/%s-%d-%d.jpg", userID, ts, i)
		}

		url, err := uc.blobs.Upload(ctx, key, resized, "image/jpeg")
		if err != nil {
			uc.cleanup(ctx, uploadedKeys)
			return nil, fmt.Errorf("failed to upload image %d of %d: %w", i+1, len(batch), err)
		}
		asset.RemoteKey = key
		asset.RemoteURL = url
		asset.Status = entity.AssetUploaded

		uploadedKeys = append(uploadedKeys, key)
		urls = append(urls, url)
	}

	return urls, nil
}

// UploadAvatar ingests a single profile photo at the avatar dimension
// bound and returns its public URL.
func (uc *mediaIngestor) UploadAvatar(ctx context.Context, userID string, asset *entity.MediaAsset) (string, error) {
	if err := validateAsset(asset); err != nil {
		return "", err
	}

	resized, err := resizeImage(asset.Data, AvatarMaxDim)
	if err != nil {
		return "", err
	}
	asset.Resized = resized
	asset.Status = entity.AssetResized

	key := fmt.Sprintf("avatars/%s-%d.jpg", userID, uc.now().UnixMilli())
	url, err := uc.blobs.Upload(ctx, key, resized, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	asset.RemoteKey = key
	asset.RemoteURL = url
	asset.Status = entity.AssetUploaded

	return url, nil
}

// Discard removes a batch's uploaded objects from the blob store. Called
// when the post referencing them was never created, so the blobs would
// otherwise be orphaned.
func (uc *mediaIngestor) Discard(ctx context.Context, batch entity.MediaBatch) {
	var keys []string
	for _, asset := range batch {
		if asset.Status == entity.AssetUploaded && asset.RemoteKey != "" {
			keys = append(keys, asset.RemoteKey)
		}
	}
	uc.cleanup(ctx, keys)
}

// cleanup removes the batch's already-uploaded objects after a failure.
// Best effort: no post references them, so a failed delete only leaves
// an unreachable blob.
func (uc *mediaIngestor) cleanup(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := uc.blobs.Delete(ctx, key); err != nil {
			uc.logger.Warn("Failed to clean up uploaded blob %s: %v", key, err)
		}
	}
}
