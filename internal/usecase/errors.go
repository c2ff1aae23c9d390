package usecase

import "errors"

// ErrUnsupportedType is returned when a selected file is not a supported image type
var ErrUnsupportedType = errors.New("unsupported file type: only JPEG, PNG, GIF and WebP images are allowed")

// ErrFileTooLarge is returned when a selected file exceeds the per-file size limit
var ErrFileTooLarge = errors.New("file too large: maximum size is 5MB per image")

// ErrBatchTooLarge is returned when a story selection exceeds the image limit
var ErrBatchTooLarge = errors.New("too many images: maximum 10 images allowed per story")

// ErrImageRequired is returned when a photo post is submitted without exactly one image
var ErrImageRequired = errors.New("a photo post requires exactly one image")

// ErrEncodeFailed is returned when the resize step produced no output; terminal for the asset
var ErrEncodeFailed = errors.New("failed to resize image")

// ErrCaptionRequired is returned when a story is submitted with no content
var ErrCaptionRequired = errors.New("a story requires some content")

// ErrCaptionTooLong is returned when a story caption exceeds the length limit
var ErrCaptionTooLong = errors.New("story is too long")

// ErrConfirmationRequired is returned when a delete is attempted without explicit confirmation
var ErrConfirmationRequired = errors.New("delete requires confirmation")

// ErrPostNotFound is returned when an operation references a post that is not in the feed
var ErrPostNotFound = errors.New("post not found")

// ErrNoDraft is returned when an edit is committed for a post with no open draft
var ErrNoDraft = errors.New("no edit in progress for this post")
