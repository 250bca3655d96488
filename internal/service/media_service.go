package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type MediaService interface {
	Upload(ctx context.Context, userID int64, file []byte) (*transfer.MediaUpload, error)
}

type mediaService struct {
	r2            R2Service
	publicBaseURL string
}

func NewMediaService(r2 R2Service, publicBaseURL string) MediaService {
	return &mediaService{r2: r2, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

var mediaKindByExtension = map[string]string{
	"jpg":  models.MediaKindImage,
	"jpeg": models.MediaKindImage,
	"png":  models.MediaKindImage,
	"mp4":  models.MediaKindVideo,
	"mov":  models.MediaKindVideo,
	"mp3":  models.MediaKindAudio,
	"ogg":  models.MediaKindAudio,
	"wav":  models.MediaKindAudio,
}

// Upload sniffs the file type, stores the bytes in R2 under a nanoid key
// and returns a public URL usable as a media reference on a post.
func (s *mediaService) Upload(ctx context.Context, userID int64, file []byte) (*transfer.MediaUpload, error) {
	if userID == 0 {
		err := errors.New("user is not valid")
		slog.Info(err.Error())
		return nil, err
	}
	if len(file) == 0 {
		return nil, errors.New("empty file")
	}

	fileType, err := filetype.Match(file)
	if err != nil || fileType == types.Unknown {
		return nil, fmt.Errorf("unsupported file type: %w", err)
	}

	kind, ok := mediaKindByExtension[fileType.Extension]
	if !ok {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.r2.UploadToR2(ctx, key, file, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	return &transfer.MediaUpload{
		URL:  fmt.Sprintf("%s/%s", s.publicBaseURL, key),
		Kind: kind,
	}, nil
}
