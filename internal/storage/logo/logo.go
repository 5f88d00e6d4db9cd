package logo

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/BruksfildServices01/groomer-scheduler/internal/config"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
)

const (
	MaxUploadBytes = 5 << 20
	MaxSide        = 512
	quality        = 85
)

var (
	ErrInvalidImage = httperr.ErrBusiness("invalid_image")
	ErrTooLarge     = httperr.ErrBusiness("image_too_large")
)

// Putter is the part of the S3 client the store needs.
type Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	client    Putter
	bucket    string
	publicURL string
}

// NewS3Client builds a path-style client so MinIO and R2 work as well as AWS.
func NewS3Client(cfg config.S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func New(client Putter, bucket, publicURL string) *Store {
	return &Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func Key(salonID uuid.UUID) string {
	return "logos/" + salonID.String() + ".webp"
}

// Upload converts the image to WebP, at most MaxSide pixels on its longer
// side, stores it and returns its public URL.
func (s *Store) Upload(ctx context.Context, salonID uuid.UUID, r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read logo: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return "", ErrTooLarge
	}

	encoded, err := Convert(raw)
	if err != nil {
		return "", err
	}

	key := Key(salonID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(encoded),
		ContentType:  aws.String("image/webp"),
		CacheControl: aws.String("public, max-age=86400"),
	})
	if err != nil {
		return "", httperr.ErrStorage("put logo", err)
	}

	return s.url(key), nil
}

func (s *Store) url(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return "/" + s.bucket + "/" + key
}

// Convert decodes a PNG, JPEG or WebP image and re-encodes it as WebP.
func Convert(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrInvalidImage
	}

	img := fit(src, MaxSide)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func fit(src image.Image, side int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= side && h <= side {
		return src
	}

	if w >= h {
		h = h * side / w
		w = side
	} else {
		w = w * side / h
		h = side
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
