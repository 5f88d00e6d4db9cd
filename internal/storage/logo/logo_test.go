package logo

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload_ResizesAndStoresWebP(t *testing.T) {
	putter := &fakePutter{}
	store := New(putter, "logos-bucket", "https://cdn.example/")
	salonID := uuid.New()

	url, err := store.Upload(context.Background(), salonID, bytes.NewReader(pngOf(t, 1024, 256)))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example/logos/"+salonID.String()+".webp", url)
	require.NotNil(t, putter.in)
	assert.Equal(t, "logos-bucket", *putter.in.Bucket)
	assert.Equal(t, "image/webp", *putter.in.ContentType)

	img, err := webp.Decode(bytes.NewReader(putter.body))
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
}

func TestUpload_SmallImageKeepsSize(t *testing.T) {
	putter := &fakePutter{}
	store := New(putter, "b", "")

	url, err := store.Upload(context.Background(), uuid.New(), bytes.NewReader(pngOf(t, 64, 32)))
	require.NoError(t, err)
	assert.Contains(t, url, "/b/logos/")

	img, err := webp.Decode(bytes.NewReader(putter.body))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestUpload_RejectsGarbage(t *testing.T) {
	store := New(&fakePutter{}, "b", "")

	_, err := store.Upload(context.Background(), uuid.New(), bytes.NewReader([]byte("not an image")))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestUpload_StorageFailure(t *testing.T) {
	store := New(&fakePutter{err: errors.New("bucket gone")}, "b", "")

	_, err := store.Upload(context.Background(), uuid.New(), bytes.NewReader(pngOf(t, 8, 8)))
	assert.True(t, httperr.IsStorage(err))
}
