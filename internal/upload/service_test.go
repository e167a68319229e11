package upload_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"joyex-backend/internal/quality"
	"joyex-backend/internal/upload"
)

var objectNamePattern = regexp.MustCompile(`^\d+_[a-z0-9]+\.[a-z0-9]+$`)

type recordingBackend struct {
	mu    sync.Mutex
	keys  []string
	types []string
	err   error
}

func (b *recordingBackend) Put(_ context.Context, key, contentType string, _ []byte) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, key)
	b.types = append(b.types, contentType)
	return "https://cdn.example/" + key, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func TestService_StoreNamesFilesWithTimestampAndRandomID(t *testing.T) {
	backend := &recordingBackend{}
	svc := upload.NewService(backend, 0, 0, nil, nil)

	urls, err := svc.Store(context.Background(), []upload.File{
		{Name: "shoe.PNG", Data: encodePNG(t, 4, 4)},
		{Name: "noext", Data: encodeJPEG(t, 4, 4)},
	}, upload.Options{})
	require.NoError(t, err)
	require.Len(t, urls, 2)

	for _, key := range backend.keys {
		assert.Regexp(t, objectNamePattern, key)
	}
	assert.True(t, filepath.Ext(backend.keys[0]) == ".png")
	assert.True(t, filepath.Ext(backend.keys[1]) == ".jpg")
	assert.Equal(t, []string{"image/png", "image/jpeg"}, backend.types)
	assert.Equal(t, "https://cdn.example/"+backend.keys[0], urls[0])
}

func TestService_StoreRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name  string
		files func(t *testing.T) []upload.File
	}{
		{"no files", func(t *testing.T) []upload.File { return nil }},
		{"not an image", func(t *testing.T) []upload.File {
			return []upload.File{{Name: "notes.txt", Data: []byte("hello there")}}
		}},
		{"too large", func(t *testing.T) []upload.File {
			return []upload.File{{Name: "big.png", Data: append(encodePNG(t, 2, 2), make([]byte, 2048)...)}}
		}},
		{"too many", func(t *testing.T) []upload.File {
			files := make([]upload.File, 3)
			for i := range files {
				files[i] = upload.File{Name: "a.png", Data: encodePNG(t, 2, 2)}
			}
			return files
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &recordingBackend{}
			svc := upload.NewService(backend, 1024, 2, nil, nil)

			_, err := svc.Store(context.Background(), tt.files(t), upload.Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, upload.ErrInvalidUpload)
			assert.Empty(t, backend.keys)
		})
	}
}

func TestService_StoreBackendFailureIsNotAClientError(t *testing.T) {
	svc := upload.NewService(&recordingBackend{err: errors.New("disk full")}, 0, 0, nil, nil)

	_, err := svc.Store(context.Background(), []upload.File{{Name: "a.png", Data: encodePNG(t, 2, 2)}}, upload.Options{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, upload.ErrInvalidUpload)
}

func TestService_StoreOptimizesUnlessBypassed(t *testing.T) {
	backend := &recordingBackend{}
	svc := upload.NewService(backend, 0, 0, nil, nil)

	_, err := svc.Store(context.Background(), []upload.File{
		{Name: "photo.jpeg", Data: encodeJPEG(t, 33, 17)},
		{Name: "already.png", Data: encodePNG(t, 33, 17)},
	}, upload.Options{Optimize: true})
	require.NoError(t, err)

	assert.Equal(t, ".jpg", filepath.Ext(backend.keys[0]))
	assert.Equal(t, "image/jpeg", backend.types[0])
	assert.Equal(t, ".png", filepath.Ext(backend.keys[1]))
	assert.Equal(t, "image/png", backend.types[1])
}

func encodeNoisyJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng.Read(img.Pix)
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}

func TestService_StoreRecordsOptimizationQuality(t *testing.T) {
	monitor := quality.NewMonitor(0)
	svc := upload.NewService(&recordingBackend{}, 16<<20, 0, monitor, nil)

	_, err := svc.Store(context.Background(), []upload.File{
		{Name: "wide.jpg", Data: encodeNoisyJPEG(t, 4096, 64)},
		{Name: "already.png", Data: encodePNG(t, 8, 8)},
	}, upload.Options{Optimize: true})
	require.NoError(t, err)

	require.Equal(t, 1, monitor.Len(), "bypassed files are not optimized")
	stats := monitor.Stats()
	assert.Equal(t, float64(100), stats.SuccessRate)
	assert.Positive(t, stats.TotalDataSaved)
	assert.Positive(t, stats.OptimizationEfficiency)
	assert.Positive(t, stats.AverageQualityScore)

	raw := monitor.Export().RawMetrics[0]
	assert.Greater(t, raw.InputImageSize, raw.OutputImageSize)
	assert.Positive(t, raw.CompressionRatio)

	broken := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x01}, 64)...)
	_, err = svc.Store(context.Background(), []upload.File{{Name: "broken.jpg", Data: broken}}, upload.Options{Optimize: true})
	require.NoError(t, err)
	assert.Equal(t, 2, monitor.Len())
	assert.Equal(t, float64(50), monitor.Stats().SuccessRate)
}

func TestService_StoreWithoutOptimizeRecordsNothing(t *testing.T) {
	monitor := quality.NewMonitor(0)
	svc := upload.NewService(&recordingBackend{}, 0, 0, monitor, nil)

	_, err := svc.Store(context.Background(), []upload.File{{Name: "photo.jpg", Data: encodeJPEG(t, 8, 8)}}, upload.Options{})
	require.NoError(t, err)
	assert.Zero(t, monitor.Len())
}

func TestLocalBackend_PutWritesUnderPublicPath(t *testing.T) {
	dir := t.TempDir()
	backend, err := upload.NewLocalBackend(dir, "uploads/")
	require.NoError(t, err)

	url, err := backend.Put(context.Background(), "1700000000000_abc.png", "image/png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000_abc.png", url)

	written, err := os.ReadFile(filepath.Join(dir, "1700000000000_abc.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), written)
}

func TestS3Backend_PutUsesPathStyleEndpoint(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	backend, err := upload.NewS3Backend(context.Background(), upload.S3Config{
		Endpoint:        server.URL,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "joyex",
		PublicBaseURL:   "https://images.example/",
	})
	require.NoError(t, err)

	url, err := backend.Put(context.Background(), "1_abc.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "https://images.example/1_abc.png", url)
	assert.Equal(t, "/joyex/1_abc.png", gotPath)
	assert.Equal(t, "image/png", gotContentType)
	assert.Contains(t, string(gotBody), "png-bytes")
}

func TestNewS3Backend_RequiresCredentials(t *testing.T) {
	_, err := upload.NewS3Backend(context.Background(), upload.S3Config{Bucket: "joyex"})
	assert.Error(t, err)
}

func TestLocalBackend_PutKeepsWritesInsideDir(t *testing.T) {
	dir := t.TempDir()
	backend, err := upload.NewLocalBackend(dir, "/uploads")
	require.NoError(t, err)

	url, err := backend.Put(context.Background(), "../../results/u1/x.png", "image/png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/results/u1/x.png", url)

	_, err = os.Stat(filepath.Join(dir, "results", "u1", "x.png"))
	assert.NoError(t, err)
}
