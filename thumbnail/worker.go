package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/jpeg"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aishare/storage"
)

const (
	queueKey    = "thumbnails"
	maxWidth    = 900
	jpegQuality = 85
)

// Job describes one pending thumbnail generation.
type Job struct {
	PostID  uint   `json:"post_id"`
	OrigURL string `json:"orig_url"`
}

// Worker consumes thumbnail jobs from a Redis list, renders a 16:9 JPEG
// thumbnail, uploads it, and records the URL on the post. Processing is
// at-least-once; regenerating a thumbnail is harmless.
type Worker struct {
	rc     *redis.Client
	db     *gorm.DB
	store  *storage.Store
	logger *zap.Logger
}

func NewWorker(rc *redis.Client, db *gorm.DB, store *storage.Store, logger *zap.Logger) *Worker {
	return &Worker{rc: rc, db: db, store: store, logger: logger}
}

// Enqueue queues a job. Failures are logged and swallowed so an upload
// never fails because the queue is unreachable.
func (w *Worker) Enqueue(ctx context.Context, job Job) {
	payload, err := json.Marshal(job)
	if err != nil {
		w.logger.Error("marshal thumbnail job", zap.Uint("post_id", job.PostID), zap.Error(err))
		return
	}
	if err := w.rc.LPush(ctx, queueKey, payload).Err(); err != nil {
		w.logger.Error("enqueue thumbnail job", zap.Uint("post_id", job.PostID), zap.Error(err))
	}
}

// Run blocks consuming jobs until ctx is cancelled. Meant to be launched
// in its own goroutine from main.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("thumbnail worker started")
	for {
		res, err := w.rc.BRPop(ctx, 5*time.Second, queueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				w.logger.Info("thumbnail worker stopped")
				return
			}
			w.logger.Error("pop thumbnail job", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			w.logger.Error("decode thumbnail job", zap.String("payload", res[1]), zap.Error(err))
			continue
		}
		if err := w.process(ctx, job); err != nil {
			w.logger.Error("thumbnail job failed",
				zap.Uint("post_id", job.PostID), zap.String("orig_url", job.OrigURL), zap.Error(err))
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) error {
	key := w.store.KeyFromURL(job.OrigURL)
	if key == "" {
		return fmt.Errorf("url %q is outside the bucket", job.OrigURL)
	}
	data, err := w.store.Download(ctx, key)
	if err != nil {
		return err
	}

	thumb, err := Render(data)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(path.Base(key), path.Ext(key))
	thumbKey := fmt.Sprintf("thumb_%s_%d.jpg", base, time.Now().Unix())
	url, err := w.store.UploadBytes(ctx, thumbKey, thumb, "image/jpeg")
	if err != nil {
		return err
	}

	if err := w.db.WithContext(ctx).
		Exec(`UPDATE posts SET image_thumb_url = ? WHERE id = ?`, url, job.PostID).Error; err != nil {
		return fmt.Errorf("store thumbnail url: %w", err)
	}
	w.logger.Info("thumbnail generated", zap.Uint("post_id", job.PostID), zap.String("url", url))
	return nil
}

// Render decodes an image, center-crops it to 16:9, caps the width, and
// re-encodes as JPEG.
func Render(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	width := img.Bounds().Dx()
	if width > maxWidth {
		width = maxWidth
	}
	height := width * 9 / 16
	out := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
