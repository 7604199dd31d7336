package usageexport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/AdEngine/app/models"
	"github.com/ManuelReschke/AdEngine/internal/pkg/quota"
)

const defaultPageSize = 1000

// UsageLister pages through the ledger.
type UsageLister interface {
	ListInRange(ctx context.Context, from, to time.Time, offset, limit int) ([]models.UsageRecord, error)
}

// ObjectPutter is the part of *s3.Client the exporter uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Line is one exported usage row.
type Line struct {
	UUID            string    `json:"uuid"`
	UserID          uint      `json:"user_id"`
	InputURL        string    `json:"input_url"`
	GenerationCount int       `json:"generation_count"`
	AIModelUsed     string    `json:"ai_model_used"`
	CreatedAt       time.Time `json:"created_at"`
}

type Result struct {
	Bucket string
	Key    string
	Rows   int
}

type Exporter struct {
	usage    UsageLister
	s3       ObjectPutter
	bucket   string
	pageSize int
}

func NewExporter(usage UsageLister, s3Client ObjectPutter, bucket string) *Exporter {
	return &Exporter{usage: usage, s3: s3Client, bucket: bucket, pageSize: defaultPageSize}
}

// ObjectKey returns usage/YYYY/MM/<id>.jsonl for the month.
func ObjectKey(month time.Time, id string) string {
	month = month.UTC()
	return fmt.Sprintf("usage/%04d/%02d/%s.jsonl", month.Year(), int(month.Month()), id)
}

// Export writes every usage row of the UTC month containing month as JSON
// lines into one object. An empty month still produces an (empty) object.
func (e *Exporter) Export(ctx context.Context, month time.Time) (*Result, error) {
	from, to := quota.MonthBounds(month)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	rows := 0

	for offset := 0; ; offset += e.pageSize {
		page, err := e.usage.ListInRange(ctx, from, to, offset, e.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list usage: %w", err)
		}
		for _, r := range page {
			if err := enc.Encode(Line{
				UUID:            r.UUID,
				UserID:          r.UserID,
				InputURL:        r.InputURL,
				GenerationCount: r.GenerationCount,
				AIModelUsed:     r.AIModelUsed,
				CreatedAt:       r.CreatedAt.UTC(),
			}); err != nil {
				return nil, err
			}
			rows++
		}
		if len(page) < e.pageSize {
			break
		}
	}

	key := ObjectKey(from, uuid.NewString())
	_, err := e.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentType:   aws.String("application/x-ndjson"),
		ContentLength: aws.Int64(int64(buf.Len())),
		Metadata: map[string]string{
			"rows":  fmt.Sprintf("%d", rows),
			"month": from.Format("2006-01"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	log.Infof("[UsageExport] Exported %d rows to s3://%s/%s", rows, e.bucket, key)
	return &Result{Bucket: e.bucket, Key: key, Rows: rows}, nil
}
