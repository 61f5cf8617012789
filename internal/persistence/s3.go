package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Config holds bucket settings. Empty credentials fall back to the
// default AWS chain.
type S3Config struct {
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string // optional, e.g. MinIO
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// s3API is the subset of *s3.Client the store needs.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps each save as one JSON object, with slot details in object
// metadata.
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

// NewS3 builds an S3Store from cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3WithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3WithClient(client s3API, bucket, prefix string) *S3Store {
	if prefix == "" {
		prefix = "saves/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Close is a no-op; the SDK client holds no resources to release.
func (s *S3Store) Close() error { return nil }

func (s *S3Store) key(id string) string {
	return s.prefix + id + ".json"
}

// Save uploads a new slot.
func (s *S3Store) Save(ctx context.Context, r Record) (SaveInfo, error) {
	info := SaveInfo{
		ID:        uuid.NewString(),
		Name:      r.Name,
		Year:      r.Year,
		Month:     r.Month,
		Size:      int64(len(r.Data)),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(info.ID)),
		Body:        bytes.NewReader(r.Data),
		ContentType: aws.String("application/json"),
		Metadata:    toMetadata(info),
	})
	if err != nil {
		return SaveInfo{}, fmt.Errorf("put save: %w", err)
	}
	slog.Info("simulation saved", "id", info.ID, "name", info.Name, "bucket", s.bucket, "bytes", info.Size)
	return info, nil
}

// Load downloads a slot.
func (s *S3Store) Load(ctx context.Context, id string) ([]byte, SaveInfo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, SaveInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return nil, SaveInfo{}, s.wrap(id, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, SaveInfo{}, fmt.Errorf("read save %s: %w", id, err)
	}
	info := fromMetadata(id, out.Metadata)
	info.Size = int64(len(data))
	return data, info, nil
}

// List returns every slot under the prefix, newest first.
func (s *S3Store) List(ctx context.Context) ([]SaveInfo, error) {
	var infos []SaveInfo
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list saves: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			id := strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), ".json")
			head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return nil, s.wrap(id, err)
			}
			info := fromMetadata(id, head.Metadata)
			info.Size = aws.ToInt64(obj.Size)
			infos = append(infos, info)
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.After(infos[j].CreatedAt) })
	return infos, nil
}

// Latest returns the newest slot.
func (s *S3Store) Latest(ctx context.Context) (SaveInfo, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return SaveInfo{}, err
	}
	if len(infos) == 0 {
		return SaveInfo{}, ErrNotFound
	}
	return infos[0], nil
}

func (s *S3Store) wrap(id string, err error) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return fmt.Errorf("save %s: %w", id, err)
}

func toMetadata(info SaveInfo) map[string]string {
	return map[string]string{
		"name":       info.Name,
		"year":       strconv.Itoa(info.Year),
		"month":      strconv.Itoa(info.Month),
		"created-at": info.CreatedAt.Format(time.RFC3339Nano),
	}
}

// fromMetadata tolerates missing or malformed values; they read as zero.
func fromMetadata(id string, md map[string]string) SaveInfo {
	info := SaveInfo{ID: id, Name: md["name"]}
	info.Year, _ = strconv.Atoi(md["year"])
	info.Month, _ = strconv.Atoi(md["month"])
	info.CreatedAt, _ = time.Parse(time.RFC3339Nano, md["created-at"])
	return info
}
