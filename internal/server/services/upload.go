package services

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/config"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// Upload kinds.
const (
	UploadResume   = "resume"
	UploadDocument = "document"
	UploadLogo     = "logo"
)

var allowedExtensions = map[string][]string{
	UploadResume:   {".pdf", ".doc", ".docx"},
	UploadDocument: {".pdf", ".doc", ".docx", ".xls", ".xlsx", ".zip", ".jpg", ".jpeg", ".png"},
	UploadLogo:     {".png", ".jpg", ".jpeg", ".svg", ".webp"},
}

// PresignedUpload tells the browser where to PUT the file. Key is what
// claims and profiles store afterwards.
type PresignedUpload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UploadService struct {
	config *config.Config
}

func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{config: cfg}
}

// StorageKey builds uploads/<kind>/<yyyy>/<mm>/<dd>/<uuid><ext>.
func StorageKey(kind, ext string, at time.Time) string {
	return fmt.Sprintf("uploads/%s/%04d/%02d/%02d/%s%s", kind, at.Year(), at.Month(), at.Day(), uuid.New(), ext)
}

func (s *UploadService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})
	return newS3PresignClient(client), nil
}

// Presign returns a short-lived PUT URL for a new object of kind.
func (s *UploadService) Presign(ctx context.Context, user *models.User, kind, filename, contentType string) (*PresignedUpload, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	exts, ok := allowedExtensions[kind]
	if !ok {
		return nil, common.NewValidationError("kind", "must be one of resume, document, logo")
	}
	ext := strings.ToLower(path.Ext(filename))
	if !slices.Contains(exts, ext) {
		return nil, common.NewValidationError("filename", "file type "+ext+" is not allowed for a "+kind)
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	at := now()
	bucket := s.config.S3Bucket
	key := StorageKey(kind, ext, at)
	in := &s3.PutObjectInput{Bucket: &bucket, Key: &key}
	if contentType != "" {
		in.ContentType = &contentType
	}

	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}
	return &PresignedUpload{Key: key, URL: req.URL, ExpiresAt: at.Add(presignValidity)}, nil
}
