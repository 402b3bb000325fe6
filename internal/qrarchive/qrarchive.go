// Package qrarchive keeps a compact copy of each PIX QR code in object
// storage. The gateway's own QR link expires; the archived copy lets staff
// show the code again later.
package qrarchive

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/BruksfildServices01/companion-booking/internal/config"
)

const (
	size        = 512
	contentType = "image/webp"
)

var ErrEmptyImage = errors.New("qrarchive: empty image")

type Uploader interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// KeyStore grava a chave do objeto no agendamento.
type KeyStore interface {
	SetArchiveKey(ctx context.Context, appointmentID uint, key string) error
}

type Archiver struct {
	uploader Uploader
	store    KeyStore
	log      *zap.Logger
}

func New(uploader Uploader, store KeyStore, log *zap.Logger) *Archiver {
	return &Archiver{uploader: uploader, store: store, log: log.Named("qrarchive")}
}

// Archive converte o PNG em base64 para WebP 512x512, envia e grava a chave.
func (a *Archiver) Archive(ctx context.Context, appointmentID uint, encodedPNG string) (string, error) {
	body, err := Encode(encodedPNG)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("pix/%d-%s.webp", appointmentID, uuid.NewString())
	if err := a.uploader.Put(ctx, key, contentType, body); err != nil {
		return "", fmt.Errorf("qrarchive: upload %s: %w", key, err)
	}

	if err := a.store.SetArchiveKey(ctx, appointmentID, key); err != nil {
		return "", fmt.Errorf("qrarchive: save key: %w", err)
	}

	a.log.Info("pix qr archived",
		zap.Uint("appointment_id", appointmentID),
		zap.String("key", key),
		zap.Int("bytes", len(body)),
	)
	return key, nil
}

// Encode aceita base64 puro ou data URI.
func Encode(encodedPNG string) ([]byte, error) {
	raw := strings.TrimSpace(encodedPNG)
	if i := strings.Index(raw, ","); strings.HasPrefix(raw, "data:") && i > 0 {
		raw = raw[i+1:]
	}
	if raw == "" {
		return nil, ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("qrarchive: decode base64: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("qrarchive: decode image: %w", err)
	}

	// vizinho mais próximo mantém as bordas dos módulos nítidas
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Lossless: true}); err != nil {
		return nil, fmt.Errorf("qrarchive: encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// ===============================
// S3
// ===============================

type S3Uploader struct {
	client *s3.Client
	bucket string
}

func NewS3Uploader(cfg config.S3Config) *S3Uploader {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, bucket: cfg.Bucket}
}

func (u *S3Uploader) Put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	return err
}
