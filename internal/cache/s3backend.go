package cache

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"
)

// S3Backend is the object-store cache backend of §DOMAIN STACK, storing
// tiles at "<prefix>/<tileset>/<z>/<x>/<y>.pbf[.gz]" inside Bucket.
type S3Backend struct {
	Client *s3.Client
	Bucket string
	Prefix string
}

// S3Config carries the connection parameters for an object-store cache
// backend; Endpoint/ForcePathStyle support S3-compatible stores used in
// self-hosted deployments.
type S3Config struct {
	Bucket         string
	Prefix         string
	Region         string
	Endpoint       string
	ForcePathStyle bool
}

// NewS3Backend loads AWS credentials the standard way (env, shared
// config, IAM role) via aws-sdk-go-v2/config, matching how the rest of
// the ecosystem wires this SDK rather than hand-rolling signing.
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 cache backend: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Backend{Client: client, Bucket: cfg.Bucket, Prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

func (s *S3Backend) objectKey(key Key) string {
	if s.Prefix == "" {
		return key.Path()
	}
	return s.Prefix + "/" + key.Path()
}

func (s *S3Backend) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("s3 cache backend: get: %w", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3 cache backend: read body: %w", err)
	}
	return data, true, nil
}

func (s *S3Backend) Exists(ctx context.Context, key Key) (bool, error) {
	_, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if isNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *S3Backend) Put(ctx context.Context, key Key, data []byte) error {
	contentType := "application/vnd.mapbox-vector-tile"
	var contentEncoding *string
	if key.Gzip {
		contentEncoding = aws.String("gzip")
	}
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.Bucket),
		Key:             aws.String(s.objectKey(key)),
		Body:            bytes.NewReader(data),
		ContentType:     aws.String(contentType),
		ContentEncoding: contentEncoding,
	})
	if err != nil {
		return fmt.Errorf("s3 cache backend: put: %w", err)
	}
	log.Debugf("s3 cache backend: wrote s3://%s/%s (%d bytes)", s.Bucket, s.objectKey(key), len(data))
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &notFound)
}
