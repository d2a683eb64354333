/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package s3 implements a storage backend keeping each segment as one S3
// object under a key prefix. S3 has no partial-write support, so a
// segment's bytes are cached in memory from SegmentCreate on and written
// back whole with PutObject by Flush and by Close. SegmentRemove does not
// write the cache back.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	mcsstorage "github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// Config describes how to reach the bucket; the zero value of the
// credential fields falls back to the default AWS credential chain.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string // non-empty selects an S3-compatible endpoint (MinIO, Ceph RGW, ...)
	Bucket          string
	Prefix          string
	ForcePathStyle  bool
	Max             rangeio.MaxSize
}

type cachedSegment struct {
	mu          sync.Mutex
	data        []byte
	dirty       bool
	persistency mcsstorage.Persistency
}

// Storage is a storage.Backend backed by S3-compatible object storage.
type Storage struct {
	cfg    Config
	client *s3.Client

	mu       sync.Mutex
	segments map[storageid.SegmentID]*cachedSegment
	nextID   uint64
}

// Open establishes the S3 client per cfg. The client is opened eagerly so
// that credential/region problems surface at storage-create time rather
// than on the first operation.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, mcsstorage.ErrCreate{Cause: fmt.Errorf("s3: load config: %w", err)}
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(cfg.Endpoint) })
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	return &Storage{
		cfg:      cfg,
		client:   s3.NewFromConfig(awsCfg, s3Opts...),
		segments: make(map[storageid.SegmentID]*cachedSegment),
	}, nil
}

func (s *Storage) key(id storageid.SegmentID) string {
	pfx := strings.TrimSuffix(s.cfg.Prefix, "/")
	if pfx == "" {
		return "sg_" + strconv.FormatUint(uint64(id), 10)
	}
	return pfx + "/sg_" + strconv.FormatUint(uint64(id), 10)
}

func (s *Storage) Kind() string            { return "s3" }
func (s *Storage) SizeMax() rangeio.MaxSize { return s.cfg.Max }

func (s *Storage) SegmentCreate(size rangeio.Size, persistency mcsstorage.Persistency) (storageid.SegmentID, error) {
	s.mu.Lock()
	id := storageid.SegmentID(s.nextID)
	s.nextID++
	s.mu.Unlock()

	ctx := context.Background()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(id)),
		Body:   bytes.NewReader(make([]byte, size)),
	})
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.segments[id] = &cachedSegment{data: make([]byte, size), persistency: persistency}
	s.mu.Unlock()
	return id, nil
}

// SegmentRemove drops id from the local cache and reports its full size
// as freed. The S3 object itself is only deleted when the segment wasn't
// created with mcsstorage.Keep, or force overrides that — otherwise the
// object is left in the bucket under its key. Open does not list the
// bucket, so a later Open does not pick kept objects back up.
func (s *Storage) SegmentRemove(id storageid.SegmentID, force mcsstorage.ForceRemoval) (rangeio.Size, error) {
	s.mu.Lock()
	seg, ok := s.segments[id]
	if ok {
		delete(s.segments, id)
	}
	s.mu.Unlock()
	if !ok {
		return 0, mcsstorage.ErrUnknownSegmentID{Segment: id}
	}

	if force == mcsstorage.ForceDelete || seg.persistency != mcsstorage.Keep {
		ctx := context.Background()
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(s.key(id)),
		})
		if err != nil {
			return 0, err
		}
	}
	return rangeio.Size(len(seg.data)), nil
}

func (s *Storage) getCached(id storageid.SegmentID) (*cachedSegment, error) {
	s.mu.Lock()
	seg, ok := s.segments[id]
	s.mu.Unlock()
	if !ok {
		return nil, mcsstorage.ErrUnknownSegmentID{Segment: id}
	}
	return seg, nil
}

func (s *Storage) ChunkDescription(id storageid.SegmentID, rng rangeio.Range, access mcsstorage.Access) (mcsstorage.ChunkView, error) {
	seg, err := s.getCached(id)
	if err != nil {
		return mcsstorage.ChunkView{}, err
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()

	available := rangeio.Size(len(seg.data))
	if uint64(rng.End()) > uint64(available) {
		return mcsstorage.ChunkView{}, mcsstorage.ErrOutOfRange{Requested: rng, Available: available}
	}
	if access == mcsstorage.Mutable {
		seg.dirty = true
	}
	return mcsstorage.ChunkView{
		SegmentID: id,
		Range:     rng,
		Access:    access,
		Bytes:     seg.data[rng.Begin():rng.End()],
	}, nil
}

// Flush pushes a segment's cached bytes back to S3 if mutated since the
// last flush. The whole cached segment is written regardless of rng,
// since S3 has no partial-object write; rng is accepted to satisfy
// storage.Flusher.
func (s *Storage) Flush(id storageid.SegmentID, rng rangeio.Range) error {
	seg, err := s.getCached(id)
	if err != nil {
		return err
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if !seg.dirty {
		return nil
	}
	ctx := context.Background()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(id)),
		Body:   bytes.NewReader(seg.data),
	})
	if err == nil {
		seg.dirty = false
	}
	return err
}

func (s *Storage) FileRead(id storageid.SegmentID, path string) (rangeio.Size, error) {
	seg, err := s.getCached(id)
	if err != nil {
		return 0, err
	}
	seg.mu.Lock()
	data := append([]byte(nil), seg.data...)
	seg.mu.Unlock()

	return rangeio.Size(len(data)), os.WriteFile(path, data, 0644)
}

func (s *Storage) FileWrite(id storageid.SegmentID, path string) (rangeio.Size, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	seg, err := s.getCached(id)
	if err != nil {
		return 0, err
	}
	seg.mu.Lock()
	n := copy(seg.data, content)
	seg.dirty = true
	seg.mu.Unlock()
	return rangeio.Size(n), nil
}

func (s *Storage) Close() error {
	s.mu.Lock()
	ids := make([]storageid.SegmentID, 0, len(s.segments))
	for id := range s.segments {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		if err := s.Flush(id, rangeio.Range{}); err != nil {
			return err
		}
	}
	return nil
}
