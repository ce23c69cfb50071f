// Package source reads templates and data models from local files or S3,
// and writes rendered output back.
//
// Locations are either filesystem paths or s3://bucket/key URLs.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
)

const tracerName = "github.com/vango-dev/vbind/internal/source"

// s3Scheme prefixes S3 locations.
const s3Scheme = "s3://"

// S3API is the subset of *s3.Client the loader uses.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Location is a parsed source location.
type Location struct {
	// Bucket and Key are set for S3 locations.
	Bucket string
	Key    string

	// Path is set for local files.
	Path string
}

// IsS3 reports whether l addresses an S3 object.
func (l Location) IsS3() bool {
	return l.Bucket != ""
}

// String returns l in the form ParseLocation accepts.
func (l Location) String() string {
	if l.IsS3() {
		return s3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// ParseLocation parses a file path or s3://bucket/key URL.
func ParseLocation(s string) (Location, error) {
	rest, ok := strings.CutPrefix(s, s3Scheme)
	if !ok {
		if s == "" {
			return Location{}, errors.New("E080").WithDetail("Empty location.")
		}
		return Location{Path: s}, nil
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return Location{}, errors.New("E080").
			WithSource(s).
			WithDetail("S3 locations need both a bucket and a key.")
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// Loader reads and writes locations.
type Loader struct {
	s3     S3API
	tracer trace.Tracer
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithS3 sets the client used for s3:// locations.
func WithS3(client S3API) Option {
	return func(l *Loader) {
		l.s3 = client
	}
}

// WithLogger sets the loader logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTracer sets the tracer used for load spans.
func WithTracer(t trace.Tracer) Option {
	return func(l *Loader) {
		l.tracer = t
	}
}

// NewLoader creates a Loader. Without WithS3, s3:// locations fail.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		tracer: otel.Tracer(tracerName),
		logger: slog.Default().With("component", "source"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Read returns the contents at location.
func (l *Loader) Read(ctx context.Context, location string) (data []byte, err error) {
	ctx, span := l.tracer.Start(ctx, "source.Read",
		trace.WithAttributes(attribute.String("vbind.location", location)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("vbind.bytes", len(data)))
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	if !loc.IsS3() {
		data, err = os.ReadFile(loc.Path)
		if err != nil {
			return nil, errors.New("E080").WithSource(location).WithDetail(err.Error()).Wrap(err)
		}
		return data, nil
	}

	if l.s3 == nil {
		return nil, errors.New("E082").WithSource(location).WithDetail("No S3 client configured.")
	}
	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, errors.New("E082").WithSource(location).WithDetail(err.Error()).Wrap(err)
	}
	defer out.Body.Close()

	data, err = io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("E082").WithSource(location).WithDetail(err.Error()).Wrap(err)
	}
	l.logger.Debug("fetched object", "bucket", loc.Bucket, "key", loc.Key, "bytes", len(data))
	return data, nil
}

// Write stores data at location. Local files are created with mode 0644.
func (l *Loader) Write(ctx context.Context, location string, data []byte, contentType string) (err error) {
	ctx, span := l.tracer.Start(ctx, "source.Write",
		trace.WithAttributes(
			attribute.String("vbind.location", location),
			attribute.Int("vbind.bytes", len(data)),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	loc, err := ParseLocation(location)
	if err != nil {
		return err
	}
	if !loc.IsS3() {
		if err := os.WriteFile(loc.Path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", loc.Path, err)
		}
		return nil
	}

	if l.s3 == nil {
		return errors.New("E082").WithSource(location).WithDetail("No S3 client configured.")
	}
	_, err = l.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(loc.Bucket),
		Key:         aws.String(loc.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.New("E082").WithSource(location).WithDetail(err.Error()).Wrap(err)
	}
	return nil
}

// Template reads and parses the template at location into a fragment.
func (l *Loader) Template(ctx context.Context, location string) (*dom.Node, error) {
	data, err := l.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	root, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.New("E040").WithSource(location).WithDetail(err.Error()).Wrap(err)
	}
	return root, nil
}

// Model reads and decodes the data model at location. An empty location
// yields an empty model.
func (l *Loader) Model(ctx context.Context, location string) (map[string]any, error) {
	if location == "" {
		return make(map[string]any), nil
	}
	data, err := l.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	model, err := DecodeModel(data)
	if err != nil {
		return nil, errors.FromError(err, "E081").WithSource(location)
	}
	return model, nil
}
