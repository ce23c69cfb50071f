package source

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/errors"
)

// fakeS3 serves objects from memory, keyed by "bucket/key".
type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

var errNoSuchKey = stderrors.New("NoSuchKey")

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	name := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[name] = data
	f.types[name] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func code(t *testing.T, err error) string {
	t.Helper()
	var ve *errors.VbindError
	require.True(t, stderrors.As(err, &ve), "not a coded error: %v", err)
	return ve.Code
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want Location
		code string
	}{
		{in: "page.html", want: Location{Path: "page.html"}},
		{in: "/abs/data.yaml", want: Location{Path: "/abs/data.yaml"}},
		{in: "s3://bucket/dir/page.html", want: Location{Bucket: "bucket", Key: "dir/page.html"}},
		{in: "s3://bucket", code: "E080"},
		{in: "s3:///key", code: "E080"},
		{in: "", code: "E080"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			if tt.code != "" {
				assert.Equal(t, tt.code, code(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestReadLocalAndS3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>local</p>"), 0o644))

	fake := newFakeS3()
	fake.objects["b/page.html"] = []byte("<p>remote</p>")
	l := NewLoader(WithS3(fake))

	data, err := l.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "<p>local</p>", string(data))

	data, err = l.Read(context.Background(), "s3://b/page.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>remote</p>", string(data))

	_, err = l.Read(context.Background(), "s3://b/missing")
	assert.Equal(t, "E082", code(t, err))
	assert.ErrorIs(t, err, errNoSuchKey)

	_, err = l.Read(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, "E080", code(t, err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadS3WithoutClient(t *testing.T) {
	_, err := NewLoader().Read(context.Background(), "s3://b/k")
	assert.Equal(t, "E082", code(t, err))
}

func TestWrite(t *testing.T) {
	fake := newFakeS3()
	l := NewLoader(WithS3(fake))

	require.NoError(t, l.Write(context.Background(), "s3://out/index.html", []byte("<p>x</p>"), "text/html"))
	assert.Equal(t, "<p>x</p>", string(fake.objects["out/index.html"]))
	assert.Equal(t, "text/html", fake.types["out/index.html"])

	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, l.Write(context.Background(), path, []byte("<p>y</p>"), "text/html"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>y</p>", string(data))
}

func TestTemplate(t *testing.T) {
	fake := newFakeS3()
	fake.objects["b/t.html"] = []byte(`<p>{{ msg }}</p><input v-model="msg">`)

	root, err := NewLoader(WithS3(fake)).Template(context.Background(), "s3://b/t.html")
	require.NoError(t, err)
	assert.Len(t, root.Children, 2)
	assert.Equal(t, `<p>{{ msg }}</p><input v-model="msg">`, root.InnerHTML())
}

func TestModel(t *testing.T) {
	fake := newFakeS3()
	fake.objects["b/data.yaml"] = []byte("user:\n  name: ann\n  tags: [a, b]\ncount: 3\n")
	fake.objects["b/data.json"] = []byte(`{"open": true, "items": [{"id": 1}]}`)
	fake.objects["b/list.yaml"] = []byte("- 1\n- 2\n")
	l := NewLoader(WithS3(fake))

	model, err := l.Model(context.Background(), "s3://b/data.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"user":  map[string]any{"name": "ann", "tags": []any{"a", "b"}},
		"count": 3,
	}, model)

	model, err = l.Model(context.Background(), "s3://b/data.json")
	require.NoError(t, err)
	assert.Equal(t, true, model["open"])
	assert.Equal(t, []any{map[string]any{"id": 1}}, model["items"])

	_, err = l.Model(context.Background(), "s3://b/list.yaml")
	assert.Equal(t, "E081", code(t, err))

	model, err = l.Model(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, model)
}

func TestDecodeModel(t *testing.T) {
	model, err := DecodeModel([]byte("1: one\nnested:\n  2: two\n"))
	require.NoError(t, err)
	assert.Equal(t, "one", model["1"])
	assert.Equal(t, map[string]any{"2": "two"}, model["nested"])

	model, err = DecodeModel(nil)
	require.NoError(t, err)
	assert.Empty(t, model)

	_, err = DecodeModel([]byte("a: [unclosed"))
	assert.Equal(t, "E081", code(t, err))
}

func TestNewS3Client(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	client := NewS3Client(config.S3Config{
		Region:    "eu-west-1",
		Endpoint:  "http://localhost:9000",
		PathStyle: true,
	})
	opts := client.Options()
	assert.Equal(t, "eu-west-1", opts.Region)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
	_, err := opts.Credentials.Retrieve(context.Background())
	assert.Error(t, err, "anonymous credentials cannot sign")

	client = NewS3Client(config.S3Config{Region: "eu-west-1", AccessKeyID: "id", SecretAccessKey: "secret"})
	creds, err := client.Options().Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", creds.AccessKeyID)
	assert.Equal(t, "vbind.yaml", creds.Source)

	t.Setenv("AWS_ACCESS_KEY_ID", "env-id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "env-secret")
	creds, err = NewS3Client(config.S3Config{}).Options().Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-id", creds.AccessKeyID)
	assert.Equal(t, "environment", creds.Source)
}
