package s3_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"
	s3loader "github.com/OFFIS-RIT/eventgraph/backend/pkg/loader/s3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string]string
	calls   atomic.Int32
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls.Add(1)
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

func TestS3Loader(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{
		"in/taxonomy.json": `{"Relations": {"coop": {"sentiment": 2}}}`,
	}}
	l := s3loader.NewS3GraphFileLoaderWithClient("graphs", bucket)
	file := loader.NewGraphTaxonomyFile(loader.NewGraphFileParams{FilePath: "in/taxonomy.json", Loader: l})

	tax, err := loader.LoadTaxonomy(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 1, tax.LabelCount())

	_, err = loader.LoadTaxonomy(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, int32(1), bucket.calls.Load())

	_, err = loader.LoadEvents(context.Background(), loader.NewGraphEventsFile(loader.NewGraphFileParams{FilePath: "missing", Loader: l}))
	assert.Error(t, err)
}
