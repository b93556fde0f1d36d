package attachment_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dmarieta/chatarra/internal/attachment"
)

func TestPipeline_ReferencesPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := attachment.NewMockUploader(ctrl)
	// No Upload expectations: a reference-only save must not touch storage.

	p := attachment.NewPipeline(uploader, time.Second)

	refs := p.Materialize(context.Background(), "TXN-00000007", []attachment.Payload{
		{Ref: "TXN-00000007/0-aaaa.jpg"},
		{Ref: "TXN-00000007/1-bbbb.jpg"},
	})

	assert.Equal(t, []string{"TXN-00000007/0-aaaa.jpg", "TXN-00000007/1-bbbb.jpg"}, refs)
}

func TestPipeline_UploadsRawPayloads(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := attachment.NewMockUploader(ctrl)

	uploader.EXPECT().
		Upload(gomock.Any(), gomock.Any(), []byte("jpeg bytes"), "image/jpeg").
		DoAndReturn(func(_ context.Context, name string, _ []byte, _ string) (string, error) {
			assert.True(t, strings.HasPrefix(name, "TXN-00000007/0-"), "got %q", name)
			assert.True(t, strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".jpe") || strings.HasSuffix(name, ".jpeg"), "got %q", name)
			return "https://files.example/" + name, nil
		})

	p := attachment.NewPipeline(uploader, time.Second)

	refs := p.Materialize(context.Background(), "TXN-00000007", []attachment.Payload{
		{Data: []byte("jpeg bytes"), ContentType: "image/jpeg"},
	})

	require.Len(t, refs, 1)
	assert.True(t, strings.HasPrefix(refs[0], "https://files.example/TXN-00000007/"))
}

func TestPipeline_FailedUploadDropsOnlyThatItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := attachment.NewMockUploader(ctrl)

	uploader.EXPECT().
		Upload(gomock.Any(), gomock.Any(), []byte("one"), gomock.Any()).
		Return("ref-one", nil)
	uploader.EXPECT().
		Upload(gomock.Any(), gomock.Any(), []byte("two"), gomock.Any()).
		Return("", errors.New("bucket unavailable"))
	uploader.EXPECT().
		Upload(gomock.Any(), gomock.Any(), []byte("three"), gomock.Any()).
		Return("ref-three", nil)

	p := attachment.NewPipeline(uploader, time.Second)

	refs := p.Materialize(context.Background(), "TXN-00000007", []attachment.Payload{
		{Data: []byte("one"), ContentType: "image/png"},
		{Data: []byte("two"), ContentType: "image/png"},
		{Data: []byte("three"), ContentType: "image/png"},
	})

	assert.Equal(t, []string{"ref-one", "ref-three"}, refs)
}

func TestPipeline_SkipsEmptyPayloads(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := attachment.NewMockUploader(ctrl)

	p := attachment.NewPipeline(uploader, time.Second)

	refs := p.Materialize(context.Background(), "TXN-00000007", []attachment.Payload{
		{},
		{Data: nil, ContentType: "image/png"},
	})

	assert.Empty(t, refs)
}

func TestPipeline_MixedOrderIsPreserved(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := attachment.NewMockUploader(ctrl)

	uploader.EXPECT().
		Upload(gomock.Any(), gomock.Any(), []byte("new"), gomock.Any()).
		Return("ref-new", nil)

	p := attachment.NewPipeline(uploader, time.Second)

	refs := p.Materialize(context.Background(), "TXN-00000007", []attachment.Payload{
		{Ref: "ref-kept"},
		{Data: []byte("new"), ContentType: "image/png"},
	})

	assert.Equal(t, []string{"ref-kept", "ref-new"}, refs)
}

func TestPipeline_UploadRespectsTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := attachment.NewMockUploader(ctrl)

	uploader.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ []byte, _ string) (string, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok, "each upload must carry its own deadline")
			return "ref", nil
		})

	p := attachment.NewPipeline(uploader, 5*time.Second)

	refs := p.Materialize(context.Background(), "TXN-00000007", []attachment.Payload{
		{Data: []byte("x"), ContentType: "image/png"},
	})

	assert.Equal(t, []string{"ref"}, refs)
}

func TestRefs(t *testing.T) {
	payloads := []attachment.Payload{
		{Ref: "a"},
		{Data: []byte("raw")},
		{Ref: "b"},
	}

	assert.Equal(t, []string{"a", "b"}, attachment.Refs(payloads))
}

func TestFromRefs(t *testing.T) {
	payloads := attachment.FromRefs([]string{"a", "b"})

	require.Len(t, payloads, 2)
	assert.True(t, payloads[0].IsRef())
	assert.Equal(t, "a", payloads[0].Ref)
	assert.Equal(t, "b", payloads[1].Ref)
}
