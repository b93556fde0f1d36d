package attachment

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"time"

	"github.com/google/uuid"
)

// Payload is one attachment handed to a save. It is either a stable
// storage reference from a previous save (Ref set) or raw embedded bytes
// that still need uploading.
type Payload struct {
	Ref         string
	Data        []byte
	ContentType string
}

// IsRef reports whether the payload is already a stable reference and
// needs no upload.
func (p Payload) IsRef() bool {
	return p.Ref != ""
}

// Refs extracts the stable references from reference-only payloads.
func Refs(payloads []Payload) []string {
	refs := make([]string, 0, len(payloads))

	for _, p := range payloads {
		if p.IsRef() {
			refs = append(refs, p.Ref)
		}
	}

	return refs
}

// FromRefs wraps stored references back into payloads.
func FromRefs(refs []string) []Payload {
	payloads := make([]Payload, len(refs))
	for i, ref := range refs {
		payloads[i] = Payload{Ref: ref}
	}

	return payloads
}

//go:generate mockgen -source=attachment.go -destination=uploader_mock.go -package=attachment
type Uploader interface {
	// Upload stores data under name and returns the stable reference.
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Pipeline converts inline payloads into stable storage references.
type Pipeline struct {
	uploader Uploader
	timeout  time.Duration
}

func NewPipeline(uploader Uploader, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Pipeline{uploader: uploader, timeout: timeout}
}

// Materialize uploads each raw payload independently and returns the
// references that exist afterwards, in input order. References pass
// through untouched. A failed or timed-out upload drops that single item
// and is logged as a diagnostic; siblings and the enclosing save proceed.
// Losing a photo must never lose the transaction.
func (p *Pipeline) Materialize(ctx context.Context, owner string, payloads []Payload) []string {
	refs := make([]string, 0, len(payloads))

	for i, payload := range payloads {
		if payload.IsRef() {
			refs = append(refs, payload.Ref)
			continue
		}

		if len(payload.Data) == 0 {
			continue
		}

		ref, err := p.upload(ctx, objectName(owner, i, payload.ContentType), payload)
		if err != nil {
			slog.Warn("attachment upload dropped",
				"owner", owner, "index", i, "error", err)

			continue
		}

		refs = append(refs, ref)
	}

	return refs
}

func (p *Pipeline) upload(ctx context.Context, name string, payload Payload) (string, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ref, err := p.uploader.Upload(uploadCtx, name, payload.Data, payload.ContentType)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}

	return ref, nil
}

// objectName derives a deterministic name from the owning identity and the
// payload's position, plus a short random suffix. Repeated uploads of the
// same logical slot stay traceable; a retry may create a duplicate object,
// which is acceptable because references are regenerated wholesale on
// every save.
func objectName(owner string, index int, contentType string) string {
	ext := ".jpg"

	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}

	return fmt.Sprintf("%s/%d-%s%s", owner, index, uuid.NewString()[:8], ext)
}
