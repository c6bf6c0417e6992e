package simplecms

import (
	"context"

	"github.com/google/uuid"
)

// Hooks defines all available lifecycle hooks
type Hooks struct {
	BeforeFileCreate []BeforeFileCreateHook
	AfterFileCreate  []AfterFileCreateHook
	AfterFileUpdate  []AfterFileUpdateHook
	BeforeFileDelete []BeforeFileDeleteHook
	AfterFileDelete  []AfterFileDeleteHook

	OnError []ErrorHook
}

// HookContext carries information through the hook chain
type HookContext struct {
	Context   context.Context
	Metadata  map[string]any // Custom metadata passed between hooks
	StopChain bool           // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]any),
	}
}

// BeforeFileCreateHook is called before creating a file. It may modify req.
type BeforeFileCreateHook func(hctx *HookContext, req *CreateFileRequest) error

// AfterFileCreateHook is called after a file is created
type AfterFileCreateHook func(hctx *HookContext, file *File) error

// AfterFileUpdateHook is called after a file's content is updated
type AfterFileUpdateHook func(hctx *HookContext, file *File) error

// BeforeFileDeleteHook is called before deleting a file
type BeforeFileDeleteHook func(hctx *HookContext, fileID uuid.UUID) error

// AfterFileDeleteHook is called after a file is deleted
type AfterFileDeleteHook func(hctx *HookContext, fileID uuid.UUID) error

// ErrorHook is called when an error occurs
type ErrorHook func(hctx *HookContext, operation string, err error)

// Merge appends the hooks of other.
func (h *Hooks) Merge(other Hooks) {
	h.BeforeFileCreate = append(h.BeforeFileCreate, other.BeforeFileCreate...)
	h.AfterFileCreate = append(h.AfterFileCreate, other.AfterFileCreate...)
	h.AfterFileUpdate = append(h.AfterFileUpdate, other.AfterFileUpdate...)
	h.BeforeFileDelete = append(h.BeforeFileDelete, other.BeforeFileDelete...)
	h.AfterFileDelete = append(h.AfterFileDelete, other.AfterFileDelete...)
	h.OnError = append(h.OnError, other.OnError...)
}

// runChain calls fn for each hook until one fails or stops the chain.
func runChain[H any](ctx context.Context, hooks []H, fn func(*HookContext, H) error) error {
	if len(hooks) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range hooks {
		if err := fn(hctx, hook); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeBeforeFileCreate(ctx context.Context, req *CreateFileRequest) error {
	return runChain(ctx, h.BeforeFileCreate, func(hctx *HookContext, hook BeforeFileCreateHook) error {
		return hook(hctx, req)
	})
}

func (h *Hooks) executeAfterFileCreate(ctx context.Context, file *File) error {
	return runChain(ctx, h.AfterFileCreate, func(hctx *HookContext, hook AfterFileCreateHook) error {
		return hook(hctx, file)
	})
}

func (h *Hooks) executeAfterFileUpdate(ctx context.Context, file *File) error {
	return runChain(ctx, h.AfterFileUpdate, func(hctx *HookContext, hook AfterFileUpdateHook) error {
		return hook(hctx, file)
	})
}

func (h *Hooks) executeBeforeFileDelete(ctx context.Context, id uuid.UUID) error {
	return runChain(ctx, h.BeforeFileDelete, func(hctx *HookContext, hook BeforeFileDeleteHook) error {
		return hook(hctx, id)
	})
}

func (h *Hooks) executeAfterFileDelete(ctx context.Context, id uuid.UUID) error {
	return runChain(ctx, h.AfterFileDelete, func(hctx *HookContext, hook AfterFileDeleteHook) error {
		return hook(hctx, id)
	})
}

// executeOnError runs all OnError hooks
func (h *Hooks) executeOnError(ctx context.Context, operation string, err error) {
	_ = runChain(ctx, h.OnError, func(hctx *HookContext, hook ErrorHook) error {
		hook(hctx, operation, err)
		return nil
	})
}
