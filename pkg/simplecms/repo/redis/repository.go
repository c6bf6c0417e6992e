// Package redis stores file records in Redis.
//
// Layout, with every key under an optional prefix:
//
//	file:<id>             STRING  JSON encoded record
//	parent:<parent>       SET     ids of the files attached to parent
//	names:<parent>        HASH    filename -> id, keeps filenames unique per parent
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

const (
	KeyFile      = "file"
	KeyParent    = "parent"
	KeyNames     = "names"
	KeySeparator = ":"
)

// Repository implements simplecms.Repository on a Redis client.
type Repository struct {
	cl     goredis.UniversalClient
	prefix string
	log    *slog.Logger
}

// New returns a repository that namespaces its keys with prefix.
func New(cl goredis.UniversalClient, prefix string, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}
	return &Repository{
		cl:     cl,
		prefix: prefix,
		log:    log.With(slog.String("item", "RedisRepository")),
	}
}

// Connect parses url, pings the server and returns a repository on it.
func Connect(ctx context.Context, url, prefix string, log *slog.Logger) (*Repository, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cannot parse redis url: %w", err)
	}

	cl := goredis.NewClient(opt)
	if _, err := cl.Ping(ctx).Result(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("cannot ping redis: %w", err)
	}
	return New(cl, prefix, log), nil
}

// Close closes the underlying client.
func (r *Repository) Close() error {
	return r.cl.Close()
}

func (r *Repository) key(keys ...string) string {
	if r.prefix != "" {
		keys = append([]string{r.prefix}, keys...)
	}
	return strings.Join(keys, KeySeparator)
}

func (r *Repository) CreateFile(ctx context.Context, file *simplecms.FileRecord) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("cannot encode file %s: %w", file.ID, err)
	}

	ok, err := r.cl.SetNX(ctx, r.key(KeyFile, file.ID.String()), data, 0).Result()
	if err != nil {
		return fmt.Errorf("cannot create file %s: %w", file.ID, err)
	}
	if !ok {
		return fmt.Errorf("%w: file %s already exists", simplecms.ErrInvalidFile, file.ID)
	}

	claimed, err := r.cl.HSetNX(ctx, r.key(KeyNames, file.Parent), file.Filename, file.ID.String()).Result()
	if err != nil || !claimed {
		r.cl.Del(ctx, r.key(KeyFile, file.ID.String()))
		if err != nil {
			return fmt.Errorf("cannot index file %s: %w", file.ID, err)
		}
		return fmt.Errorf("%w: %s already exists in %s", simplecms.ErrInvalidFile, file.Filename, file.Parent)
	}

	if err := r.cl.SAdd(ctx, r.key(KeyParent, file.Parent), file.ID.String()).Err(); err != nil {
		return fmt.Errorf("cannot index file %s: %w", file.ID, err)
	}
	return nil
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*simplecms.FileRecord, error) {
	data, err := r.cl.Get(ctx, r.key(KeyFile, id.String())).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, simplecms.ErrFileNotFound
		}
		return nil, fmt.Errorf("cannot get file %s: %w", id, err)
	}
	return decode(data)
}

func (r *Repository) UpdateFile(ctx context.Context, file *simplecms.FileRecord) error {
	old, err := r.GetFile(ctx, file.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("cannot encode file %s: %w", file.ID, err)
	}

	moved := old.Parent != file.Parent || old.Filename != file.Filename
	if moved {
		claimed, err := r.cl.HSetNX(ctx, r.key(KeyNames, file.Parent), file.Filename, file.ID.String()).Result()
		if err != nil {
			return fmt.Errorf("cannot index file %s: %w", file.ID, err)
		}
		if !claimed {
			return fmt.Errorf("%w: %s already exists in %s", simplecms.ErrInvalidFile, file.Filename, file.Parent)
		}
	}

	pipe := r.cl.TxPipeline()
	pipe.Set(ctx, r.key(KeyFile, file.ID.String()), data, 0)
	if moved {
		pipe.HDel(ctx, r.key(KeyNames, old.Parent), old.Filename)
		pipe.SRem(ctx, r.key(KeyParent, old.Parent), file.ID.String())
		pipe.SAdd(ctx, r.key(KeyParent, file.Parent), file.ID.String())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cannot update file %s: %w", file.ID, err)
	}
	return nil
}

func (r *Repository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	old, err := r.GetFile(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.cl.TxPipeline()
	pipe.Del(ctx, r.key(KeyFile, id.String()))
	pipe.HDel(ctx, r.key(KeyNames, old.Parent), old.Filename)
	pipe.SRem(ctx, r.key(KeyParent, old.Parent), id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cannot delete file %s: %w", id, err)
	}
	return nil
}

func (r *Repository) ListFiles(ctx context.Context, parent string) ([]*simplecms.FileRecord, error) {
	ids, err := r.cl.SMembers(ctx, r.key(KeyParent, parent)).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot list files of %s: %w", parent, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(KeyFile, id)
	}

	values, err := r.cl.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot load files of %s: %w", parent, err)
	}

	files := make([]*simplecms.FileRecord, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			r.log.Warn("Dangling file index entry", slog.String("parent", parent), slog.String("id", ids[i]))
			continue
		}
		file, err := decode([]byte(s))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	slices.SortFunc(files, func(a, b *simplecms.FileRecord) int {
		if a.Sort != b.Sort {
			return a.Sort - b.Sort
		}
		return strings.Compare(a.Filename, b.Filename)
	})
	return files, nil
}

func decode(data []byte) (*simplecms.FileRecord, error) {
	var file simplecms.FileRecord
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("cannot decode file: %w", err)
	}
	return &file, nil
}
