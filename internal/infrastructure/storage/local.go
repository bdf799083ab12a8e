package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-pipeline/pkg/signature"
)

// LocalBackend stores objects as files under a root directory
type LocalBackend struct {
	root      string
	publicURL string
	secret    string
}

// NewLocalBackend creates the root directory if needed
func NewLocalBackend(root, publicURL, secret string) (*LocalBackend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalBackend{
		root:      abs,
		publicURL: strings.TrimRight(publicURL, "/"),
		secret:    secret,
	}, nil
}

// LocalPath returns the absolute file path of key
func (l *LocalBackend) LocalPath(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(cleaned)), nil
}

// Put writes to a temp file and renames it so readers never see partial objects
func (l *LocalBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	dst, err := l.LocalPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("failed to commit object: %w", err)
	}
	return nil
}

func (l *LocalBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := l.LocalPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

// List walks the directory under prefix; temp files from in-flight puts are skipped
func (l *LocalBackend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	dir := l.root
	if p := strings.Trim(prefix, "/"); p != "" {
		cleaned, err := CleanKey(p)
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(l.root, filepath.FromSlash(cleaned))
	}

	var out []ObjectInfo
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		out = append(out, ObjectInfo{Key: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (l *LocalBackend) Delete(ctx context.Context, key string) error {
	p, err := l.LocalPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// SignedURL points at the API's file route with an HMAC over key and expiry
func (l *LocalBackend) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(ttl)
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires.Unix(), 10))
	q.Set("signature", signature.SignKey(l.secret, cleaned, expires))
	return fmt.Sprintf("%s/v1/files/%s?%s", l.publicURL, cleaned, q.Encode()), nil
}

// VerifySignedKey checks a signature produced by SignedURL
func (l *LocalBackend) VerifySignedKey(key string, expiresUnix int64, sig string) bool {
	cleaned, err := CleanKey(key)
	if err != nil {
		return false
	}
	return signature.VerifyKey(l.secret, cleaned, expiresUnix, sig, time.Now())
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
