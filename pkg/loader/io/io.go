package io

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// Stdin is the file path that reads from standard input instead of disk.
const Stdin = "-"

// IOGraphFileLoader reads events and taxonomy documents from the local
// filesystem. Content is cached per file, so a document is read once even
// when several builds refer to it.
type IOGraphFileLoader struct {
	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
	stdin   io.Reader
}

func NewIOGraphFileLoader() *IOGraphFileLoader {
	return NewIOGraphFileLoaderWithStdin(os.Stdin)
}

// NewIOGraphFileLoaderWithStdin returns a loader that reads the Stdin path
// from r.
func NewIOGraphFileLoaderWithStdin(r io.Reader) *IOGraphFileLoader {
	return &IOGraphFileLoader{
		cache: make(map[string][]byte),
		stdin: r,
	}
}

// GetFileContent returns the content of file. Concurrent reads of the same
// file share one read.
func (l *IOGraphFileLoader) GetFileContent(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	key := loader.CacheKey(file)
	if file.FilePath == Stdin {
		// standard input can only be consumed once, whatever the file type
		key = Stdin
	}

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := l.read(file)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = content
		l.cacheMu.Unlock()

		return content, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

func (l *IOGraphFileLoader) read(file loader.GraphFile) ([]byte, error) {
	if file.FilePath == Stdin {
		return io.ReadAll(l.stdin)
	}

	info, err := os.Stat(file.FilePath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s file %s is a directory", file.FileType, file.FilePath)
	}
	return os.ReadFile(file.FilePath)
}
