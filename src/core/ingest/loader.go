package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"ragchat/src/fsutil"
	"ragchat/src/log"
)

const (
	// MetadataSource holds the file path relative to the loaded directory.
	MetadataSource = "source"

	DefaultChunkSize    = 100000
	DefaultChunkOverlap = 0
)

// DefaultExtensions are the file types loaded when none are configured.
var DefaultExtensions = []string{".txt"}

// LoaderFunc builds a document loader for one opened file.
type LoaderFunc func(f fsutil.File, size int64) documentloaders.Loader

// TextLoader treats the whole file as a single plain-text document.
func TextLoader(f fsutil.File, _ int64) documentloaders.Loader {
	return documentloaders.NewText(f)
}

// PDFLoader yields one document per page.
func PDFLoader(f fsutil.File, size int64) documentloaders.Loader {
	return documentloaders.NewPDF(f, size)
}

// BuiltinLoaders maps every supported extension to its loader.
func BuiltinLoaders() map[string]LoaderFunc {
	return map[string]LoaderFunc{
		".txt": TextLoader,
		".md":  TextLoader,
		".pdf": PDFLoader,
	}
}

// DirectoryLoader loads every file under a directory whose extension has
// a registered loader. It satisfies documentloaders.Loader.
type DirectoryLoader struct {
	fs      fsutil.FileStore
	dir     string
	loaders map[string]LoaderFunc
}

var _ documentloaders.Loader = (*DirectoryLoader)(nil)

// NewDirectoryLoader enables the built-in loaders for the given
// extensions. An empty list selects DefaultExtensions.
func NewDirectoryLoader(fs fsutil.FileStore, dir string, extensions []string) (*DirectoryLoader, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	builtin := BuiltinLoaders()
	loaders := make(map[string]LoaderFunc, len(extensions))
	for _, ext := range extensions {
		ext = normalizeExt(ext)
		fn, ok := builtin[ext]
		if !ok {
			return nil, fmt.Errorf("no loader for extension %q", ext)
		}
		loaders[ext] = fn
	}

	return &DirectoryLoader{fs: fs, dir: dir, loaders: loaders}, nil
}

// Register adds or replaces the loader for an extension.
func (l *DirectoryLoader) Register(ext string, fn LoaderFunc) {
	l.loaders[normalizeExt(ext)] = fn
}

// Dir returns the directory being loaded
func (l *DirectoryLoader) Dir() string {
	return l.dir
}

// Load reads all matching files in lexical path order.
func (l *DirectoryLoader) Load(ctx context.Context) ([]schema.Document, error) {
	files, err := l.fs.ListFiles(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", l.dir, err)
	}

	var docs []schema.Document
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fn, ok := l.loaders[normalizeExt(filepath.Ext(rel))]
		if !ok {
			log.Debug("Skipping file without loader", "path", rel)
			continue
		}

		loaded, err := l.loadFile(ctx, rel, fn)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}

	log.Info("Loaded documents", "dir", l.dir, "files", len(files), "documents", len(docs))
	return docs, nil
}

func (l *DirectoryLoader) loadFile(ctx context.Context, rel string, fn LoaderFunc) ([]schema.Document, error) {
	f, size, err := l.fs.Open(filepath.Join(l.dir, rel))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer f.Close()

	docs, err := fn(f, size).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", rel, err)
	}

	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any)
		}
		docs[i].Metadata[MetadataSource] = filepath.ToSlash(rel)
	}
	return docs, nil
}

// LoadAndSplit loads all documents and splits them into chunks. Empty
// chunks are dropped.
func (l *DirectoryLoader) LoadAndSplit(ctx context.Context, splitter textsplitter.TextSplitter) ([]schema.Document, error) {
	docs, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}

	chunks, err := textsplitter.SplitDocuments(splitter, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split documents: %w", err)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c.PageContent) == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// NewSplitter returns the recursive character splitter used for ingestion.
// Non-positive sizes fall back to DefaultChunkSize; negative overlap to 0.
func NewSplitter(chunkSize, chunkOverlap int) textsplitter.TextSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
}

// CountSources returns the number of distinct source files behind chunks.
func CountSources(chunks []schema.Document) int {
	seen := make(map[any]struct{})
	n := 0
	for _, c := range chunks {
		src, ok := c.Metadata[MetadataSource]
		if !ok {
			n++
			continue
		}
		if _, dup := seen[src]; !dup {
			seen[src] = struct{}{}
			n++
		}
	}
	return n
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
