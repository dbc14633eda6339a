package utils

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"gorm.io/gorm"

	"riverside/models"
)

// Uploaded images are normalized to this fixed frame.
const (
	ImageWidth  = 400
	ImageHeight = 600
)

// ImageStore keeps uploaded images on local disk under one directory and
// owns the resize-on-upload pipeline plus the orphan sweep.
type ImageStore struct {
	dir string
}

// NewImageStore creates the upload directory if missing.
func NewImageStore(dir string) (*ImageStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// Dir returns the upload directory path.
func (s *ImageStore) Dir() string { return s.dir }

// SaveResized stores an uploaded image under a collision-free name,
// resizes it to the fixed 400x600 frame and re-encodes it over the same
// path. The stored filename is returned. Decode, resize and disk
// failures all fail the upload; a rejected file never stays on disk.
func (s *ImageStore) SaveResized(fh *multipart.FileHeader) (string, error) {
	name := sanitizeFilename(fh.Filename)
	name = fmt.Sprintf("%s_%s", uuid.NewString(), name)
	dst := filepath.Join(s.dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	resized := image.NewRGBA(image.Rect(0, 0, ImageWidth, ImageHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	switch format {
	case "png":
		err = png.Encode(out, resized)
	case "gif":
		err = gif.Encode(out, resized, nil)
	default:
		err = jpeg.Encode(out, resized, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("encode image: %w", err)
	}
	return name, nil
}

// Delete removes a stored image. Missing files are a no-op.
func (s *ImageStore) Delete(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return nil
	}
	path := filepath.Join(s.dir, sanitizeFilename(filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns the filenames currently on disk, sorted.
func (s *ImageStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SweepOrphans removes every on-disk file whose name is not referenced by
// any blog post, message or devotional row. Returns the removed names.
func (s *ImageStore) SweepOrphans(db *gorm.DB) ([]string, error) {
	referenced := map[string]bool{}
	for _, query := range []interface{}{
		&models.BlogPost{}, &models.Message{}, &models.DevotionalPost{},
	} {
		var names []string
		if err := db.Model(query).Where("image_file <> ''").Pluck("image_file", &names).Error; err != nil {
			return nil, err
		}
		for _, n := range names {
			referenced[n] = true
		}
	}

	files, err := s.List()
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, f := range files {
		if referenced[f] {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f)); err != nil {
			Sugar.Warnf("orphan sweep failed to remove %s: %v", f, err)
			continue
		}
		removed = append(removed, f)
	}
	return removed, nil
}

// sanitizeFilename strips path components and whitespace from an uploaded name.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." {
		name = "image"
	}
	return name
}
