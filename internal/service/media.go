package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"podia/internal/imaging"
	"podia/internal/model"
)

// Upload limits and storage kinds.
const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB

	MediaKindAvatar = "avatars"
	MediaKindPhoto  = "photos"

	defaultUploadDir = "./uploads"
)

// MediaService stores uploaded images on disk and hands back the opaque
// reference that accounts and events record. Callers never see file paths.
type MediaService struct {
	uploadDir string
}

// NewMediaService creates a media service rooted at uploadDir.
func NewMediaService(uploadDir string) *MediaService {
	if uploadDir == "" {
		uploadDir = defaultUploadDir
	}
	return &MediaService{uploadDir: uploadDir}
}

// Store validates and normalizes the image bytes, writes the original and
// its variants, and returns the reference to record. The reference is
// "<kind>/<uuid><ext>", stable across renames of the upload directory.
func (s *MediaService) Store(kind string, data []byte) (string, error) {
	if kind != MediaKindAvatar && kind != MediaKindPhoto {
		return "", fmt.Errorf("unknown media kind %q", kind)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	if len(data) > MaxUploadSize {
		return "", fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	mimeType := imaging.DetectMimeType(data)
	if !model.IsSupportedImageType(mimeType) {
		return "", fmt.Errorf("file type %s is not allowed", mimeType)
	}

	original, err := imaging.Normalize(data)
	if err != nil {
		return "", fmt.Errorf("failed to process image: %w", err)
	}

	name := uuid.New().String() + original.Ext()
	ref := kind + "/" + name

	if err := s.write(filepath.Join(kind, name), original.Data); err != nil {
		return "", err
	}

	for variantType, cfg := range model.ImageVariants {
		variant, err := imaging.Variant(original.Data, cfg)
		if err != nil {
			_ = s.Delete(ref)
			return "", fmt.Errorf("failed to create %s variant: %w", variantType, err)
		}
		if variant == nil {
			continue
		}
		if err := s.write(filepath.Join(kind, variantType, name), variant.Data); err != nil {
			_ = s.Delete(ref)
			return "", err
		}
	}

	return ref, nil
}

// Path resolves a reference to the on-disk path of the original, or of the
// named variant when variant is non-empty. The reference is validated
// against path traversal before resolution.
func (s *MediaService) Path(ref, variant string) (string, error) {
	kind, name, err := splitRef(ref)
	if err != nil {
		return "", err
	}

	parts := []string{s.uploadDir, kind}
	if variant != "" {
		if _, ok := model.ImageVariants[variant]; !ok {
			return "", fmt.Errorf("unknown variant %q", variant)
		}
		parts = append(parts, variant)
	}
	parts = append(parts, name)
	return filepath.Join(parts...), nil
}

// Delete removes the original and every variant for a reference. Missing
// files are not an error.
func (s *MediaService) Delete(ref string) error {
	kind, name, err := splitRef(ref)
	if err != nil {
		return err
	}

	paths := []string{filepath.Join(s.uploadDir, kind, name)}
	for variantType := range model.ImageVariants {
		paths = append(paths, filepath.Join(s.uploadDir, kind, variantType, name))
	}

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", ref, err)
		}
	}
	return nil
}

// write saves data under the upload directory, creating directories as
// needed.
func (s *MediaService) write(rel string, data []byte) error {
	path := filepath.Join(s.uploadDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// splitRef validates a media reference and splits it into kind and filename.
func splitRef(ref string) (kind, name string, err error) {
	kind, name, ok := strings.Cut(ref, "/")
	if !ok || (kind != MediaKindAvatar && kind != MediaKindPhoto) {
		return "", "", fmt.Errorf("invalid media reference %q", ref)
	}
	if name != filepath.Base(name) || name == "." || name == ".." || name == "" {
		return "", "", fmt.Errorf("invalid media reference %q", ref)
	}
	return kind, name, nil
}
