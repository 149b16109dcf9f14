package workflow

import (
	"encoding/hex"
	"strings"

	"millflow/internal/models"
	"millflow/internal/validation"

	"github.com/zeebo/blake3"
)

func (s *Service) maxPhotoBytes() int {
	if s.cfg.MaxPhotoBytes > 0 {
		return s.cfg.MaxPhotoBytes
	}
	return validation.MaxPhotoBytes
}

// acceptPhoto validates an uploaded photograph and stamps it with its upload
// time and the BLAKE3 digest of the decoded image. It returns nil after
// recording a validation error.
func (s *Service) acceptPhoto(ve *validation.ValidationErrors, field string, p models.Photo) *models.Photo {
	data := validation.ValidateImageDataURI(ve, field, p.Data, s.maxPhotoBytes())
	if data == nil {
		return nil
	}
	sum := blake3.Sum256(data)
	p.Name = validation.SanitizeFilename(strings.TrimSpace(p.Name))
	if p.UploadedAt == "" {
		p.UploadedAt = s.stamp()
	}
	p.Digest = hex.EncodeToString(sum[:])
	return &p
}
