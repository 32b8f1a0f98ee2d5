package catalog

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxPictureSize is the largest accepted upload in bytes
const MaxPictureSize = 10 << 20

var allowedPictureTypes = map[string]string{
	"image/jpeg":  "jpeg",
	"image/pjpeg": "jpeg",
	"image/png":   "png",
	"image/gif":   "gif",
	"image/webp":  "webp",
	"image/bmp":   "bmp",
}

var seoNameInvalidChars = regexp.MustCompile(`[^a-z0-9\-]+`)

// Picture is an image stored in object storage
type Picture struct {
	shared.TenantAggregateRoot
	MimeType       string `gorm:"type:varchar(40);not null"`
	SeoFilename    string `gorm:"type:varchar(300)"`
	AltAttribute   string `gorm:"type:varchar(400)"`
	TitleAttribute string `gorm:"type:varchar(400)"`
	StorageKey     string `gorm:"type:varchar(500);not null"`
	Size           int64  `gorm:"not null;default:0"`
	IsNew          bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Picture) TableName() string {
	return "pictures"
}

// NewPicture validates an upload and assigns its storage key
func NewPicture(tenantID uuid.UUID, mimeType, seoFilename string, size int64) (*Picture, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	ext, ok := allowedPictureTypes[mimeType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_MIME_TYPE", "Unsupported picture type: "+mimeType)
	}
	if size <= 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "Picture is empty")
	}
	if size > MaxPictureSize {
		return nil, shared.NewDomainError("INVALID_SIZE", "Picture exceeds the maximum allowed size")
	}

	p := &Picture{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		MimeType:            mimeType,
		SeoFilename:         SeoName(seoFilename),
		Size:                size,
		IsNew:               true,
	}
	p.StorageKey = path.Join(tenantID.String(), "pictures", p.ID.String()+"."+ext)
	p.AddDomainEvent(shared.NewEntityEvent(EntityPicture, shared.EntityInserted, p.ID, tenantID))
	return p, nil
}

// SetAttributes updates the SEO file name and HTML attributes
func (p *Picture) SetAttributes(seoFilename, alt, title string) {
	p.SeoFilename = SeoName(seoFilename)
	p.AltAttribute = alt
	p.TitleAttribute = title
	p.IsNew = false
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(shared.NewEntityEvent(EntityPicture, shared.EntityUpdated, p.ID, p.TenantID))
}

// FileName returns the SEO-friendly download name
func (p *Picture) FileName() string {
	ext := path.Ext(p.StorageKey)
	name := p.SeoFilename
	if name == "" {
		name = p.ID.String()
	}
	return name + ext
}

// SeoName converts free text into a URL-safe slug
func SeoName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	name = seoNameInvalidChars.ReplaceAllString(name, "")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	name = strings.Trim(name, "-")
	if len(name) > 300 {
		name = name[:300]
	}
	return name
}
