package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// DefaultPictureURLExpiry is how long a presigned picture URL stays valid
const DefaultPictureURLExpiry = time.Hour

// ObjectStorage stores picture binaries. Implemented by the S3 and
// in-memory storages.
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// PictureService stores pictures and links them to products
type PictureService struct {
	pictureRepo catalog.PictureRepository
	productRepo catalog.ProductRepository
	storage     ObjectStorage
	cache       cache.Manager
	publisher   shared.EventPublisher
	logger      *zap.Logger
	urlExpiry   time.Duration
}

// NewPictureService creates a new PictureService
func NewPictureService(
	pictureRepo catalog.PictureRepository,
	productRepo catalog.ProductRepository,
	storage ObjectStorage,
	cacheManager cache.Manager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PictureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PictureService{
		pictureRepo: pictureRepo,
		productRepo: productRepo,
		storage:     storage,
		cache:       cacheManager,
		publisher:   publisher,
		logger:      logger,
		urlExpiry:   DefaultPictureURLExpiry,
	}
}

// UploadPicture validates and stores a picture binary and its metadata
func (s *PictureService) UploadPicture(ctx context.Context, storeID uuid.UUID, data []byte, mimeType, seoFilename string) (*catalog.Picture, error) {
	picture, err := catalog.NewPicture(storeID, mimeType, seoFilename, int64(len(data)))
	if err != nil {
		return nil, err
	}
	if err := s.storage.Upload(ctx, picture.StorageKey, data, picture.MimeType); err != nil {
		return nil, fmt.Errorf("upload picture: %w", err)
	}
	if err := s.pictureRepo.Save(ctx, picture); err != nil {
		if delErr := s.storage.DeleteObject(ctx, picture.StorageKey); delErr != nil {
			s.logger.Warn("Failed to remove orphaned picture object",
				zap.String("storage_key", picture.StorageKey), zap.Error(delErr))
		}
		return nil, err
	}
	s.changed(ctx, picture)
	return picture, nil
}

// UploadProductPicture uploads a picture and appends it to a product
func (s *PictureService) UploadProductPicture(ctx context.Context, storeID, productID uuid.UUID, data []byte, mimeType, seoFilename string, displayOrder int) (*PictureResponse, error) {
	if err := s.ensureProduct(ctx, storeID, productID); err != nil {
		return nil, err
	}
	picture, err := s.UploadPicture(ctx, storeID, data, mimeType, seoFilename)
	if err != nil {
		return nil, err
	}
	if _, err := s.InsertProductPicture(ctx, storeID, productID, picture.ID, displayOrder); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, picture, displayOrder)
}

// InsertProductPicture links an existing picture to a product
func (s *PictureService) InsertProductPicture(ctx context.Context, storeID, productID, pictureID uuid.UUID, displayOrder int) (*catalog.ProductPicture, error) {
	if err := s.ensureProduct(ctx, storeID, productID); err != nil {
		return nil, err
	}
	if _, err := s.pictureRepo.FindByIDForTenant(ctx, storeID, pictureID); err != nil {
		return nil, err
	}
	mapping := catalog.NewProductPicture(productID, pictureID, displayOrder)
	if err := s.productRepo.SaveProductPicture(ctx, mapping); err != nil {
		return nil, err
	}
	s.mappingChanged(ctx, shared.EntityInserted, mapping.ID, storeID, productID)
	return mapping, nil
}

// RemoveProductPicture unlinks a picture from a product; the picture stays
func (s *PictureService) RemoveProductPicture(ctx context.Context, storeID, productID, mappingID uuid.UUID) error {
	mappings, err := s.productRepo.FindProductPictures(ctx, productID)
	if err != nil {
		return err
	}
	for _, m := range mappings {
		if m.ID != mappingID {
			continue
		}
		if err := s.productRepo.DeleteProductPicture(ctx, mappingID); err != nil {
			return err
		}
		s.mappingChanged(ctx, shared.EntityDeleted, mappingID, storeID, productID)
		return nil
	}
	return fmt.Errorf("%w: product picture mapping %s", shared.ErrNotFound, mappingID)
}

// GetPictureByID returns picture metadata, cached
func (s *PictureService) GetPictureByID(ctx context.Context, storeID, id uuid.UUID) (*catalog.Picture, error) {
	picture, err := cache.Get(ctx, s.cache, cache.PictureByIDKey.Create(id), func() (*catalog.Picture, error) {
		return s.pictureRepo.FindByIDForTenant(ctx, storeID, id)
	})
	if err != nil {
		return nil, err
	}
	if picture.TenantID != storeID {
		return nil, fmt.Errorf("%w: picture %s", shared.ErrNotFound, id)
	}
	return picture, nil
}

// GetPictureURL returns a presigned download URL and its expiry
func (s *PictureService) GetPictureURL(ctx context.Context, storeID, id uuid.UUID) (string, time.Time, error) {
	picture, err := s.GetPictureByID(ctx, storeID, id)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.storage.GenerateDownloadURL(ctx, picture.StorageKey, s.urlExpiry)
}

// GetProductPictures lists a product's pictures in display order with
// download URLs. The metadata is cached; URLs are signed per call.
func (s *PictureService) GetProductPictures(ctx context.Context, storeID, productID uuid.UUID) ([]PictureResponse, error) {
	pictures, err := cache.Get(ctx, s.cache, cache.ProductPicturesKey.Create(productID), func() ([]catalog.Picture, error) {
		return s.pictureRepo.FindByProductID(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	out := make([]PictureResponse, 0, len(pictures))
	for i := range pictures {
		if pictures[i].TenantID != storeID {
			continue
		}
		resp, err := s.toResponse(ctx, &pictures[i], i)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// SetPictureAttributes updates a picture's SEO name and HTML attributes
func (s *PictureService) SetPictureAttributes(ctx context.Context, storeID, id uuid.UUID, req PictureAttributesRequest) (*catalog.Picture, error) {
	picture, err := s.pictureRepo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	picture.SetAttributes(req.SeoFilename, req.Alt, req.Title)
	if err := s.pictureRepo.Save(ctx, picture); err != nil {
		return nil, err
	}
	s.changed(ctx, picture)
	return picture, nil
}

// DeletePicture removes a picture, its product links and its stored binary
func (s *PictureService) DeletePicture(ctx context.Context, storeID, id uuid.UUID) error {
	picture, err := s.pictureRepo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return err
	}
	if err := s.pictureRepo.Delete(ctx, storeID, id); err != nil {
		return err
	}
	if err := s.storage.DeleteObject(ctx, picture.StorageKey); err != nil {
		s.logger.Warn("Failed to delete picture object",
			zap.String("storage_key", picture.StorageKey), zap.Error(err))
	}
	picture.AddDomainEvent(shared.NewEntityEvent(catalog.EntityPicture, shared.EntityDeleted, picture.ID, storeID))
	s.changed(ctx, picture)
	// the links are gone and their products are unknown here
	_ = s.cache.RemoveByPrefix(ctx, cache.PrefixProductPictures)
	return nil
}

func (s *PictureService) toResponse(ctx context.Context, p *catalog.Picture, displayOrder int) (*PictureResponse, error) {
	url, expires, err := s.storage.GenerateDownloadURL(ctx, p.StorageKey, s.urlExpiry)
	if err != nil {
		return nil, err
	}
	return &PictureResponse{
		ID:           p.ID,
		MimeType:     p.MimeType,
		SeoFilename:  p.SeoFilename,
		Alt:          p.AltAttribute,
		Title:        p.TitleAttribute,
		Size:         p.Size,
		DisplayOrder: displayOrder,
		URL:          url,
		URLExpiresAt: expires,
	}, nil
}

func (s *PictureService) ensureProduct(ctx context.Context, storeID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByIDForTenant(ctx, storeID, productID)
	if err != nil {
		return err
	}
	if product.Deleted {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, productID)
	}
	return nil
}

func (s *PictureService) changed(ctx context.Context, p *catalog.Picture) {
	err := shared.PublishPending(ctx, s.publisher, p)
	if err != nil {
		s.logger.Warn("Failed to publish picture events", zap.Error(err))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixPictures)
	}
}

func (s *PictureService) mappingChanged(ctx context.Context, action shared.EntityAction, id, storeID, productID uuid.UUID) {
	if s.publisher != nil {
		event := shared.NewEntityEvent(catalog.EntityProductPicture, action, id, storeID).WithRef("product_id", productID)
		err := s.publisher.Publish(ctx, event)
		if err == nil {
			return
		}
		s.logger.Warn("Failed to publish product picture event", zap.Error(err))
	}
	_ = s.cache.RemoveByPrefix(ctx, cache.PrefixProductPictures+productID.String())
}
