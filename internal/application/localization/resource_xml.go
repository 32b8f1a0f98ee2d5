package localization

import (
	"context"
	"encoding/xml"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// maxResourceXMLSize bounds an uploaded resource document
const maxResourceXMLSize = 32 << 20

// languagePack is the XML layout of exported resources:
//
//	<Language Name="English">
//	  <LocaleResource Name="account.login"><Value>Log in</Value></LocaleResource>
//	</Language>
type languagePack struct {
	XMLName   xml.Name         `xml:"Language"`
	Name      string           `xml:"Name,attr"`
	Culture   string           `xml:"Culture,attr,omitempty"`
	Resources []localeResource `xml:"LocaleResource"`
}

type localeResource struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:"Value"`
}

// ImportResult summarizes a resource import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}

// ExportResourcesToXML writes every resource of a language as XML
func (s *LocalizationService) ExportResourcesToXML(ctx context.Context, languageID uuid.UUID, w io.Writer) error {
	lang, err := s.languages.FindByID(ctx, languageID)
	if err != nil {
		return err
	}
	resources, err := s.resources.FindAllByLanguage(ctx, languageID)
	if err != nil {
		return err
	}

	pack := languagePack{Name: lang.Name, Culture: lang.LanguageCulture, Resources: make([]localeResource, len(resources))}
	for i, r := range resources {
		pack.Resources[i] = localeResource{Name: r.ResourceName, Value: r.ResourceValue}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(pack); err != nil {
		return err
	}
	return enc.Close()
}

// ImportResourcesFromXML upserts the resources in r into a language.
// Existing resources not present in the document are left untouched.
// Entries with invalid names are reported in Skipped.
func (s *LocalizationService) ImportResourcesFromXML(ctx context.Context, languageID uuid.UUID, r io.Reader) (*ImportResult, error) {
	if _, err := s.languages.FindByID(ctx, languageID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, languageNotFound(languageID)
		}
		return nil, err
	}

	var pack languagePack
	dec := xml.NewDecoder(io.LimitReader(r, maxResourceXMLSize))
	if err := dec.Decode(&pack); err != nil {
		return nil, shared.NewDomainError("INVALID_RESOURCE_XML", "Resource file is not a valid language pack: "+err.Error())
	}

	result := &ImportResult{}
	byName := make(map[string]int, len(pack.Resources))
	batch := make([]localization.LocaleStringResource, 0, len(pack.Resources))
	for _, entry := range pack.Resources {
		res, err := localization.NewLocaleStringResource(languageID, entry.Name, entry.Value)
		if err != nil {
			result.Skipped = append(result.Skipped, entry.Name)
			continue
		}
		// a later duplicate wins
		if i, ok := byName[res.ResourceName]; ok {
			batch[i].ResourceValue = res.ResourceValue
			continue
		}
		byName[res.ResourceName] = len(batch)
		batch = append(batch, *res)
	}

	if err := s.resources.SaveAll(ctx, batch); err != nil {
		return nil, err
	}
	result.Imported = len(batch)

	s.logger.Info("Imported locale resources",
		zap.String("language_id", languageID.String()),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)))
	s.publish(ctx, shared.NewEntityEvent(localization.EntityLanguage, shared.EntityUpdated, languageID, uuid.Nil),
		cache.PrefixLocaleStringResources)
	return result, nil
}
