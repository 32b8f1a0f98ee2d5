package localization

// LanguageRequest creates or updates a language
type LanguageRequest struct {
	Name              string `json:"name" binding:"required,min=1,max=100"`
	LanguageCulture   string `json:"language_culture" binding:"required,max=20"`
	UniqueSeoCode     string `json:"unique_seo_code" binding:"required,len=2"`
	FlagImageFileName string `json:"flag_image_file_name" binding:"max=50"`
	Rtl               bool   `json:"rtl"`
	Published         bool   `json:"published"`
	DisplayOrder      int    `json:"display_order"`
}

// ResourceRequest sets one resource value
type ResourceRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Value string `json:"value"`
}

// LocalizedValueRequest stores a translation of an entity field
type LocalizedValueRequest struct {
	LocaleKeyGroup string `json:"locale_key_group" binding:"required,max=400"`
	LocaleKey      string `json:"locale_key" binding:"required,max=400"`
	LanguageID     string `json:"language_id" binding:"required,uuid"`
	LocaleValue    string `json:"locale_value"`
}
