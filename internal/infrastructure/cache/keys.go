package cache

// Key prefixes. Every key starts with the prefix of the entity it caches so
// that mutation events can drop whole groups at once.
const (
	PrefixSettings              = "sf.setting."
	PrefixStores                = "sf.store."
	PrefixCategories            = "sf.category."
	PrefixManufacturers         = "sf.manufacturer."
	PrefixProducts              = "sf.product."
	PrefixProductPictures       = "sf.product.pictures."
	PrefixProductCategories     = "sf.productcategory."
	PrefixProductManufacturers  = "sf.productmanufacturer."
	PrefixPictures              = "sf.picture."
	PrefixDiscounts             = "sf.discount."
	PrefixCountries             = "sf.country."
	PrefixStateProvinces        = "sf.stateprovince."
	PrefixCurrencies            = "sf.currency."
	PrefixLanguages             = "sf.language."
	PrefixLocaleStringResources = "sf.lsr."
	PrefixLocalizedProperties   = "sf.localizedproperty."
	PrefixPolls                 = "sf.poll."
	PrefixNews                  = "sf.news."
	PrefixBlog                  = "sf.blog."
	PrefixPlugins               = "sf.plugins."
	PrefixCustomerRoles         = "sf.customerrole."
)

var (
	// SettingsAllKey caches every setting row
	SettingsAllKey = NewKey("sf.setting.all", PrefixSettings)

	// StoresAllKey caches the store list
	StoresAllKey = NewKey("sf.store.all", PrefixStores)

	// CategoryByIDKey: {0} category id
	CategoryByIDKey = NewKey("sf.category.id-{0}", PrefixCategories)
	// CategoriesAllKey: {0} store id, {1} show hidden
	CategoriesAllKey = NewKey("sf.category.all-{0}-{1}", PrefixCategories)
	// CategoriesHomePageKey: {0} store id
	CategoriesHomePageKey = NewKey("sf.category.homepage-{0}", PrefixCategories)
	// CategoryBreadcrumbKey: {0} store id, {1} category id
	CategoryBreadcrumbKey = NewKey("sf.category.breadcrumb-{0}-{1}", PrefixCategories)

	// ManufacturersAllKey: {0} store id, {1} show hidden
	ManufacturersAllKey = NewKey("sf.manufacturer.all-{0}-{1}", PrefixManufacturers)

	// ProductByIDKey: {0} product id
	ProductByIDKey = NewKey("sf.product.id-{0}", PrefixProducts)
	// ProductsHomePageKey: {0} store id
	ProductsHomePageKey = NewKey("sf.product.homepage-{0}", PrefixProducts)
	// ProductPicturesKey: {0} product id
	ProductPicturesKey = NewKey("sf.product.pictures.{0}", PrefixProductPictures+"{0}", PrefixProducts)

	// ProductCategoriesKey: {0} product id, {1} show hidden
	ProductCategoriesKey = NewKey("sf.productcategory.product-{0}-{1}", PrefixProductCategories)
	// ProductManufacturersKey: {0} product id, {1} show hidden
	ProductManufacturersKey = NewKey("sf.productmanufacturer.product-{0}-{1}", PrefixProductManufacturers)

	// PictureByIDKey: {0} picture id
	PictureByIDKey = NewKey("sf.picture.id-{0}", PrefixPictures)

	// DiscountsAllKey: {0} store id, {1} discount type, {2} include expired
	DiscountsAllKey = NewKey("sf.discount.all-{0}-{1}-{2}", PrefixDiscounts)

	// CountriesAllKey: {0} show hidden
	CountriesAllKey = NewKey("sf.country.all-{0}", PrefixCountries)
	// StateProvincesByCountryKey: {0} country id, {1} show hidden
	StateProvincesByCountryKey = NewKey("sf.stateprovince.country-{0}-{1}", PrefixStateProvinces)

	// CurrenciesAllKey: {0} show hidden
	CurrenciesAllKey = NewKey("sf.currency.all-{0}", PrefixCurrencies)

	// LanguagesAllKey: {0} show hidden
	LanguagesAllKey = NewKey("sf.language.all-{0}", PrefixLanguages)
	// LocaleStringResourcesAllKey: {0} language id
	LocaleStringResourcesAllKey = NewKey("sf.lsr.all-{0}", PrefixLocaleStringResources)
	// LocalizedPropertyKey: {0} language id, {1} entity id, {2} key group, {3} key
	LocalizedPropertyKey = NewKey("sf.localizedproperty.value-{0}-{1}-{2}-{3}", PrefixLocalizedProperties)

	// PollsKey: {0} store id, {1} language id, {2} show on home page, {3} system keyword
	PollsKey = NewKey("sf.poll.all-{0}-{1}-{2}-{3}", PrefixPolls)
	// NewsKey: {0} store id, {1} language id, {2} page, {3} page size
	NewsKey = NewKey("sf.news.all-{0}-{1}-{2}-{3}", PrefixNews)
	// BlogTagsKey: {0} store id, {1} language id
	BlogTagsKey = NewKey("sf.blog.tags-{0}-{1}", PrefixBlog)

	// PluginDescriptorsKey: {0} load mode, {1} store id, {2} group
	PluginDescriptorsKey = NewKey("sf.plugins.descriptors-{0}-{1}-{2}", PrefixPlugins)

	// CustomerRolesAllKey: {0} show hidden
	CustomerRolesAllKey = NewKey("sf.customerrole.all-{0}", PrefixCustomerRoles)
)
